// internal/core/services/reconciler.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// Reconciler applies canonical records to the local store: find-or-create the
// owning product, then upsert the item by its serial number.
type Reconciler struct {
	products     ports.ProductRepository
	items        ports.ItemRepository
	sourcePrefix string
	logger       *slog.Logger
}

// NewReconciler creates a reconciler. sourcePrefix seeds generated SKUs for
// products first seen during sync.
func NewReconciler(products ports.ProductRepository, items ports.ItemRepository, sourcePrefix string, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		products:     products,
		items:        items,
		sourcePrefix: sourcePrefix,
		logger:       logger.With(slog.String("component", "reconciler")),
	}
}

// Reconcile processes records sequentially, one at a time, best-effort per
// record: a single record's failure is counted and logged but never aborts
// the batch. Records are idempotent upserts keyed on serial number.
func (r *Reconciler) Reconcile(ctx context.Context, records []domain.CanonicalItem) domain.SyncResult {
	result := domain.SyncResult{Processed: len(records)}

	for i := range records {
		created, err := r.reconcileOne(ctx, &records[i])
		if err != nil {
			result.Errors++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("%s: %v", records[i].SerialNumber, err))
			r.logger.WarnContext(ctx, "record reconciliation failed",
				slog.String("serial_number", records[i].SerialNumber),
				slog.String("error", err.Error()))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	r.logger.InfoContext(ctx, "reconciliation completed",
		slog.Int("processed", result.Processed),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("errors", result.Errors))

	return result
}

func (r *Reconciler) reconcileOne(ctx context.Context, rec *domain.CanonicalItem) (created bool, err error) {
	product, err := r.resolveProduct(ctx, rec.ProductTypeName)
	if err != nil {
		return false, fmt.Errorf("resolving product: %w", err)
	}

	finalStatus := rec.Status
	// Free-text notes are the more reliable status signal in the remote
	// system, so a note-derived status overrides the direct status field.
	if override := domain.ClassifyNoteStatus(rec.Notes); override != nil {
		finalStatus = *override
	}

	existing, err := r.items.FindBySerial(ctx, rec.SerialNumber)
	if err != nil {
		return false, fmt.Errorf("looking up item: %w", err)
	}

	if existing != nil {
		existing.ProductID = product.ID
		existing.MACAddress = rec.MACAddress
		existing.Status = finalStatus
		existing.PurchaseDate = rec.PurchaseDate
		if rec.Location != "" {
			existing.Location = rec.Location
		}
		if rec.Notes != "" {
			existing.Notes = rec.Notes
		}
		if err := r.items.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("updating item: %w", err)
		}
		return false, nil
	}

	item := &domain.Item{
		ProductID:    product.ID,
		SerialNumber: rec.SerialNumber,
		MACAddress:   rec.MACAddress,
		Status:       finalStatus,
		PurchaseDate: rec.PurchaseDate,
		Location:     rec.Location,
		Notes:        rec.Notes,
	}
	if err := item.Validate(); err != nil {
		return false, err
	}
	// Unique constraints on serial number and MAC address are the final
	// backstop if two records collide here.
	if err := r.items.Save(ctx, item); err != nil {
		return false, fmt.Errorf("creating item: %w", err)
	}
	return true, nil
}

// resolveProduct finds the product by exact name or creates one with a
// generated SKU and an inferred category.
func (r *Reconciler) resolveProduct(ctx context.Context, typeName string) (*domain.Product, error) {
	product, err := r.products.FindByName(ctx, typeName)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	product = &domain.Product{
		SKU:      domain.GenerateSKU(r.sourcePrefix, typeName, time.Now()),
		Name:     typeName,
		Category: domain.ClassifyCategory(typeName),
		Unit:     domain.DefaultUnit,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := r.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("creating product %q: %w", typeName, err)
	}

	r.logger.InfoContext(ctx, "product created from sync",
		slog.String("name", product.Name),
		slog.String("sku", product.SKU),
		slog.String("category", string(product.Category)))

	return product, nil
}
