// internal/adapters/remote/prober.go
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpratama/gudang-be/internal/core/ports"
)

// ErrNoWorkingEndpoint indicates every candidate endpoint/method combination
// was exhausted without a usable inventory response. Fatal to the run.
var ErrNoWorkingEndpoint = errors.New("no working inventory endpoint")

// Candidate is one endpoint/method combination to probe.
type Candidate struct {
	URL    string
	Method string
}

// ProberConfig holds the remote pull settings.
type ProberConfig struct {
	// InventoryURLs are candidate inventory endpoints, most likely first.
	InventoryURLs []string
	// Methods are tried per endpoint, in order.
	Methods []string
	// HistoryURL is the fixed change-history endpoint; it is not probed.
	HistoryURL string
	Timeout    time.Duration
}

// Prober locates and pulls the remote inventory payload by walking a ranked
// candidate list, and pulls histories from the fixed endpoint.
type Prober struct {
	cfg        ProberConfig
	candidates []Candidate
	session    ports.SessionProvider
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.RemoteClient = (*Prober)(nil)

// NewProber creates a prober. The candidate order is fixed and deterministic:
// endpoints outer, methods inner.
func NewProber(cfg ProberConfig, session ports.SessionProvider, logger *slog.Logger) *Prober {
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{http.MethodGet, http.MethodPost}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	var candidates []Candidate
	for _, u := range cfg.InventoryURLs {
		for _, m := range cfg.Methods {
			candidates = append(candidates, Candidate{URL: u, Method: m})
		}
	}

	return &Prober{
		cfg:        cfg,
		candidates: candidates,
		session:    session,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(slog.String("component", "remote_prober")),
	}
}

// Candidates exposes the probing order.
func (p *Prober) Candidates() []Candidate {
	return p.candidates
}

// FetchInventory walks the candidate list and returns the first payload that
// is an HTTP success and structurally recognizable as inventory data. A
// 401/403 from a candidate forces one re-authentication and a single retry of
// that same candidate before advancing.
func (p *Prober) FetchInventory(ctx context.Context) (json.RawMessage, error) {
	for i, cand := range p.candidates {
		payload, retryAuth, err := p.try(ctx, cand)
		if retryAuth {
			p.session.Invalidate()
			payload, _, err = p.try(ctx, cand)
		}
		if err != nil {
			p.logger.DebugContext(ctx, "inventory candidate rejected",
				slog.String("url", cand.URL),
				slog.String("method", cand.Method),
				slog.String("error", err.Error()))
			continue
		}
		p.logger.InfoContext(ctx, "inventory endpoint located",
			slog.String("url", cand.URL),
			slog.String("method", cand.Method),
			slog.Int("attempts", i+1))
		return payload, nil
	}
	return nil, fmt.Errorf("%w: %d candidates exhausted", ErrNoWorkingEndpoint, len(p.candidates))
}

// try issues one probe. retryAuth is true when the candidate answered 401/403
// and deserves a single retry with fresh credentials.
func (p *Prober) try(ctx context.Context, cand Candidate) (json.RawMessage, bool, error) {
	header, err := p.session.AuthHeader(ctx)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, cand.Method, cand.URL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, true, fmt.Errorf("candidate answered %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("candidate answered %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, false, err
	}

	if !looksLikeInventory(body) {
		// Any other 2xx body is returned as-is on the theory it may still be
		// usable downstream.
		if len(strings.TrimSpace(string(body))) == 0 {
			return nil, false, fmt.Errorf("candidate returned empty body")
		}
	}
	return body, false, nil
}

// looksLikeInventory reports whether the body is a JSON array or an object
// exposing a data/items array.
func looksLikeInventory(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		return true
	}
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	for _, raw := range []json.RawMessage{envelope.Data, envelope.Items} {
		if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
			return true
		}
	}
	return false
}

// FetchHistories pulls the remote change-history collection from the fixed
// endpoint. No probing: the history location is assumed stable.
func (p *Prober) FetchHistories(ctx context.Context) (json.RawMessage, error) {
	header, err := p.session.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.HistoryURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("history endpoint answered %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("reading history response: %w", err)
	}
	return body, nil
}
