// internal/core/domain/classify.go
package domain

import "strings"

// statusRule maps a keyword set to a local status. Rules are evaluated
// top-to-bottom; the first rule with a matching keyword wins.
type statusRule struct {
	keywords []string
	status   ItemStatus
}

// statusRules is the status classifier. Order is significant: warehouse
// keywords take precedence over installed, installed over damaged, damaged
// over technician.
var statusRules = []statusRule{
	{[]string{"GUDANG", "WAREHOUSE", "STOK", "STOCK", "TERSEDIA", "AVAILABLE", "READY"}, StatusGudang},
	{[]string{"TERPASANG", "INSTALL", "PASANG", "PELANGGAN", "CUSTOMER", "AKTIF", "ACTIVE", "TERPAKAI"}, StatusTerpasang},
	{[]string{"RUSAK", "DAMAGED", "BROKEN", "CACAT", "MATI", "DEFECT"}, StatusRusak},
	{[]string{"TEKNISI", "TECHNICIAN", "DIBAWA", "DIPINJAM", "MOBILISASI"}, StatusTeknisi},
}

// ClassifyStatus maps a free-text remote status to a local status. Unmatched
// or empty text defaults to the warehouse status.
func ClassifyStatus(raw string) ItemStatus {
	if s, ok := matchStatus(raw); ok {
		return s
	}
	return StatusGudang
}

// noteStatusRules maps literal remote billing-system phrases seen in
// free-text notes to local statuses. Checked in addition to the keyword
// rules when classifying notes. Order is significant: a note carrying both
// a return phrase and a maintenance phrase classifies to the warehouse.
var noteStatusRules = []statusRule{
	{[]string{"DISMANTLE", "TARIK BARANG", "CABUT"}, StatusGudang},
	{[]string{"MIGRASI"}, StatusTerpasang},
	{[]string{"MAINTENANCE"}, StatusTeknisi},
}

// ClassifyNoteStatus extracts a status from free-text notes, if any. Notes are
// the more reliable signal in the remote system, so a non-nil result overrides
// the directly-resolved status field.
func ClassifyNoteStatus(notes string) *ItemStatus {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	upper := strings.ToUpper(notes)
	for _, rule := range noteStatusRules {
		for _, phrase := range rule.keywords {
			if strings.Contains(upper, phrase) {
				s := rule.status
				return &s
			}
		}
	}
	if s, ok := matchStatus(notes); ok {
		return &s
	}
	return nil
}

func matchStatus(raw string) (ItemStatus, bool) {
	upper := strings.ToUpper(raw)
	for _, rule := range statusRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, kw) {
				return rule.status, true
			}
		}
	}
	return "", false
}

// categoryRule maps a keyword set to a product category.
type categoryRule struct {
	keywords []string
	category ProductCategory
}

var categoryRules = []categoryRule{
	{[]string{"ONT", "ONU", "ROUTER", "MODEM", "STB", "SWITCH", "OLT", "ACCESS POINT", " AP", "RADIO", "HUAWEI", "ZTE"}, CategoryNetworkDevice},
	{[]string{"KABEL", "CABLE", "DROPCORE", "PATCHCORD", "PIGTAIL", "UTP", "FIBER"}, CategoryCabling},
	{[]string{"TANG", "OBENG", "SPLICER", "OPM", "TOOL", "TANGGA", "CRIMPING", "BOR"}, CategoryTools},
}

// ClassifyCategory infers a product category from the device type name.
// Unmatched names default to network devices, the dominant class of synced
// equipment.
func ClassifyCategory(name string) ProductCategory {
	upper := " " + strings.ToUpper(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, kw) {
				return rule.category
			}
		}
	}
	return CategoryNetworkDevice
}
