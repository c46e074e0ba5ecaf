package dto

import (
	"github.com/shopspring/decimal"
)

type LicenseType string

const (
	LicensePowerBI           LicenseType = "power_bi"
	LicensePowerAutomateRPA  LicenseType = "power_automate_rpa"
	LicenseTeamsRooms        LicenseType = "teams_rooms"
	LicensePowerAutomatePlan LicenseType = "power_automate_plan"
	LicenseTeamsEEA          LicenseType = "teams_eea"
	LicenseCopilot           LicenseType = "copilot"
	LicenseMS365EEA          LicenseType = "ms365_eea"
	LicensePowerAutomatePrem LicenseType = "power_automate_prem"
)

// AllLicenseTypes lists every recognized type in registry order. Extraction
// and reporting iterate this slice so output order never depends on map
// iteration.
var AllLicenseTypes = []LicenseType{
	LicensePowerBI,
	LicensePowerAutomateRPA,
	LicenseTeamsRooms,
	LicensePowerAutomatePlan,
	LicenseTeamsEEA,
	LicenseCopilot,
	LicenseMS365EEA,
	LicensePowerAutomatePrem,
}

// LicenseLineItem is the merged billing data for one license type on one
// invoice. An invoice may carry a base cycle line plus correction lines for
// the same type; they are folded into a single aggregate where Total is the
// sum of all matched totals and UnitPrice is the arithmetic mean of the
// matched unit prices. A correction line can carry a zero or negative
// quantity while still contributing a price component, so UnitPrice is
// deliberately not Total/Quantity.
type LicenseLineItem struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Matches   int             `json:"matches"`
}

// AggregatedInvoice is the extraction result for one invoice. Immutable once
// built; every downstream stage (allocation, validation, comment) reads the
// same instance. InvoiceTotal is nil when the contract-total anchor was not
// found in the text, which disables the whole-invoice check.
type AggregatedInvoice struct {
	Licenses     map[LicenseType]LicenseLineItem `json:"licenses"`
	InvoiceTotal *decimal.Decimal                `json:"invoice_total,omitempty"`
}

// HasLicense reports whether the invoice matched any line for the given type.
func (a AggregatedInvoice) HasLicense(t LicenseType) bool {
	_, ok := a.Licenses[t]
	return ok
}

// SpecialHandlingAutomation is the one recognized special-handling tag. A
// tagged person's per-seat license cost is routed to the automation project
// instead of their region group.
const SpecialHandlingAutomation = "Automation"

type Person struct {
	Name            string `json:"name"`
	RegionGroup     string `json:"region_group"`
	CostCenter      string `json:"cost_center"`
	SpecialHandling string `json:"special_handling,omitempty"`
}

func (p Person) IsAutomation() bool {
	return p.SpecialHandling == SpecialHandlingAutomation
}

// ProjectSetting holds the accounting coordinates for one project bucket.
// ProjectID is stored without the "P." vendor prefix; AccountOrProject
// carries the prefixed form used on output rows.
type ProjectSetting struct {
	ProjectID        string `json:"project_id"`
	AccountOrProject string `json:"account_or_project"`
	Activity         string `json:"activity"`
	ProjectCategory  string `json:"project_category"`
	Recipient        string `json:"recipient"`
}

// AccountingRow is one output row in the fixed Medius column order:
// Kon/Proj, (blank), RG, Aktivitet, ProjKat, (blank), Netto, Godkänt av.
// RegionGroup is blank except on per-person rows.
type AccountingRow struct {
	AccountOrProject string          `json:"account_or_project"`
	RegionGroup      string          `json:"region_group"`
	Activity         string          `json:"activity"`
	ProjectCategory  string          `json:"project_category"`
	Net              decimal.Decimal `json:"net"`
	Approver         string          `json:"approver"`
}

// BucketCheck is one reconciliation entry of the validation report: a bucket
// total recomputed straight from the license aggregates against what the
// allocation actually emitted.
type BucketCheck struct {
	Bucket          string          `json:"bucket"`
	Expected        decimal.Decimal `json:"expected"`
	Actual          decimal.Decimal `json:"actual"`
	WithinTolerance bool            `json:"within_tolerance"`
}

// TotalCheck compares the sum of all emitted rows against the invoice's own
// stated total. Verifiable is false when no contract total was extracted.
type TotalCheck struct {
	Verifiable      bool            `json:"verifiable"`
	Expected        decimal.Decimal `json:"expected"`
	Actual          decimal.Decimal `json:"actual"`
	WithinTolerance bool            `json:"within_tolerance"`
}

type ValidationReport struct {
	Buckets []BucketCheck `json:"buckets"`
	Overall TotalCheck    `json:"overall"`
}

// OK reports whether every performed check passed. A non-verifiable overall
// check does not count as a failure.
func (r ValidationReport) OK() bool {
	for _, b := range r.Buckets {
		if !b.WithinTolerance {
			return false
		}
	}
	if r.Overall.Verifiable && !r.Overall.WithinTolerance {
		return false
	}
	return true
}
