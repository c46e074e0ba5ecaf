package service

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mhedlund/csp-invoice-allocator/dto"
)

// Tolerance is the absolute reconciliation epsilon. Unit-price averaging
// across merged matches introduces sub-öre rounding, so two sums within
// 0.02 kr of each other are considered equal.
var Tolerance = decimal.RequireFromString("0.02")

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(Tolerance) <= 0
}

// Validator recomputes every bucket's expected net straight from the license
// aggregates, independently of the allocation engine's arithmetic, and
// reconciles the emitted rows against it. Mismatches are reported, never
// fatal: accounting proceeds because a human reviews the result regardless.
type Validator struct {
	log zerolog.Logger
}

func NewValidator(log zerolog.Logger) *Validator {
	return &Validator{log: log}
}

// Validate builds the reconciliation report for one run.
func (v *Validator) Validate(rows []dto.AccountingRow, invoice dto.AggregatedInvoice, people []dto.Person) dto.ValidationReport {
	var report dto.ValidationReport

	perPersonSeats := 0
	automationSeats := 0
	for _, person := range people {
		if person.IsAutomation() {
			automationSeats++
		} else {
			perPersonSeats++
		}
	}

	// Per-person bucket: every region-group row summed against seat count
	// times unit price.
	if item, ok := invoice.Licenses[dto.LicensePowerBI]; ok {
		actual := decimal.Zero
		for _, row := range rows {
			if row.AccountOrProject == perPersonAccount {
				actual = actual.Add(row.Net)
			}
		}
		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(perPersonSeats)))
		report.Buckets = append(report.Buckets, v.check("power_bi_region_groups", expected, actual))
	}

	// Automation bucket: tagged seats plus the automation license totals.
	automationExpected := decimal.Zero
	if item, ok := invoice.Licenses[dto.LicensePowerBI]; ok && automationSeats > 0 {
		automationExpected = item.UnitPrice.Mul(decimal.NewFromInt(int64(automationSeats)))
	}
	for _, t := range automationLicenses {
		if item, ok := invoice.Licenses[t]; ok {
			automationExpected = automationExpected.Add(item.Total)
		}
	}
	report.Buckets = append(report.Buckets,
		v.check("automation", automationExpected, bucketActual(rows, "P."+ProjectAutomation)))

	workplaceExpected := decimal.Zero
	for _, t := range workplaceLicenses {
		if item, ok := invoice.Licenses[t]; ok {
			workplaceExpected = workplaceExpected.Add(item.Total)
		}
	}
	report.Buckets = append(report.Buckets,
		v.check("workplace", workplaceExpected, bucketActual(rows, "P."+ProjectWorkplace)))

	if item, ok := invoice.Licenses[dto.LicenseTeamsRooms]; ok {
		report.Buckets = append(report.Buckets,
			v.check("meeting_room", item.Total, bucketActual(rows, "P."+ProjectMeetingRoom)))
	}

	// Whole invoice against the vendor's own stated total, when one was
	// extracted.
	rowSum := decimal.Zero
	for _, row := range rows {
		rowSum = rowSum.Add(row.Net)
	}
	if invoice.InvoiceTotal != nil {
		report.Overall = dto.TotalCheck{
			Verifiable:      true,
			Expected:        *invoice.InvoiceTotal,
			Actual:          rowSum,
			WithinTolerance: withinTolerance(rowSum, *invoice.InvoiceTotal),
		}
		if !report.Overall.WithinTolerance {
			v.log.Warn().Str("expected", invoice.InvoiceTotal.String()).Str("actual", rowSum.String()).
				Msg("invoice total mismatch")
		}
	} else {
		report.Overall = dto.TotalCheck{
			Verifiable: false,
			Actual:     rowSum,
		}
		v.log.Warn().Msg("contract total not found in text, whole-invoice check not verifiable")
	}

	return report
}

func (v *Validator) check(bucket string, expected, actual decimal.Decimal) dto.BucketCheck {
	ok := withinTolerance(actual, expected)
	if !ok {
		v.log.Warn().Str("bucket", bucket).Str("expected", expected.String()).
			Str("actual", actual.String()).Msg("bucket reconciliation mismatch")
	}
	return dto.BucketCheck{
		Bucket:          bucket,
		Expected:        expected,
		Actual:          actual,
		WithinTolerance: ok,
	}
}

func bucketActual(rows []dto.AccountingRow, accountOrProject string) decimal.Decimal {
	actual := decimal.Zero
	for _, row := range rows {
		if row.AccountOrProject == accountOrProject {
			actual = actual.Add(row.Net)
		}
	}
	return actual
}
