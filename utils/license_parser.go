package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mhedlund/csp-invoice-allocator/dto"
)

// ErrNoLicenseData means no license type matched anywhere in the text. A
// document that matched nothing is not an invoice of the expected kind, so
// this aborts the run before allocation. Any subset of types matching is
// fine.
var ErrNoLicenseData = errors.New("no license line items found in invoice text")

const (
	// amountPat mirrors the shape accepted by ParseAmount.
	amountPat = `-?[0-9]+(?:[ \x{00A0}][0-9]{3})*(?:,[0-9]+)?`
	datePat   = `[0-9]{6}`
	// periodPat is the closed set of billing-period tokens the vendor uses.
	periodPat = `(?:cycle(?:[ -]?fee)?|corr(?:ection)?|purchase[ -]?fee)`
)

// licenseNames maps each license type to the accepted spellings of its
// product name on the invoice. The first entry is the canonical display
// name; later entries cover spellings seen on older invoices and common OCR
// renderings.
var licenseNames = map[dto.LicenseType][]string{
	dto.LicensePowerBI:           {"Power BI Pro", "PowerBI Pro"},
	dto.LicensePowerAutomateRPA:  {"Power Automate unattended RPA add-on", "Power Automate unattended RPA add on"},
	dto.LicenseTeamsRooms:        {"MS Teams Rooms Pro", "Microsoft Teams Rooms Pro"},
	dto.LicensePowerAutomatePlan: {"Power Automate with att RPA plan", "Power Automate with attended RPA plan"},
	dto.LicenseTeamsEEA:          {"MS Teams EEA", "Microsoft Teams EEA"},
	dto.LicenseCopilot:           {"MS Copilot for MS 365", "Microsoft Copilot for Microsoft 365"},
	dto.LicenseMS365EEA:          {"MS 365 E3 EEA (no Teams)", "Microsoft 365 E3 EEA (no Teams)"},
	dto.LicensePowerAutomatePrem: {"Power Automate prem.", "Power Automate premium"},
}

// DisplayName returns the canonical human name for a license type.
func DisplayName(t dto.LicenseType) string {
	if names, ok := licenseNames[t]; ok {
		return names[0]
	}
	return string(t)
}

// licensePatterns holds the two pattern families for one license type. Both
// are always evaluated over the whole text; a genuine invoice uses only one
// layout, but the extractor never assumes which.
type licensePatterns struct {
	// legacy: one line naming the type inline, e.g.
	//   "CSP -Power BI Pro (cycle) 250101 - 250131 42,00 ST 113,50 4 767,00"
	legacy *regexp.Regexp
	// current: a SKU-led billing line with the product name on the next line:
	//   "AAA-12345 Cycle 250101 250131 42,00 ST 113,50 4 767,00"
	//   "CSP - Power BI Pro"
	current *regexp.Regexp
}

var patternRegistry = buildPatternRegistry()

func buildPatternRegistry() map[dto.LicenseType]licensePatterns {
	registry := make(map[dto.LicenseType]licensePatterns, len(licenseNames))
	for t, names := range licenseNames {
		alt := nameAlternation(names)
		registry[t] = licensePatterns{
			legacy: regexp.MustCompile(
				`(?i)CSP\s*-\s*` + alt + `\s*\(` + periodPat + `\)\s+` +
					datePat + `\s*-\s*` + datePat + `\s+` +
					`(` + amountPat + `)\s+ST\s+(` + amountPat + `)\s+(` + amountPat + `)`),
			current: regexp.MustCompile(
				`(?im)^[ \t]*[A-Z0-9][A-Z0-9-]{4,}[ \t]+` + periodPat + `[ \t]+` +
					datePat + `[ \t]+` + datePat + `[ \t]+` +
					`(` + amountPat + `)[ \t]+ST[ \t]+(` + amountPat + `)[ \t]+(` + amountPat + `)` +
					`[ \t]*\r?\n[ \t]*(?:CSP[ \t]*-[ \t]*)?` + alt),
		}
	}
	return registry
}

// nameAlternation builds a non-capturing alternation over the accepted
// spellings, tolerant of OCR whitespace runs inside a name.
func nameAlternation(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(name), " ", `\s+`)
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

// invoiceTotalRe finds the contract-total anchor. Its absence is non-fatal;
// it only disables the whole-invoice reconciliation.
var invoiceTotalRe = regexp.MustCompile(
	`(?i)summa\s+att\s+betala(?:\s*\(?SEK\)?)?\s*:?\s*(` + amountPat + `)`)

// ParseLicenseText scans OCR text for every known license type under both
// layout variants and merges all non-overlapping matches per type into one
// aggregate. Returns ErrNoLicenseData when nothing matched at all, or a
// *MalformedNumberError when a captured token does not parse.
func ParseLicenseText(text string) (dto.AggregatedInvoice, error) {
	invoice := dto.AggregatedInvoice{
		Licenses: make(map[dto.LicenseType]dto.LicenseLineItem),
	}

	for _, t := range dto.AllLicenseTypes {
		patterns := patternRegistry[t]

		matches := patterns.legacy.FindAllStringSubmatch(text, -1)
		matches = append(matches, patterns.current.FindAllStringSubmatch(text, -1)...)
		if len(matches) == 0 {
			continue
		}

		item, err := mergeMatches(matches)
		if err != nil {
			return dto.AggregatedInvoice{}, err
		}
		invoice.Licenses[t] = item
	}

	if len(invoice.Licenses) == 0 {
		return dto.AggregatedInvoice{}, ErrNoLicenseData
	}

	if m := invoiceTotalRe.FindStringSubmatch(text); m != nil {
		total, err := ParseAmount(m[1])
		if err != nil {
			return dto.AggregatedInvoice{}, err
		}
		invoice.InvoiceTotal = &total
	}

	return invoice, nil
}

// mergeMatches folds every matched occurrence of one license type into a
// single line item: quantities and totals are summed, the unit price is the
// arithmetic mean of the matched unit prices. Correction lines can carry a
// zero or negative quantity, so the mean is taken over prices rather than
// derived from total/quantity.
func mergeMatches(matches [][]string) (dto.LicenseLineItem, error) {
	var item dto.LicenseLineItem
	unitPriceSum := decimal.Zero

	for _, m := range matches {
		quantity, err := ParseAmount(m[1])
		if err != nil {
			return dto.LicenseLineItem{}, err
		}
		unitPrice, err := ParseAmount(m[2])
		if err != nil {
			return dto.LicenseLineItem{}, err
		}
		total, err := ParseAmount(m[3])
		if err != nil {
			return dto.LicenseLineItem{}, err
		}

		item.Quantity = item.Quantity.Add(quantity)
		item.Total = item.Total.Add(total)
		unitPriceSum = unitPriceSum.Add(unitPrice)
		item.Matches++
	}

	item.UnitPrice = unitPriceSum.Div(decimal.NewFromInt(int64(item.Matches)))
	return item, nil
}
