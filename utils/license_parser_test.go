package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhedlund/csp-invoice-allocator/dto"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func TestParseLicenseTextLegacyLayout(t *testing.T) {
	text := `
		Atea Sverige AB
		Faktura 90731245

		CSP -Power BI Pro (cycle) 250101 - 250131 42,00 ST 113,50 4 767,00

		Summa att betala 4 767,00
	`

	invoice, err := ParseLicenseText(text)
	require.NoError(t, err)

	require.Len(t, invoice.Licenses, 1)
	item := invoice.Licenses[dto.LicensePowerBI]
	assert.True(t, item.Quantity.Equal(dec(t, "42")), "quantity %s", item.Quantity)
	assert.True(t, item.UnitPrice.Equal(dec(t, "113.5")), "unit price %s", item.UnitPrice)
	assert.True(t, item.Total.Equal(dec(t, "4767")), "total %s", item.Total)
	assert.Equal(t, 1, item.Matches)

	require.NotNil(t, invoice.InvoiceTotal)
	assert.True(t, invoice.InvoiceTotal.Equal(dec(t, "4767")))
}

func TestParseLicenseTextCurrentLayout(t *testing.T) {
	text := "Faktura\n" +
		"AAA-00123 Cycle 250101 250131 5,00 ST 30,00 150,00\n" +
		"CSP - MS Teams EEA\n"

	invoice, err := ParseLicenseText(text)
	require.NoError(t, err)

	require.Len(t, invoice.Licenses, 1)
	item := invoice.Licenses[dto.LicenseTeamsEEA]
	assert.True(t, item.Total.Equal(dec(t, "150")))
	assert.Nil(t, invoice.InvoiceTotal)
}

func TestParseLicenseTextMergesBothLayouts(t *testing.T) {
	// A base cycle line in the legacy layout plus a correction in the
	// current layout, both for the same license type.
	text := "CSP -MS Teams EEA (Cycle) 250101 - 250131 10,00 ST 30,00 300,00\n" +
		"AAA-00123 Corr 250101 250131 -1,00 ST 28,00 -28,00\r\n" +
		"CSP - MS Teams EEA\n"

	invoice, err := ParseLicenseText(text)
	require.NoError(t, err)

	item := invoice.Licenses[dto.LicenseTeamsEEA]
	assert.Equal(t, 2, item.Matches)
	assert.True(t, item.Quantity.Equal(dec(t, "9")), "quantity %s", item.Quantity)
	assert.True(t, item.Total.Equal(dec(t, "272")), "total %s", item.Total)
	// Mean of the matched unit prices, not total/quantity.
	assert.True(t, item.UnitPrice.Equal(dec(t, "29")), "unit price %s", item.UnitPrice)
}

func TestParseLicenseTextCaseInsensitive(t *testing.T) {
	text := "csp -power bi pro (CYCLE) 250101 - 250131 2,00 st 150,00 300,00"

	invoice, err := ParseLicenseText(text)
	require.NoError(t, err)
	assert.True(t, invoice.HasLicense(dto.LicensePowerBI))
}

func TestParseLicenseTextMultipleTypes(t *testing.T) {
	text := `
		CSP -Power BI Pro (cycle) 250101 - 250131 42,00 ST 113,50 4 767,00
		CSP -Power Automate unattended RPA add-on (Cycle) 250101 - 250131 1,00 ST 400,00 400,00
		CSP -MS Teams Rooms Pro (Cycle) 250101 - 250131 4,00 ST 50,00 200,00
		Summa att betala (SEK): 5 367,00
	`

	invoice, err := ParseLicenseText(text)
	require.NoError(t, err)

	assert.Len(t, invoice.Licenses, 3)
	assert.True(t, invoice.HasLicense(dto.LicensePowerBI))
	assert.True(t, invoice.HasLicense(dto.LicensePowerAutomateRPA))
	assert.True(t, invoice.HasLicense(dto.LicenseTeamsRooms))
	require.NotNil(t, invoice.InvoiceTotal)
	assert.True(t, invoice.InvoiceTotal.Equal(dec(t, "5367")))
}

func TestParseLicenseTextNoMatches(t *testing.T) {
	_, err := ParseLicenseText("Kvitto för kaffe och bullar 250101")
	assert.ErrorIs(t, err, ErrNoLicenseData)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Power BI Pro", DisplayName(dto.LicensePowerBI))
	assert.Equal(t, "MS 365 E3 EEA (no Teams)", DisplayName(dto.LicenseMS365EEA))
}
