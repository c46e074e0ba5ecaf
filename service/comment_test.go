package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhedlund/csp-invoice-allocator/dto"
	"github.com/mhedlund/csp-invoice-allocator/logger"
)

func TestComposeComment(t *testing.T) {
	invoice := dto.AggregatedInvoice{
		Licenses: map[dto.LicenseType]dto.LicenseLineItem{
			dto.LicensePowerBI:          {Quantity: dec(t, "3"), UnitPrice: dec(t, "150.00"), Total: dec(t, "450.00"), Matches: 1},
			dto.LicensePowerAutomateRPA: {Total: dec(t, "400.00"), Matches: 1},
			dto.LicenseTeamsEEA:         {Total: dec(t, "310.00"), Matches: 1},
			dto.LicenseTeamsRooms:       {Total: dec(t, "200.00"), Matches: 1},
		},
	}
	people := []dto.Person{
		{Name: "Dag Ek", RegionGroup: "B", CostCenter: "2001"},
		{Name: "Anna Berg", RegionGroup: "A", CostCenter: "1001"},
		{Name: "Mattias Gran", RegionGroup: "A", CostCenter: "1001", SpecialHandling: dto.SpecialHandlingAutomation},
	}
	resolver := NewSettingsResolver(nil, DefaultProjectSettings, logger.NewWithWriter(testWriter{t}))

	comment := ComposeComment(invoice, people, resolver)

	expected := "Power BI Pro-licenser\n" +
		"Anna Berg\tA:1001\n" +
		"Dag Ek\tB:2001\n" +
		"\nTill Digital Utveckling och integration licenser för Power Automate unattended RPA add-on, Power BI Pro (Automation)\n" +
		"\nTill Digital Arbetsplats licenser för MS Teams EEA, MS Teams Rooms Pro\n"
	assert.Equal(t, expected, comment)
}

func TestComposeCommentRecipientOrderIsFixed(t *testing.T) {
	// Meeting-room only: its recipient line must still come after any
	// automation or workplace line would have, i.e. the bucket order is
	// declared, not alphabetical.
	invoice := dto.AggregatedInvoice{
		Licenses: map[dto.LicenseType]dto.LicenseLineItem{
			dto.LicenseTeamsRooms:       {Total: dec(t, "200.00"), Matches: 1},
			dto.LicensePowerAutomateRPA: {Total: dec(t, "400.00"), Matches: 1},
		},
	}
	resolver := NewSettingsResolver(nil, DefaultProjectSettings, logger.NewWithWriter(testWriter{t}))

	comment := ComposeComment(invoice, nil, resolver)

	automationIdx := strings.Index(comment, "Digital Utveckling och integration")
	meetingRoomIdx := strings.Index(comment, "MS Teams Rooms Pro")
	assert.Greater(t, meetingRoomIdx, automationIdx)
	// No people section without roster rows.
	assert.False(t, strings.HasPrefix(comment, "Power BI Pro-licenser"))
}

func TestComposeCommentWithoutAutomationPeople(t *testing.T) {
	invoice := dto.AggregatedInvoice{
		Licenses: map[dto.LicenseType]dto.LicenseLineItem{
			dto.LicensePowerBI: {Quantity: dec(t, "1"), UnitPrice: dec(t, "150.00"), Total: dec(t, "150.00"), Matches: 1},
		},
	}
	people := []dto.Person{
		{Name: "Anna Berg", RegionGroup: "A", CostCenter: "1001"},
	}
	resolver := NewSettingsResolver(nil, DefaultProjectSettings, logger.NewWithWriter(testWriter{t}))

	comment := ComposeComment(invoice, people, resolver)

	assert.Contains(t, comment, "Anna Berg\tA:1001")
	assert.NotContains(t, comment, "(Automation)")
}
