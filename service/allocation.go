package service

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mhedlund/csp-invoice-allocator/dto"
)

// Closed sets fixed by business policy: which license types feed the
// automation and workplace buckets.
var (
	automationLicenses = []dto.LicenseType{
		dto.LicensePowerAutomateRPA,
		dto.LicensePowerAutomatePlan,
		dto.LicensePowerAutomatePrem,
	}
	workplaceLicenses = []dto.LicenseType{
		dto.LicenseTeamsEEA,
		dto.LicenseCopilot,
		dto.LicenseMS365EEA,
	}
)

// AllocationEngine turns an aggregated invoice plus the roster into
// accounting rows.
type AllocationEngine struct {
	resolver *SettingsResolver
	approver string
	log      zerolog.Logger
}

func NewAllocationEngine(resolver *SettingsResolver, approver string, log zerolog.Logger) *AllocationEngine {
	return &AllocationEngine{
		resolver: resolver,
		approver: approver,
		log:      log,
	}
}

// Allocate applies the routing rules:
//  1. Per-person license seats are billed to each non-automation person's
//     region group, one row per group.
//  2. The automation bucket takes the automation-tagged people's seats plus
//     every automation-affiliated license total. Always one row.
//  3. The workplace bucket takes its license totals. Always one row.
//  4. The meeting-room bucket gets a row only when its license is present.
//
// If the per-person license is absent from the invoice, no per-group rows
// are emitted and the automation seat contribution is zero; everything else
// proceeds unaffected.
func (e *AllocationEngine) Allocate(invoice dto.AggregatedInvoice, people []dto.Person) []dto.AccountingRow {
	var rows []dto.AccountingRow

	perPerson, hasPerPerson := invoice.Licenses[dto.LicensePowerBI]

	if hasPerPerson {
		groupCounts := make(map[string]int)
		for _, person := range people {
			if person.IsAutomation() {
				continue
			}
			groupCounts[person.RegionGroup]++
		}

		groups := make([]string, 0, len(groupCounts))
		for group := range groupCounts {
			groups = append(groups, group)
		}
		sort.Strings(groups)

		for _, group := range groups {
			seats := decimal.NewFromInt(int64(groupCounts[group]))
			rows = append(rows, dto.AccountingRow{
				AccountOrProject: perPersonAccount,
				RegionGroup:      group,
				Activity:         perPersonActivity,
				Net:              perPerson.UnitPrice.Mul(seats).Round(2),
				Approver:         e.approver,
			})
			e.log.Info().Str("region_group", group).Int("seats", groupCounts[group]).
				Msg("per-person license allocated")
		}
	}

	automationTotal := decimal.Zero
	if hasPerPerson {
		automationSeats := 0
		for _, person := range people {
			if person.IsAutomation() {
				automationSeats++
			}
		}
		if automationSeats > 0 {
			automationTotal = perPerson.UnitPrice.Mul(decimal.NewFromInt(int64(automationSeats)))
		}
	}
	for _, t := range automationLicenses {
		if item, ok := invoice.Licenses[t]; ok {
			automationTotal = automationTotal.Add(item.Total)
		}
	}
	rows = append(rows, e.bucketRow(ProjectAutomation, automationTotal))

	workplaceTotal := decimal.Zero
	for _, t := range workplaceLicenses {
		if item, ok := invoice.Licenses[t]; ok {
			workplaceTotal = workplaceTotal.Add(item.Total)
		}
	}
	rows = append(rows, e.bucketRow(ProjectWorkplace, workplaceTotal))

	if item, ok := invoice.Licenses[dto.LicenseTeamsRooms]; ok {
		rows = append(rows, e.bucketRow(ProjectMeetingRoom, item.Total))
	}

	return rows
}

func (e *AllocationEngine) bucketRow(projectID string, net decimal.Decimal) dto.AccountingRow {
	setting := e.resolver.Resolve(projectID)
	e.log.Info().Str("project", setting.AccountOrProject).Str("net", net.Round(2).String()).
		Msg("bucket allocated")
	return dto.AccountingRow{
		AccountOrProject: setting.AccountOrProject,
		Activity:         setting.Activity,
		ProjectCategory:  setting.ProjectCategory,
		Net:              net.Round(2),
		Approver:         e.approver,
	}
}
