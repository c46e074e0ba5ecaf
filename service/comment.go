package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mhedlund/csp-invoice-allocator/dto"
	"github.com/mhedlund/csp-invoice-allocator/utils"
)

// ComposeComment produces the narrative text attached to the approved
// invoice record. Section one lists every group-billed person; section two
// lists, per recipient, the license types billed to them. Recipient order is
// the fixed bucket sequence automation, workplace, meeting room — downstream
// consumers rely on it.
func ComposeComment(invoice dto.AggregatedInvoice, people []dto.Person, resolver *SettingsResolver) string {
	var b strings.Builder

	groupBilled := make([]dto.Person, 0, len(people))
	hasAutomationPeople := false
	for _, person := range people {
		if person.IsAutomation() {
			hasAutomationPeople = true
			continue
		}
		groupBilled = append(groupBilled, person)
	}
	sort.Slice(groupBilled, func(i, j int) bool {
		if groupBilled[i].RegionGroup != groupBilled[j].RegionGroup {
			return groupBilled[i].RegionGroup < groupBilled[j].RegionGroup
		}
		return groupBilled[i].Name < groupBilled[j].Name
	})

	if len(groupBilled) > 0 {
		b.WriteString(utils.DisplayName(dto.LicensePowerBI) + "-licenser\n")
		for _, person := range groupBilled {
			fmt.Fprintf(&b, "%s\t%s:%s\n", person.Name, person.RegionGroup, person.CostCenter)
		}
	}

	// Recipients keep first-encountered order; the meeting-room bucket often
	// shares a recipient with the workplace bucket and then merges into its
	// line.
	var recipients []string
	licensesByRecipient := make(map[string][]string)
	add := func(recipient string, licenses ...string) {
		if len(licenses) == 0 {
			return
		}
		if _, seen := licensesByRecipient[recipient]; !seen {
			recipients = append(recipients, recipient)
		}
		licensesByRecipient[recipient] = append(licensesByRecipient[recipient], licenses...)
	}

	var automationBilled []string
	for _, t := range automationLicenses {
		if invoice.HasLicense(t) {
			automationBilled = append(automationBilled, utils.DisplayName(t))
		}
	}
	if hasAutomationPeople && invoice.HasLicense(dto.LicensePowerBI) {
		automationBilled = append(automationBilled, utils.DisplayName(dto.LicensePowerBI)+" (Automation)")
	}
	if len(automationBilled) > 0 {
		add(resolver.Resolve(ProjectAutomation).Recipient, automationBilled...)
	}

	var workplaceBilled []string
	for _, t := range workplaceLicenses {
		if invoice.HasLicense(t) {
			workplaceBilled = append(workplaceBilled, utils.DisplayName(t))
		}
	}
	if len(workplaceBilled) > 0 {
		add(resolver.Resolve(ProjectWorkplace).Recipient, workplaceBilled...)
	}

	if invoice.HasLicense(dto.LicenseTeamsRooms) {
		add(resolver.Resolve(ProjectMeetingRoom).Recipient, utils.DisplayName(dto.LicenseTeamsRooms))
	}

	for _, recipient := range recipients {
		fmt.Fprintf(&b, "\nTill %s licenser för %s\n", recipient, strings.Join(licensesByRecipient[recipient], ", "))
	}

	return b.String()
}
