package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mhedlund/csp-invoice-allocator/dto"
)

// The three fixed accounting buckets, keyed by normalized project identifier
// (no "P." prefix).
const (
	ProjectAutomation  = "20257601"
	ProjectWorkplace   = "20257407"
	ProjectMeetingRoom = "20257403"
)

// Per-person license rows book straight to a G/L account instead of a
// project.
const (
	perPersonAccount  = "5420"
	perPersonActivity = "738"
)

// DefaultProjectSettings are the built-in fallback records for the three
// known buckets. The roster workbook is maintained by a non-technical owner;
// a stale or incomplete settings sheet must not block processing.
var DefaultProjectSettings = map[string]dto.ProjectSetting{
	ProjectAutomation: {
		ProjectID:        ProjectAutomation,
		AccountOrProject: "P." + ProjectAutomation,
		Activity:         "050",
		ProjectCategory:  "5420",
		Recipient:        "Digital Utveckling och integration",
	},
	ProjectWorkplace: {
		ProjectID:        ProjectWorkplace,
		AccountOrProject: "P." + ProjectWorkplace,
		Activity:         "738",
		ProjectCategory:  "5420",
		Recipient:        "Digital Arbetsplats",
	},
	ProjectMeetingRoom: {
		ProjectID:        ProjectMeetingRoom,
		AccountOrProject: "P." + ProjectMeetingRoom,
		Activity:         "738",
		ProjectCategory:  "5420",
		Recipient:        "Digital Arbetsplats",
	},
}

// SettingsResolver maps project identifiers to accounting coordinates,
// falling back to the default records when the settings sheet lacks a row.
// Fallback use is recorded as a warning, never an error.
type SettingsResolver struct {
	table    map[string]dto.ProjectSetting
	defaults map[string]dto.ProjectSetting
	warnings []string
	log      zerolog.Logger
}

func NewSettingsResolver(settings []dto.ProjectSetting, defaults map[string]dto.ProjectSetting, log zerolog.Logger) *SettingsResolver {
	table := make(map[string]dto.ProjectSetting, len(settings))
	for _, s := range settings {
		table[s.ProjectID] = s
	}
	return &SettingsResolver{
		table:    table,
		defaults: defaults,
		log:      log,
	}
}

// Resolve returns the accounting coordinates for a project identifier. The
// "P." vendor prefix is stripped before lookup and re-applied on the
// returned record. Unknown identifiers resolve to a generic record so the
// pipeline always produces a row.
func (r *SettingsResolver) Resolve(projectID string) dto.ProjectSetting {
	id := strings.TrimPrefix(projectID, "P.")

	if setting, ok := r.table[id]; ok {
		return setting
	}

	r.warn(fmt.Sprintf("no settings row for project %s, using built-in defaults", id))
	if setting, ok := r.defaults[id]; ok {
		return setting
	}

	return dto.ProjectSetting{
		ProjectID:        id,
		AccountOrProject: "P." + id,
		Activity:         "738",
		ProjectCategory:  "5420",
		Recipient:        "Okänd mottagare",
	}
}

// Warnings returns every missing-settings warning recorded so far.
func (r *SettingsResolver) Warnings() []string {
	return r.warnings
}

func (r *SettingsResolver) warn(msg string) {
	r.log.Warn().Msg(msg)
	r.warnings = append(r.warnings, msg)
}
