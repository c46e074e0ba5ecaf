package client

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/mhedlund/csp-invoice-allocator/dto"
)

// Sheet and column names follow the roster workbook maintained by the
// license owner. The workbook is hand-edited, so loading is forgiving:
// missing columns produce warnings, not errors.
const (
	SheetUsers    = "Power BI Users"
	SheetSettings = "Project Settings"
)

var (
	userColumns    = []string{"Namn", "RG", "Kostnadsställe", "Specialhantering"}
	settingColumns = []string{"ProjektID", "Kon/Proj", "Aktivitet", "ProjKat", "Mottagare"}
)

// WorkbookClient reads the roster workbook and writes the accounting output
// workbook.
type WorkbookClient struct {
	log zerolog.Logger
}

func NewWorkbookClient(log zerolog.Logger) *WorkbookClient {
	return &WorkbookClient{log: log}
}

// LoadRoster reads the user sheet into Person records. Returned warnings
// name absent expected columns; rows without a name are skipped.
func (wc *WorkbookClient) LoadRoster(path string) ([]dto.Person, []string, error) {
	rows, warnings, err := wc.readSheet(path, SheetUsers, userColumns)
	if err != nil {
		return nil, nil, err
	}

	header := columnIndex(rows[0])
	var people []dto.Person
	for _, row := range rows[1:] {
		person := dto.Person{
			Name:            cell(row, header, "Namn"),
			RegionGroup:     cell(row, header, "RG"),
			CostCenter:      cell(row, header, "Kostnadsställe"),
			SpecialHandling: cell(row, header, "Specialhantering"),
		}
		if person.Name == "" {
			continue
		}
		people = append(people, person)
	}

	wc.log.Info().Int("people", len(people)).Msg("roster loaded")
	return people, warnings, nil
}

// LoadProjectSettings reads the settings sheet. Project identifiers are
// normalized by stripping the "P." vendor prefix before use as lookup keys.
func (wc *WorkbookClient) LoadProjectSettings(path string) ([]dto.ProjectSetting, []string, error) {
	rows, warnings, err := wc.readSheet(path, SheetSettings, settingColumns)
	if err != nil {
		return nil, nil, err
	}

	header := columnIndex(rows[0])
	var settings []dto.ProjectSetting
	for _, row := range rows[1:] {
		id := strings.TrimPrefix(cell(row, header, "ProjektID"), "P.")
		if id == "" {
			continue
		}
		settings = append(settings, dto.ProjectSetting{
			ProjectID:        id,
			AccountOrProject: "P." + id,
			Activity:         cell(row, header, "Aktivitet"),
			ProjectCategory:  cell(row, header, "ProjKat"),
			Recipient:        cell(row, header, "Mottagare"),
		})
	}

	wc.log.Info().Int("projects", len(settings)).Msg("project settings loaded")
	return settings, warnings, nil
}

func (wc *WorkbookClient) readSheet(path, sheet string, expected []string) ([][]string, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	var warnings []string
	header := columnIndex(rows[0])
	for _, col := range expected {
		if _, ok := header[col]; !ok {
			warning := fmt.Sprintf("sheet %q is missing column %q", sheet, col)
			wc.log.Warn().Msg(warning)
			warnings = append(warnings, warning)
		}
	}

	return rows, warnings, nil
}

// outputHeader is the fixed Medius column order. The two unnamed columns are
// part of the import format and stay blank.
var outputHeader = []interface{}{"Kon/Proj", "", "RG", "Aktivitet", "ProjKat", "", "Netto", "Godkänt av"}

// WriteAccountingRows writes the rows to a new workbook at path, preserving
// row order and the fixed column layout.
func (wc *WorkbookClient) WriteAccountingRows(rows []dto.AccountingRow, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &outputHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.AccountOrProject,
			"",
			row.RegionGroup,
			row.Activity,
			row.ProjectCategory,
			"",
			row.Net.InexactFloat64(),
			row.Approver,
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	wc.log.Info().Str("path", path).Int("rows", len(rows)).Msg("accounting rows written")
	return nil
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	return index
}

func cell(row []string, header map[string]int, column string) string {
	i, ok := header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
