package client

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mhedlund/csp-invoice-allocator/dto"
	"github.com/mhedlund/csp-invoice-allocator/logger"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func writeRosterFixture(t *testing.T, path string, userHeader []interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	users, err := f.NewSheet(SheetUsers)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(SheetUsers, "A1", &userHeader))
	require.NoError(t, f.SetSheetRow(SheetUsers, "A2",
		&[]interface{}{"Anna Berg", "RG Nord", "1201", ""}))
	require.NoError(t, f.SetSheetRow(SheetUsers, "A3",
		&[]interface{}{"Mattias Gran", "RG Syd", "1305", "Automation"}))
	require.NoError(t, f.SetSheetRow(SheetUsers, "A4",
		&[]interface{}{"", "RG Syd", "1305", ""}))

	_, err = f.NewSheet(SheetSettings)
	require.NoError(t, err)
	settingsHeader := []interface{}{"ProjektID", "Kon/Proj", "Aktivitet", "ProjKat", "Mottagare"}
	require.NoError(t, f.SetSheetRow(SheetSettings, "A1", &settingsHeader))
	require.NoError(t, f.SetSheetRow(SheetSettings, "A2",
		&[]interface{}{"P.20257601", "P.20257601", "050", "5420", "Digital Utveckling och integration"}))
	require.NoError(t, f.SetSheetRow(SheetSettings, "A3",
		&[]interface{}{"20257407", "P.20257407", "738", "5420", "Digital Arbetsplats"}))

	f.SetActiveSheet(users)
	require.NoError(t, f.SaveAs(path))
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")
	writeRosterFixture(t, path, []interface{}{"Namn", "RG", "Kostnadsställe", "Specialhantering"})

	wc := NewWorkbookClient(logger.NewWithWriter(testWriter{t}))
	people, warnings, err := wc.LoadRoster(path)
	require.NoError(t, err)

	assert.Empty(t, warnings)
	require.Len(t, people, 2, "nameless rows are skipped")
	assert.Equal(t, dto.Person{
		Name:        "Anna Berg",
		RegionGroup: "RG Nord",
		CostCenter:  "1201",
	}, people[0])
	assert.True(t, people[1].IsAutomation())
}

func TestLoadRosterMissingColumnWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")
	writeRosterFixture(t, path, []interface{}{"Namn", "RG", "Kostnadsställe"})

	wc := NewWorkbookClient(logger.NewWithWriter(testWriter{t}))
	people, warnings, err := wc.LoadRoster(path)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Specialhantering")
	require.Len(t, people, 2)
	assert.False(t, people[1].IsAutomation(), "missing column reads as empty")
}

func TestLoadProjectSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")
	writeRosterFixture(t, path, []interface{}{"Namn", "RG", "Kostnadsställe", "Specialhantering"})

	wc := NewWorkbookClient(logger.NewWithWriter(testWriter{t}))
	settings, warnings, err := wc.LoadProjectSettings(path)
	require.NoError(t, err)

	assert.Empty(t, warnings)
	require.Len(t, settings, 2)
	assert.Equal(t, "20257601", settings[0].ProjectID, "vendor prefix is stripped")
	assert.Equal(t, "P.20257601", settings[0].AccountOrProject)
	assert.Equal(t, "20257407", settings[1].ProjectID, "bare identifiers pass through")
	assert.Equal(t, "P.20257407", settings[1].AccountOrProject)
}

func TestLoadRosterMissingFile(t *testing.T) {
	wc := NewWorkbookClient(logger.NewWithWriter(testWriter{t}))
	_, _, err := wc.LoadRoster(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}

func TestWriteAccountingRowsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kontering.xlsx")
	rows := []dto.AccountingRow{
		{
			AccountOrProject: "5420",
			RegionGroup:      "RG Nord",
			Activity:         "738",
			ProjectCategory:  "5420",
			Net:              decimal.RequireFromString("450.00"),
			Approver:         "John Munthe",
		},
		{
			AccountOrProject: "P.20257601",
			Activity:         "050",
			ProjectCategory:  "5420",
			Net:              decimal.RequireFromString("550.00"),
			Approver:         "John Munthe",
		},
	}

	wc := NewWorkbookClient(logger.NewWithWriter(testWriter{t}))
	require.NoError(t, wc.WriteAccountingRows(rows, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t,
		[]string{"Kon/Proj", "", "RG", "Aktivitet", "ProjKat", "", "Netto", "Godkänt av"},
		got[0])
	assert.Equal(t, "5420", got[1][0])
	assert.Equal(t, "RG Nord", got[1][2])
	assert.Equal(t, "450", got[1][6])
	assert.Equal(t, "P.20257601", got[2][0])
	assert.Equal(t, "John Munthe", got[2][7])
}
