package importer_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/engine"
	"github.com/raold/second-brain-sub005/pkg/importer"
)

// writeWorkbook builds a throwaway .xlsx with the given first-column cells.
func writeWorkbook(t *testing.T, cells []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, cell := range cells {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, axis, cell))
	}
	path := filepath.Join(t.TempDir(), "deck.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadItemIDs(t *testing.T) {
	path := writeWorkbook(t, []string{"item_id", "card-1", "card-2", "", "  card-3  "})

	itemIDs, err := importer.ReadItemIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"card-1", "card-2", "card-3"}, itemIDs,
		"header and blank rows are skipped, whitespace is trimmed")
}

func TestReadItemIDsNoHeader(t *testing.T) {
	path := writeWorkbook(t, []string{"card-1", "card-2"})

	itemIDs, err := importer.ReadItemIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"card-1", "card-2"}, itemIDs)
}

func TestReadItemIDsMissingFile(t *testing.T) {
	_, err := importer.ReadItemIDs(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}

func TestImportFile(t *testing.T) {
	sched, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Close() })

	path := writeWorkbook(t, []string{"item_id", "card-1", "card-2"})

	report, err := importer.NewExcelImporter(sched).ImportFile(
		context.Background(), path, "user-1", algorithm.AlgorithmAnki)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"card-1", "card-2"}, report.Scheduled)

	due, err := sched.GetDueItems(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, due, 2)
}
