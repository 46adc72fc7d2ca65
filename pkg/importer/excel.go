// Package importer loads review items from spreadsheet files and feeds
// them into the scheduling engine in bulk.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/engine"
)

// ExcelImporter reads item IDs from an .xlsx workbook and schedules them
// through the engine's bulk scheduler.
//
// The expected layout is one item ID per row in the first column of the
// first sheet. A header row is detected by its literal "item_id" cell
// and skipped; blank rows are ignored.
type ExcelImporter struct {
	scheduler *engine.Scheduler
}

// NewExcelImporter creates an importer backed by the given scheduler.
func NewExcelImporter(scheduler *engine.Scheduler) *ExcelImporter {
	return &ExcelImporter{scheduler: scheduler}
}

// ImportFile reads item IDs from path and bulk-schedules them for the
// user. The returned report carries the per-item outcome; already
// scheduled items are skipped, not failed.
func (i *ExcelImporter) ImportFile(ctx context.Context, path, userID string, alg algorithm.Algorithm, opts ...engine.BulkOption) (*engine.BulkReport, error) {
	itemIDs, err := ReadItemIDs(path)
	if err != nil {
		return nil, err
	}
	return i.scheduler.BulkSchedule(ctx, userID, itemIDs, alg, opts...)
}

// ReadItemIDs extracts the item ID column from an .xlsx workbook.
func ReadItemIDs(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	itemIDs := make([]string, 0, len(rows))
	for idx, row := range rows {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		if idx == 0 && strings.EqualFold(id, "item_id") {
			continue
		}
		itemIDs = append(itemIDs, id)
	}
	return itemIDs, nil
}
