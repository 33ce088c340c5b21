package ledger

import (
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// columnMigration describes a column introduced after sheets already existed
// in the field, and where it belongs relative to an anchor column that
// predates it.
type columnMigration struct {
	name        string
	anchor      string
	afterAnchor bool
}

// The sheet schema grew twice since the first deployments: "Incoterm" goes
// right after "Patente", "Remito" right before "Observaciones".
var columnMigrations = []columnMigration{
	{name: "Incoterm", anchor: "Patente", afterAnchor: true},
	{name: "Remito", anchor: "Observaciones", afterAnchor: false},
}

// migrateSheet inserts every column the sheet predates. The insertion adds an
// empty cell at the same position in every existing data row; no other cell
// moves or changes. A missing anchor is recovered by appending at the end of
// the header, logged, never fatal.
func migrateSheet(f *excelize.File, sheet string, logger *zap.Logger) {
	for _, m := range columnMigrations {
		header, err := headerRow(f, sheet)
		if err != nil {
			logger.Warn("cannot read header row, skipping column migration",
				zap.String("sheet", sheet), zap.String("column", m.name), zap.Error(err))
			continue
		}
		if len(header) == 0 || columnIndex(header, m.name) >= 0 {
			continue
		}

		insertAt := len(header) + 1
		if anchorIdx := columnIndex(header, m.anchor); anchorIdx >= 0 {
			if m.afterAnchor {
				insertAt = anchorIdx + 2
			} else {
				insertAt = anchorIdx + 1
			}
		} else {
			logger.Warn("anchor column missing, appending at end of header",
				zap.String("sheet", sheet), zap.String("column", m.name), zap.String("anchor", m.anchor))
		}

		colName, err := excelize.ColumnNumberToName(insertAt)
		if err != nil {
			logger.Warn("cannot resolve insertion column",
				zap.String("sheet", sheet), zap.String("column", m.name), zap.Error(err))
			continue
		}
		if err := f.InsertCols(sheet, colName, 1); err != nil {
			logger.Warn("cannot insert column",
				zap.String("sheet", sheet), zap.String("column", m.name), zap.Error(err))
			continue
		}

		cell, err := excelize.CoordinatesToCellName(insertAt, 1)
		if err == nil {
			err = f.SetCellValue(sheet, cell, m.name)
		}
		if err != nil {
			logger.Warn("cannot label inserted column",
				zap.String("sheet", sheet), zap.String("column", m.name), zap.Error(err))
			continue
		}

		logger.Info("inserted missing column",
			zap.String("sheet", sheet), zap.String("column", m.name), zap.Int("position", insertAt))
	}
}

func headerRow(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
