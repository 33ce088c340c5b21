package ledger

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const dateKeyLayout = "2006-01-02"

// headers is the canonical column order of a daily sheet. The first column is
// always the registro id and the second the operation kind; everything else
// is positional payload.
var headers = []string{
	"Registro ID", "Tipo Operación", "Contraparte", "Producto",
	"Peso Bruto (kg)", "Peso Tara (kg)", "Merma (kg)", "Peso Neto (kg)",
	"Precio x Kg", "Importe", "Chofer/Transporte", "Patente", "Incoterm",
	"Fecha Operacion", "Hora Ingreso", "Hora Salida", "Remito", "Observaciones",
}

// weightColumns holds the zero-based positions of the four weight measures.
// Empty values in these columns are stored as blank cells so downstream
// numeric parsing sees them as missing rather than as zero or text.
var weightColumns = map[int]bool{4: true, 5: true, 6: true, 7: true}

var columnWidths = []float64{12, 15, 25, 25, 18, 18, 12, 18, 15, 18, 18, 15, 10, 15, 15, 15, 14, 30}

// resolveSheet leaves the sheet named dateKey ready for use: created with the
// canonical header when absent, migrated to the current schema otherwise.
// Calling it on an already-current sheet is a no-op.
func resolveSheet(f *excelize.File, dateKey string, logger *zap.Logger) error {
	idx, err := f.GetSheetIndex(dateKey)
	if err != nil {
		return fmt.Errorf("lookup sheet %s: %w", dateKey, err)
	}
	if idx >= 0 {
		migrateSheet(f, dateKey, logger)
		return nil
	}

	if _, err := f.NewSheet(dateKey); err != nil {
		return fmt.Errorf("create sheet %s: %w", dateKey, err)
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(dateKey, "A1", &row); err != nil {
		return fmt.Errorf("write header row of %s: %w", dateKey, err)
	}

	dropPlaceholderSheet(f, dateKey)
	logger.Info("created daily sheet", zap.String("sheet", dateKey))
	return nil
}

// dropPlaceholderSheet removes the default sheet a fresh workbook starts
// with, once at least one real daily sheet exists.
func dropPlaceholderSheet(f *excelize.File, keep string) {
	for _, name := range f.GetSheetList() {
		if name != keep && !isDateKey(name) && strings.HasPrefix(name, "Sheet") {
			_ = f.DeleteSheet(name)
		}
	}
}

// formatSheet reapplies header styling, column widths and the frozen header
// pane. Cosmetic only.
func formatSheet(f *excelize.File, sheet string) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("build header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", styleID); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
