package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
)

// findRow returns the 1-based index of the data row matching (id, kind), or 0
// when no row matches. Kind cells are compared trimmed and case-insensitive.
// Ids are compared numerically first; rows written by older application
// versions may hold the id as text, so a trimmed string comparison remains as
// fallback when the cell does not parse.
func findRow(f *excelize.File, sheet string, id int, kind models.Kind, logger *zap.Logger) (int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("scan sheet %s: %w", sheet, err)
	}

	want := strconv.Itoa(id)
	for i, row := range rows {
		if i == 0 || len(row) < colKind+1 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[colKind]), string(kind)) {
			continue
		}

		cell := strings.TrimSpace(row[colID])
		if n, err := strconv.ParseFloat(cell, 64); err == nil {
			if int(n) == id {
				return i + 1, nil
			}
			continue
		}
		if cell == want {
			logger.Debug("matched legacy text id",
				zap.String("sheet", sheet), zap.String("cell", cell), zap.Int("row", i+1))
			return i + 1, nil
		}
	}

	return 0, nil
}
