package ledger

import (
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// openOrCreate loads the workbook at path, falling back to a brand-new empty
// workbook when the file is missing or cannot be parsed. Opening never fails;
// an unreadable file is logged as an error because continuing on an empty
// workbook means the old content is gone once the next persist runs.
func openOrCreate(path string, logger *zap.Logger) *excelize.File {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Error("cannot stat ledger file, starting with empty workbook",
				zap.String("path", path), zap.Error(err))
		}
		return excelize.NewFile()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		logger.Error("ledger file unreadable, starting with empty workbook",
			zap.String("path", path), zap.Error(err))
		return excelize.NewFile()
	}

	return f
}

// persist rewrites the whole workbook back to path. There is no incremental
// write: every mutation ends here. Header styling and column widths are
// reapplied to the daily sheets first; that part is cosmetic only and never
// blocks the save.
func persist(f *excelize.File, path string, logger *zap.Logger) error {
	for _, name := range f.GetSheetList() {
		if !isDateKey(name) {
			continue
		}
		if err := formatSheet(f, name); err != nil {
			logger.Warn("could not format sheet", zap.String("sheet", name), zap.Error(err))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	return nil
}

func isDateKey(name string) bool {
	_, err := time.Parse(dateKeyLayout, name)
	return err == nil
}

func closeQuietly(f *excelize.File, logger *zap.Logger) {
	if err := f.Close(); err != nil {
		logger.Debug("close workbook", zap.Error(err))
	}
}
