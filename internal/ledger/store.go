// Package ledger implements the daily transaction ledger kept in a single
// xlsx workbook: one sheet per calendar date, one row per weighing, keyed by
// the (registro id, operation kind) pair.
//
// Every operation runs a full load-mutate-persist cycle against the backing
// file, so the file on disk stays the single source of truth between calls.
// A per-store mutex serializes the cycle; the workbook format itself offers
// no protection against concurrent writers.
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
)

const (
	colID   = 0
	colKind = 1
)

// ErrRowWidth indicates an upsert payload that does not line up with the
// canonical column schema.
var ErrRowWidth = errors.New("row values do not match the ledger schema")

// Store owns the xlsx-backed daily ledger at a fixed path.
type Store struct {
	path   string
	now    func() time.Time
	mu     sync.Mutex
	logger *zap.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used to resolve "today". The server
// pins it to the business timezone; tests pin it to fixed dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a ledger store over the workbook at path. The file is not
// touched until the first operation runs.
func NewStore(path string, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the backing workbook.
func (s *Store) Path() string { return s.path }

// TodayKey returns the sheet name for the current business day.
func (s *Store) TodayKey() string { return s.now().Format(dateKeyLayout) }

// Upsert writes values into today's row for (id, kind), appending a new row
// when none exists yet. values must hold one cell per canonical column, in
// header order. Empty weight cells are stored as blanks, never as "" or 0.
// The only error surfaced to callers besides a malformed payload is a failed
// persist; treating that as fatal is what keeps a locked or unwritable file
// from being reported as a successful save.
func (s *Store) Upsert(id int, kind models.Kind, values []interface{}) error {
	if len(values) != len(headers) {
		return fmt.Errorf("%w: got %d cells, schema has %d columns", ErrRowWidth, len(values), len(headers))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := openOrCreate(s.path, s.logger)
	defer closeQuietly(f, s.logger)

	dateKey := s.TodayKey()
	if err := resolveSheet(f, dateKey, s.logger); err != nil {
		return err
	}

	rowIdx, err := findRow(f, dateKey, id, kind, s.logger)
	if err != nil {
		return err
	}
	if rowIdx == 0 {
		rows, err := f.GetRows(dateKey)
		if err != nil {
			return fmt.Errorf("scan sheet %s: %w", dateKey, err)
		}
		rowIdx = len(rows) + 1
	}

	row := normalizeRow(values)
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return fmt.Errorf("resolve row %d of %s: %w", rowIdx, dateKey, err)
	}
	if err := f.SetSheetRow(dateKey, cell, &row); err != nil {
		return fmt.Errorf("write row %d of %s: %w", rowIdx, dateKey, err)
	}

	s.logger.Info("upserted ledger row",
		zap.Int("id", id), zap.String("kind", string(kind)),
		zap.String("sheet", dateKey), zap.Int("row", rowIdx))

	return persist(f, s.path, s.logger)
}

// Delete removes today's row for (id, kind) entirely; rows below shift up.
// The returned bool reports whether a row was found. Asking to delete a row
// that is not there is a normal outcome, not an error.
func (s *Store) Delete(id int, kind models.Kind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := openOrCreate(s.path, s.logger)
	defer closeQuietly(f, s.logger)

	dateKey := s.TodayKey()
	idx, err := f.GetSheetIndex(dateKey)
	if err != nil {
		return false, fmt.Errorf("lookup sheet %s: %w", dateKey, err)
	}
	if idx < 0 {
		s.logger.Warn("no sheet for today, nothing to delete",
			zap.Int("id", id), zap.String("kind", string(kind)), zap.String("sheet", dateKey))
		return false, nil
	}

	rowIdx, err := findRow(f, dateKey, id, kind, s.logger)
	if err != nil {
		return false, err
	}
	if rowIdx == 0 {
		return false, nil
	}

	if err := f.RemoveRow(dateKey, rowIdx); err != nil {
		return false, fmt.Errorf("remove row %d of %s: %w", rowIdx, dateKey, err)
	}

	s.logger.Info("deleted ledger row",
		zap.Int("id", id), zap.String("kind", string(kind)),
		zap.String("sheet", dateKey), zap.Int("row", rowIdx))

	return true, persist(f, s.path, s.logger)
}

// LoadByDate projects the sheet named dateKey (YYYY-MM-DD) into typed
// records grouped by kind. A date without a sheet yields an empty day.
func (s *Store) LoadByDate(dateKey string) (models.DayEntries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(dateKey)
}

// LoadToday projects the current day's sheet.
func (s *Store) LoadToday() (models.DayEntries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(s.TodayKey())
}

// Insert allocates the next registro id for kind on today's sheet and writes
// values as a new row under it. Allocation picks one past the highest id the
// kind already holds, starting at 1; ids restart every day because rows never
// carry over between sheets. Allocation and the row write happen inside a
// single critical section, so two concurrent inserts can never be handed the
// same id. The id cell of values is overwritten with the allocated id.
func (s *Store) Insert(kind models.Kind, values []interface{}) (int, error) {
	if len(values) != len(headers) {
		return 0, fmt.Errorf("%w: got %d cells, schema has %d columns", ErrRowWidth, len(values), len(headers))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := openOrCreate(s.path, s.logger)
	defer closeQuietly(f, s.logger)

	dateKey := s.TodayKey()
	if err := resolveSheet(f, dateKey, s.logger); err != nil {
		return 0, err
	}

	rows, err := f.GetRows(dateKey)
	if err != nil {
		return 0, fmt.Errorf("scan sheet %s: %w", dateKey, err)
	}

	maxID := 0
	for i, row := range rows {
		if i == 0 || len(row) < colKind+1 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[colKind]), string(kind)) {
			continue
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(row[colID]), 64); err == nil && int(n) > maxID {
			maxID = int(n)
		}
	}
	id := maxID + 1

	row := normalizeRow(values)
	row[colID] = id
	rowIdx := len(rows) + 1
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return 0, fmt.Errorf("resolve row %d of %s: %w", rowIdx, dateKey, err)
	}
	if err := f.SetSheetRow(dateKey, cell, &row); err != nil {
		return 0, fmt.Errorf("write row %d of %s: %w", rowIdx, dateKey, err)
	}

	s.logger.Info("inserted ledger row",
		zap.Int("id", id), zap.String("kind", string(kind)),
		zap.String("sheet", dateKey), zap.Int("row", rowIdx))

	return id, persist(f, s.path, s.logger)
}

func (s *Store) loadLocked(dateKey string) (models.DayEntries, error) {
	entries := models.DayEntries{Compras: []models.Compra{}, Ventas: []models.Venta{}}

	f := openOrCreate(s.path, s.logger)
	defer closeQuietly(f, s.logger)

	idx, err := f.GetSheetIndex(dateKey)
	if err != nil {
		return entries, fmt.Errorf("lookup sheet %s: %w", dateKey, err)
	}
	if idx < 0 {
		s.logger.Debug("no sheet for date", zap.String("sheet", dateKey))
		return entries, nil
	}

	return projectSheet(f, dateKey, s.logger)
}

// normalizeRow copies values, replacing empty or absent weight cells with
// explicit blanks.
func normalizeRow(values []interface{}) []interface{} {
	row := make([]interface{}, len(values))
	copy(row, values)
	for i := range row {
		if !weightColumns[i] {
			continue
		}
		if v, ok := row[i].(string); ok && strings.TrimSpace(v) == "" {
			row[i] = nil
		}
	}
	return row
}
