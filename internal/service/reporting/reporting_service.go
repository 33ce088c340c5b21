package reporting

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
)

// EntryLoader exposes the ledger reads the reporting service needs.
type EntryLoader interface {
	LoadByDate(dateKey string) (models.DayEntries, error)
	TodayKey() string
}

// Service aggregates a day's weighings into the end-of-day summary.
type Service struct {
	ledger EntryLoader
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(ledger EntryLoader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, logger: logger}
}

// BuildDailySummary totals counts, net kilograms and amounts per kind for the
// given YYYY-MM-DD date (today when empty). Entries without a computed net
// weight or amount contribute zero to the totals.
func (s *Service) BuildDailySummary(dateKey string) (models.DailySummary, error) {
	if dateKey == "" {
		dateKey = s.ledger.TodayKey()
	}

	entries, err := s.ledger.LoadByDate(dateKey)
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("load entries for %s: %w", dateKey, err)
	}

	summary := models.DailySummary{
		Date:         dateKey,
		ComprasCount: len(entries.Compras),
		VentasCount:  len(entries.Ventas),
		CreatedAt:    time.Now().UTC(),
	}

	for _, c := range entries.Compras {
		if c.Neto != nil {
			summary.ComprasKg += *c.Neto
		}
		if c.Importe != nil {
			summary.ComprasMonto += *c.Importe
		}
	}
	for _, v := range entries.Ventas {
		if v.Neto != nil {
			summary.VentasKg += *v.Neto
		}
		if v.Importe != nil {
			summary.VentasMonto += *v.Importe
		}
	}
	summary.BalanceKg = summary.ComprasKg - summary.VentasKg

	s.logger.Debug("daily summary built",
		zap.String("date", dateKey),
		zap.Int("compras", summary.ComprasCount),
		zap.Int("ventas", summary.VentasCount),
		zap.Float64("balance_kg", summary.BalanceKg))

	return summary, nil
}

// FormatSummary renders a one-line human readable version of the summary for
// logs and notifications.
func (s *Service) FormatSummary(summary models.DailySummary) string {
	if summary.ComprasCount == 0 && summary.VentasCount == 0 {
		return fmt.Sprintf("Resumen %s: sin movimientos.", summary.Date)
	}
	return fmt.Sprintf("Resumen %s: %d compras (%.0f kg, $%.0f), %d ventas (%.0f kg, $%.0f), balance %.0f kg.",
		summary.Date,
		summary.ComprasCount, summary.ComprasKg, summary.ComprasMonto,
		summary.VentasCount, summary.VentasKg, summary.VentasMonto,
		summary.BalanceKg)
}
