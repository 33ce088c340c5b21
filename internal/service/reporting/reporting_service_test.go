package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/candelento/balanza/internal/domain/models"
)

func f(v float64) *float64 { return &v }

type stubLoader struct {
	entries models.DayEntries
}

func (s *stubLoader) LoadByDate(dateKey string) (models.DayEntries, error) { return s.entries, nil }
func (s *stubLoader) TodayKey() string                                     { return "2024-03-15" }

func TestBuildDailySummary(t *testing.T) {
	loader := &stubLoader{entries: models.DayEntries{
		Compras: []models.Compra{
			{ID: 1, Neto: f(800), Importe: f(120000)},
			{ID: 2, Neto: f(500), Importe: f(60000)},
			{ID: 3}, // still on the scale, no net yet
		},
		Ventas: []models.Venta{
			{ID: 1, Neto: f(300), Importe: f(45000)},
		},
	}}
	svc := NewService(loader, zaptest.NewLogger(t))

	summary, err := svc.BuildDailySummary("2024-03-15")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", summary.Date)
	assert.Equal(t, 3, summary.ComprasCount)
	assert.Equal(t, 1, summary.VentasCount)
	assert.InDelta(t, 1300, summary.ComprasKg, 0.001)
	assert.InDelta(t, 300, summary.VentasKg, 0.001)
	assert.InDelta(t, 1000, summary.BalanceKg, 0.001)
	assert.InDelta(t, 180000, summary.ComprasMonto, 0.001)
	assert.InDelta(t, 45000, summary.VentasMonto, 0.001)
	assert.False(t, summary.CreatedAt.IsZero())
}

func TestBuildDailySummaryDefaultsToToday(t *testing.T) {
	svc := NewService(&stubLoader{}, zaptest.NewLogger(t))

	summary, err := svc.BuildDailySummary("")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", summary.Date)
}

func TestFormatSummary(t *testing.T) {
	svc := NewService(&stubLoader{}, zaptest.NewLogger(t))

	assert.Equal(t, "Resumen 2024-03-15: sin movimientos.",
		svc.FormatSummary(models.DailySummary{Date: "2024-03-15"}))

	got := svc.FormatSummary(models.DailySummary{
		Date:         "2024-03-15",
		ComprasCount: 2,
		VentasCount:  1,
		ComprasKg:    1300,
		VentasKg:     300,
		ComprasMonto: 180000,
		VentasMonto:  45000,
		BalanceKg:    1000,
	})
	assert.Equal(t, "Resumen 2024-03-15: 2 compras (1300 kg, $180000), 1 ventas (300 kg, $45000), balance 1000 kg.", got)
}
