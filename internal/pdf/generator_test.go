package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/candelento/balanza/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "950", groupThousands(950))
	assert.Equal(t, "1.250", groupThousands(1250))
	assert.Equal(t, "12.345.678", groupThousands(12345678))
	assert.Equal(t, "-4.500", groupThousands(-4500))
	assert.Equal(t, "801", groupThousands(800.6))
}

func TestTotalLine(t *testing.T) {
	assert.Equal(t, "Total Compras: 1.300 kg - $ 180.000", totalLine("Total Compras", 1300, 180000))
	assert.Equal(t, "Total Ventas: 0 kg - $ 0", totalLine("Total Ventas", 0, 0))
}

func TestTicketCompra(t *testing.T) {
	g := NewGenerator(zaptest.NewLogger(t))

	out, err := g.TicketCompra(models.Compra{
		ID:         3,
		Proveedor:  "Acopio Norte",
		Mercaderia: "Soja",
		Bruto:      f(1000),
		Tara:       f(200),
		Neto:       f(800),
		PrecioKg:   f(150),
		Importe:    f(120000),
		Fecha:      "15/03/24",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestTicketVenta(t *testing.T) {
	g := NewGenerator(zaptest.NewLogger(t))

	out, err := g.TicketVenta(models.Venta{ID: 1, Cliente: "Molino Sur", Incoterm: "FOB"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPlanilla(t *testing.T) {
	g := NewGenerator(zaptest.NewLogger(t))

	entries := models.DayEntries{
		Compras: []models.Compra{{ID: 1, Proveedor: "Acopio Norte", Neto: f(800), Importe: f(120000)}},
		Ventas:  []models.Venta{{ID: 1, Cliente: "Molino Sur", Neto: f(300), Importe: f(60000)}},
	}

	out, err := g.Planilla("2024-03-15", entries)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPlanillaEmptyDay(t *testing.T) {
	g := NewGenerator(zaptest.NewLogger(t))

	out, err := g.Planilla("2024-03-16", models.DayEntries{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
