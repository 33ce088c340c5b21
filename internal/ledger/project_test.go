package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/candelento/balanza/internal/domain/models"
)

func TestHeaderKey(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Registro ID", "registro_id"},
		{"Tipo Operación", "tipo_operación"},
		{"Peso Bruto (kg)", "peso_bruto"},
		{"Peso Neto (kg)", "peso_neto"},
		{"Merma (kg)", "merma"},
		{"Precio x Kg", "precio_x_kg"},
		{"Chofer/Transporte", "chofer/transporte"},
		{"  Patente  ", "patente"},
		{"Importe (ARS)", "importe"},
		{"Observaciones", "observaciones"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, headerKey(tt.header), "header %q", tt.header)
	}
}

func TestProjectSplitsRowsByKind(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(1, models.KindCompra, rowFor(1, models.KindCompra, map[int]interface{}{
		cContraparte: "Acopio Norte",
		cProducto:    "Chatarra",
		cBruto:       1000.0,
		cTara:        200.0,
		cNeto:        800.0,
		cPrecio:      12.5,
		cImporte:     10000.0,
		cChofer:      "J. Perez",
		cPatente:     "AB123CD",
		cFecha:       "02/11/23",
		cHoraIngreso: "08:15",
		cHoraSalida:  "09:40",
		cObs:         "sin novedades",
	})))
	require.NoError(t, s.Upsert(1, models.KindVenta, rowFor(1, models.KindVenta, map[int]interface{}{
		cContraparte: "Frigorifico Oeste",
		cProducto:    "Sebo",
		cNeto:        600.0,
		cChofer:      "Translog",
		cIncoterm:    "CIF",
		cRemito:      "4512",
	})))

	entries, err := s.LoadToday()
	require.NoError(t, err)
	require.Len(t, entries.Compras, 1)
	require.Len(t, entries.Ventas, 1)

	c := entries.Compras[0]
	assert.Equal(t, "Acopio Norte", c.Proveedor)
	assert.Equal(t, "J. Perez", c.Chofer)
	assert.Equal(t, "02/11/23", c.Fecha)
	assert.Equal(t, "08:15", c.HoraIngreso)
	assert.Equal(t, "09:40", c.HoraSalida)
	assert.Equal(t, "sin novedades", c.Observaciones)
	require.NotNil(t, c.PrecioKg)
	assert.InDelta(t, 12.5, *c.PrecioKg, 0.001)
	require.NotNil(t, c.Importe)
	assert.InDelta(t, 10000.0, *c.Importe, 0.001)

	// The shared counterparty and carrier columns read as cliente and
	// transporte on the venta side, and the venta-only fields come through.
	v := entries.Ventas[0]
	assert.Equal(t, "Frigorifico Oeste", v.Cliente)
	assert.Equal(t, "Translog", v.Transporte)
	assert.Equal(t, "CIF", v.Incoterm)
	assert.Equal(t, "4512", v.Remito)
}

func TestProjectCoercionFailureYieldsMissingValue(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert(1, models.KindCompra, rowFor(1, models.KindCompra, map[int]interface{}{
		cTara: 200.0,
	})))

	// Corrupt the bruto cell with text behind the store's back.
	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr(s.TodayKey(), "E2", "mil kilos"))
	require.NoError(t, f.SaveAs(s.Path()))
	require.NoError(t, f.Close())

	entries, err := s.LoadToday()
	require.NoError(t, err)
	require.Len(t, entries.Compras, 1)
	assert.Nil(t, entries.Compras[0].Bruto)
	require.NotNil(t, entries.Compras[0].Tara)
}

func TestProjectSkipsUnknownKind(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert(1, models.KindCompra, rowFor(1, models.KindCompra, nil)))

	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr(s.TodayKey(), "B2", "Trueque"))
	require.NoError(t, f.SaveAs(s.Path()))
	require.NoError(t, f.Close())

	entries, err := s.LoadToday()
	require.NoError(t, err)
	assert.Empty(t, entries.Compras)
	assert.Empty(t, entries.Ventas)
}

func TestProjectionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	values := rowFor(4, models.KindVenta, map[int]interface{}{
		cContraparte: "Frigorifico Oeste",
		cProducto:    "Sebo",
		cBruto:       640.0,
		cTara:        40.0,
		cNeto:        600.0,
		cPrecio:      30.0,
		cImporte:     18000.0,
		cIncoterm:    "FOB",
		cRemito:      "889",
	})

	require.NoError(t, s.Upsert(4, models.KindVenta, values))
	first, err := s.LoadToday()
	require.NoError(t, err)

	// Writing the same payload again reproduces the identical projection.
	require.NoError(t, s.Upsert(4, models.KindVenta, values))
	second, err := s.LoadToday()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProjectEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, resolveSheet(f, "2023-11-06", zaptest.NewLogger(t)))

	entries, err := projectSheet(f, "2023-11-06", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, entries.Compras)
	assert.Empty(t, entries.Ventas)
}
