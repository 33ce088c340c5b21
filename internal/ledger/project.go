package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
)

// numericKeys lists the header-derived keys coerced to float during
// projection. A cell that does not parse yields a missing value plus a
// warning, never an error.
var numericKeys = map[string]bool{
	"peso_bruto":  true,
	"peso_tara":   true,
	"merma":       true,
	"peso_neto":   true,
	"precio_x_kg": true,
	"importe":     true,
}

var parenSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// headerKey turns a display header into a stable projection key: lowercased,
// trimmed, unit suffix such as "(kg)" stripped, spaces replaced with
// underscores. "Peso Bruto (kg)" and "Peso Bruto" map to the same key, so a
// relabeled header keeps reading into the same field.
func headerKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = parenSuffix.ReplaceAllString(key, "")
	key = strings.TrimSpace(key)
	return strings.ReplaceAll(key, " ", "_")
}

// projectSheet reads every data row of the sheet into the typed day view,
// splitting rows by the kind column and mapping the generic header-derived
// keys onto kind-specific field names: the shared counterparty column reads
// as proveedor on a compra and as cliente on a venta.
func projectSheet(f *excelize.File, sheet string, logger *zap.Logger) (models.DayEntries, error) {
	entries := models.DayEntries{Compras: []models.Compra{}, Ventas: []models.Venta{}}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return entries, fmt.Errorf("scan sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		logger.Warn("sheet has no header row", zap.String("sheet", sheet))
		return entries, nil
	}

	keys := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		keys[i] = headerKey(h)
	}

	for i, row := range rows[1:] {
		rowNum := i + 2

		fields := make(map[string]string, len(keys))
		numbers := make(map[string]*float64, len(numericKeys))
		for col, key := range keys {
			var cell string
			if col < len(row) {
				cell = row[col]
			}
			if numericKeys[key] {
				numbers[key] = coerceFloat(cell, sheet, rows[0][col], rowNum, logger)
				continue
			}
			fields[key] = cell
		}

		kind := strings.TrimSpace(fields["tipo_operación"])
		switch {
		case strings.EqualFold(kind, string(models.KindCompra)):
			entries.Compras = append(entries.Compras, models.Compra{
				ID:            coerceID(fields["registro_id"], sheet, rowNum, logger),
				Proveedor:     fields["contraparte"],
				Mercaderia:    fields["producto"],
				Bruto:         numbers["peso_bruto"],
				Tara:          numbers["peso_tara"],
				Merma:         numbers["merma"],
				Neto:          numbers["peso_neto"],
				PrecioKg:      numbers["precio_x_kg"],
				Importe:       numbers["importe"],
				Chofer:        fields["chofer/transporte"],
				Patente:       fields["patente"],
				Fecha:         fields["fecha_operacion"],
				HoraIngreso:   fields["hora_ingreso"],
				HoraSalida:    fields["hora_salida"],
				Observaciones: fields["observaciones"],
			})
		case strings.EqualFold(kind, string(models.KindVenta)):
			entries.Ventas = append(entries.Ventas, models.Venta{
				ID:            coerceID(fields["registro_id"], sheet, rowNum, logger),
				Cliente:       fields["contraparte"],
				Mercaderia:    fields["producto"],
				Bruto:         numbers["peso_bruto"],
				Tara:          numbers["peso_tara"],
				Merma:         numbers["merma"],
				Neto:          numbers["peso_neto"],
				PrecioKg:      numbers["precio_x_kg"],
				Importe:       numbers["importe"],
				Transporte:    fields["chofer/transporte"],
				Patente:       fields["patente"],
				Incoterm:      fields["incoterm"],
				Fecha:         fields["fecha_operacion"],
				HoraIngreso:   fields["hora_ingreso"],
				HoraSalida:    fields["hora_salida"],
				Remito:        fields["remito"],
				Observaciones: fields["observaciones"],
			})
		default:
			logger.Warn("skipping row with unknown kind",
				zap.String("sheet", sheet), zap.Int("row", rowNum), zap.String("kind", kind))
		}
	}

	return entries, nil
}

func coerceFloat(cell, sheet, column string, row int, logger *zap.Logger) *float64 {
	v := strings.TrimSpace(cell)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("non-numeric cell, treating as missing",
			zap.String("sheet", sheet), zap.String("column", column),
			zap.Int("row", row), zap.String("value", cell))
		return nil
	}
	return &n
}

func coerceID(cell, sheet string, row int, logger *zap.Logger) int {
	v := strings.TrimSpace(cell)
	if v == "" {
		return 0
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return int(n)
	}
	logger.Warn("non-numeric registro id",
		zap.String("sheet", sheet), zap.Int("row", row), zap.String("value", cell))
	return 0
}
