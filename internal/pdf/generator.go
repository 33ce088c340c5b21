// Package pdf renders weighing receipts and daily sheets as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
)

// Generator builds printable documents from ledger entries.
type Generator struct {
	logger *zap.Logger
}

func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger.Named("pdf")}
}

// TicketCompra renders a purchase receipt.
func (g *Generator) TicketCompra(c models.Compra) ([]byte, error) {
	rows := [][2]string{
		{"Proveedor", c.Proveedor},
		{"Mercadería", c.Mercaderia},
		{"Peso Bruto", fmtKg(c.Bruto)},
		{"Peso Tara", fmtKg(c.Tara)},
		{"Merma", fmtKg(c.Merma)},
		{"Peso Neto", fmtKg(c.Neto)},
		{"Precio x Kg", fmtMoney(c.PrecioKg)},
		{"Importe", fmtMoney(c.Importe)},
		{"Chofer", c.Chofer},
		{"Patente", c.Patente},
		{"Hora Ingreso", c.HoraIngreso},
		{"Hora Salida", c.HoraSalida},
		{"Observaciones", c.Observaciones},
	}
	return g.ticket(fmt.Sprintf("Recibo de Compra Nº %d", c.ID), c.Fecha, rows)
}

// TicketVenta renders a sale receipt.
func (g *Generator) TicketVenta(v models.Venta) ([]byte, error) {
	rows := [][2]string{
		{"Cliente", v.Cliente},
		{"Mercadería", v.Mercaderia},
		{"Peso Bruto", fmtKg(v.Bruto)},
		{"Peso Tara", fmtKg(v.Tara)},
		{"Merma", fmtKg(v.Merma)},
		{"Peso Neto", fmtKg(v.Neto)},
		{"Precio x Kg", fmtMoney(v.PrecioKg)},
		{"Importe", fmtMoney(v.Importe)},
		{"Transporte", v.Transporte},
		{"Patente", v.Patente},
		{"Incoterm", v.Incoterm},
		{"Remito", v.Remito},
		{"Hora Ingreso", v.HoraIngreso},
		{"Hora Salida", v.HoraSalida},
		{"Observaciones", v.Observaciones},
	}
	return g.ticket(fmt.Sprintf("Recibo de Venta Nº %d", v.ID), v.Fecha, rows)
}

func (g *Generator) ticket(title, fecha string, rows [][2]string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 8, tr("Fecha: "+fecha), "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(55, 8, tr(row[0]), "B", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, 8, tr(row[1]), "B", 1, "L", false, 0, "")
	}

	doc.Ln(14)
	doc.SetFont("Helvetica", "I", 9)
	doc.CellFormat(0, 6, tr("Firma y aclaración: ______________________________"), "", 1, "L", false, 0, "")

	return render(doc)
}

// Planilla renders the full daily sheet: one table per kind plus totals and
// the net balance of the day.
func (g *Generator) Planilla(dateKey string, entries models.DayEntries) ([]byte, error) {
	doc := fpdf.New("L", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 15)
	doc.CellFormat(0, 10, tr("Planilla Diaria de Báscula - "+dateKey), "", 1, "C", false, 0, "")
	doc.Ln(2)

	comprasKg, comprasMonto := g.table(doc, tr, "Compras", compraTableRows(entries.Compras))
	doc.Ln(5)
	ventasKg, ventasMonto := g.table(doc, tr, "Ventas", ventaTableRows(entries.Ventas))

	doc.Ln(6)
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, tr(totalLine("Total Compras", comprasKg, comprasMonto)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, tr(totalLine("Total Ventas", ventasKg, ventasMonto)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, tr(fmt.Sprintf("Balance Neto: %s kg", groupThousands(comprasKg-ventasKg))), "", 1, "L", false, 0, "")

	return render(doc)
}

type tableRow struct {
	cells []string
	kg    float64
	monto float64
}

var planillaHeaders = []string{"ID", "Contraparte", "Producto", "Bruto", "Tara", "Neto", "$/Kg", "Importe", "Patente", "Ingreso", "Salida"}
var planillaWidths = []float64{10, 48, 40, 22, 22, 22, 22, 28, 22, 20, 20}

func (g *Generator) table(doc *fpdf.Fpdf, tr func(string) string, title string, rows []tableRow) (kg, monto float64) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(79, 129, 189)
	doc.SetTextColor(255, 255, 255)
	for i, h := range planillaHeaders {
		doc.CellFormat(planillaWidths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(0, 0, 0)
	if len(rows) == 0 {
		doc.CellFormat(sum(planillaWidths), 7, tr("Sin movimientos"), "1", 1, "C", false, 0, "")
		return 0, 0
	}
	for _, row := range rows {
		for i, cell := range row.cells {
			align := "L"
			if i >= 3 && i <= 7 {
				align = "R"
			}
			doc.CellFormat(planillaWidths[i], 7, tr(cell), "1", 0, align, false, 0, "")
		}
		doc.Ln(-1)
		kg += row.kg
		monto += row.monto
	}
	return kg, monto
}

func compraTableRows(compras []models.Compra) []tableRow {
	rows := make([]tableRow, 0, len(compras))
	for _, c := range compras {
		rows = append(rows, tableRow{
			cells: []string{
				fmt.Sprintf("%d", c.ID), c.Proveedor, c.Mercaderia,
				fmtKg(c.Bruto), fmtKg(c.Tara), fmtKg(c.Neto),
				fmtMoney(c.PrecioKg), fmtMoney(c.Importe),
				c.Patente, c.HoraIngreso, c.HoraSalida,
			},
			kg:    deref(c.Neto),
			monto: deref(c.Importe),
		})
	}
	return rows
}

func ventaTableRows(ventas []models.Venta) []tableRow {
	rows := make([]tableRow, 0, len(ventas))
	for _, v := range ventas {
		rows = append(rows, tableRow{
			cells: []string{
				fmt.Sprintf("%d", v.ID), v.Cliente, v.Mercaderia,
				fmtKg(v.Bruto), fmtKg(v.Tara), fmtKg(v.Neto),
				fmtMoney(v.PrecioKg), fmtMoney(v.Importe),
				v.Patente, v.HoraIngreso, v.HoraSalida,
			},
			kg:    deref(v.Neto),
			monto: deref(v.Importe),
		})
	}
	return rows
}

func render(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func totalLine(label string, kg, monto float64) string {
	return fmt.Sprintf("%s: %s kg - $ %s", label, groupThousands(kg), groupThousands(monto))
}

func fmtKg(v *float64) string {
	if v == nil {
		return "-"
	}
	return groupThousands(*v) + " kg"
}

func fmtMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return "$ " + groupThousands(*v)
}

// groupThousands formats the rounded value with dot separators, the local
// convention for amounts and weights.
func groupThousands(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ".")
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func sum(ws []float64) float64 {
	var t float64
	for _, w := range ws {
		t += w
	}
	return t
}
