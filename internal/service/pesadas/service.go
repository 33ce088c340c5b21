package pesadas

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
)

// ErrNotFound indicates the requested entry does not exist on the target day.
var ErrNotFound = errors.New("pesada not found")

// ErrInvalidNumeric indicates a numeric field outside the accepted range.
var ErrInvalidNumeric = errors.New("numeric field out of range")

const (
	fechaLayout = "02/01/06"
	horaLayout  = "15:04"

	maxFieldLen   = 250
	maxPatenteLen = 20
	maxObsLen     = 1000

	maxNumeric = 1e7
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// Ledger defines the store operations the weighing service relies on.
type Ledger interface {
	Upsert(id int, kind models.Kind, values []interface{}) error
	Delete(id int, kind models.Kind) (bool, error)
	LoadByDate(dateKey string) (models.DayEntries, error)
	LoadToday() (models.DayEntries, error)
	Insert(kind models.Kind, values []interface{}) (int, error)
	TodayKey() string
}

// Service implements the business rules around weighing transactions: id
// allocation, derived weights and amounts, timestamp stamping and input
// hygiene, on top of the daily ledger store.
type Service struct {
	ledger Ledger
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a new weighing service instance. loc is the business
// timezone used for operation dates and entry/exit times.
func NewService(ledger Ledger, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{ledger: ledger, loc: loc, now: time.Now, logger: logger}
}

// TodayKey returns the sheet key of the current business day.
func (s *Service) TodayKey() string {
	return s.ledger.TodayKey()
}

// LoadByDate returns both kinds for the given YYYY-MM-DD date, today when
// dateKey is empty.
func (s *Service) LoadByDate(dateKey string) (models.DayEntries, error) {
	if dateKey == "" {
		return s.ledger.LoadToday()
	}
	return s.ledger.LoadByDate(dateKey)
}

// ListCompras returns the compras of a day, optionally filtered by a
// case-insensitive substring over counterparty, material, driver and plate.
func (s *Service) ListCompras(dateKey, search string) ([]models.Compra, error) {
	entries, err := s.LoadByDate(dateKey)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return entries.Compras, nil
	}

	filtered := make([]models.Compra, 0, len(entries.Compras))
	for _, c := range entries.Compras {
		if matches(search, c.Proveedor, c.Mercaderia, c.Chofer, c.Patente) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// ListVentas is the sale-side counterpart of ListCompras.
func (s *Service) ListVentas(dateKey, search string) ([]models.Venta, error) {
	entries, err := s.LoadByDate(dateKey)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return entries.Ventas, nil
	}

	filtered := make([]models.Venta, 0, len(entries.Ventas))
	for _, v := range entries.Ventas {
		if matches(search, v.Cliente, v.Mercaderia, v.Transporte, v.Patente) {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// GetCompra fetches one compra by id for the given day (today when empty).
func (s *Service) GetCompra(dateKey string, id int) (models.Compra, error) {
	entries, err := s.LoadByDate(dateKey)
	if err != nil {
		return models.Compra{}, err
	}
	for _, c := range entries.Compras {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Compra{}, fmt.Errorf("compra %d: %w", id, ErrNotFound)
}

// GetVenta fetches one venta by id for the given day (today when empty).
func (s *Service) GetVenta(dateKey string, id int) (models.Venta, error) {
	entries, err := s.LoadByDate(dateKey)
	if err != nil {
		return models.Venta{}, err
	}
	for _, v := range entries.Ventas {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Venta{}, fmt.Errorf("venta %d: %w", id, ErrNotFound)
}

// CreateCompra stamps date and entry/exit times, computes the derived weights
// and amount and persists the new row; the ledger allocates the id as part of
// the same write, which keeps concurrent creates from colliding on one id.
func (s *Service) CreateCompra(in models.Compra) (models.Compra, error) {
	if err := validateNumerics(map[string]*float64{
		"bruto": in.Bruto, "tara": in.Tara, "merma": in.Merma, "precio_kg": in.PrecioKg,
	}); err != nil {
		return models.Compra{}, err
	}

	now := s.now().In(s.loc)
	in.Fecha = now.Format(fechaLayout)
	in.HoraIngreso = ""
	in.HoraSalida = ""
	if in.Bruto != nil {
		in.HoraIngreso = now.Format(horaLayout)
	}
	if in.Tara != nil {
		in.HoraSalida = now.Format(horaLayout)
	}

	in.Neto = calcNeto(in.Bruto, in.Tara, in.Merma)
	in.Importe = calcImporte(in.Neto, in.PrecioKg)
	sanitizeCompra(&in)

	id, err := s.ledger.Insert(models.KindCompra, compraRow(in))
	if err != nil {
		return models.Compra{}, fmt.Errorf("persist compra: %w", err)
	}
	in.ID = id

	s.logger.Info("compra created", zap.Int("id", id), zap.String("proveedor", in.Proveedor))
	return in, nil
}

// UpdateCompra replaces today's compra with the provided payload, preserving
// the operation date and any timestamp already stamped. Entry and exit times
// are stamped late when the corresponding weight arrives with the update.
func (s *Service) UpdateCompra(id int, in models.Compra) (models.Compra, error) {
	if err := validateNumerics(map[string]*float64{
		"bruto": in.Bruto, "tara": in.Tara, "merma": in.Merma, "precio_kg": in.PrecioKg,
	}); err != nil {
		return models.Compra{}, err
	}

	current, err := s.GetCompra("", id)
	if err != nil {
		return models.Compra{}, err
	}

	now := s.now().In(s.loc)
	in.ID = id
	in.Fecha = current.Fecha
	in.HoraIngreso = current.HoraIngreso
	if in.Bruto != nil && current.HoraIngreso == "" {
		in.HoraIngreso = now.Format(horaLayout)
	}
	in.HoraSalida = current.HoraSalida
	if in.Tara != nil && current.HoraSalida == "" {
		in.HoraSalida = now.Format(horaLayout)
	}

	in.Neto = calcNeto(in.Bruto, in.Tara, in.Merma)
	in.Importe = calcImporte(in.Neto, in.PrecioKg)
	sanitizeCompra(&in)

	if err := s.ledger.Upsert(id, models.KindCompra, compraRow(in)); err != nil {
		return models.Compra{}, fmt.Errorf("persist compra %d: %w", id, err)
	}

	return in, nil
}

// DeleteCompra removes today's compra with the given id.
func (s *Service) DeleteCompra(id int) error {
	found, err := s.ledger.Delete(id, models.KindCompra)
	if err != nil {
		return fmt.Errorf("delete compra %d: %w", id, err)
	}
	if !found {
		return fmt.Errorf("compra %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateVenta mirrors CreateCompra for the sale side.
func (s *Service) CreateVenta(in models.Venta) (models.Venta, error) {
	if err := validateNumerics(map[string]*float64{
		"bruto": in.Bruto, "tara": in.Tara, "merma": in.Merma, "precio_kg": in.PrecioKg,
	}); err != nil {
		return models.Venta{}, err
	}

	now := s.now().In(s.loc)
	in.Fecha = now.Format(fechaLayout)
	in.HoraIngreso = ""
	in.HoraSalida = ""
	if in.Bruto != nil {
		in.HoraIngreso = now.Format(horaLayout)
	}
	if in.Tara != nil {
		in.HoraSalida = now.Format(horaLayout)
	}

	in.Neto = calcNeto(in.Bruto, in.Tara, in.Merma)
	in.Importe = calcImporte(in.Neto, in.PrecioKg)
	sanitizeVenta(&in)

	id, err := s.ledger.Insert(models.KindVenta, ventaRow(in))
	if err != nil {
		return models.Venta{}, fmt.Errorf("persist venta: %w", err)
	}
	in.ID = id

	s.logger.Info("venta created", zap.Int("id", id), zap.String("cliente", in.Cliente))
	return in, nil
}

// UpdateVenta mirrors UpdateCompra for the sale side.
func (s *Service) UpdateVenta(id int, in models.Venta) (models.Venta, error) {
	if err := validateNumerics(map[string]*float64{
		"bruto": in.Bruto, "tara": in.Tara, "merma": in.Merma, "precio_kg": in.PrecioKg,
	}); err != nil {
		return models.Venta{}, err
	}

	current, err := s.GetVenta("", id)
	if err != nil {
		return models.Venta{}, err
	}

	now := s.now().In(s.loc)
	in.ID = id
	in.Fecha = current.Fecha
	in.HoraIngreso = current.HoraIngreso
	if in.Bruto != nil && current.HoraIngreso == "" {
		in.HoraIngreso = now.Format(horaLayout)
	}
	in.HoraSalida = current.HoraSalida
	if in.Tara != nil && current.HoraSalida == "" {
		in.HoraSalida = now.Format(horaLayout)
	}

	in.Neto = calcNeto(in.Bruto, in.Tara, in.Merma)
	in.Importe = calcImporte(in.Neto, in.PrecioKg)
	sanitizeVenta(&in)

	if err := s.ledger.Upsert(id, models.KindVenta, ventaRow(in)); err != nil {
		return models.Venta{}, fmt.Errorf("persist venta %d: %w", id, err)
	}

	return in, nil
}

// DeleteVenta removes today's venta with the given id.
func (s *Service) DeleteVenta(id int) error {
	found, err := s.ledger.Delete(id, models.KindVenta)
	if err != nil {
		return fmt.Errorf("delete venta %d: %w", id, err)
	}
	if !found {
		return fmt.Errorf("venta %d: %w", id, ErrNotFound)
	}
	return nil
}

// calcNeto derives the net weight when gross and tare are present; shrinkage
// defaults to zero. Without both inputs the net stays undefined.
func calcNeto(bruto, tara, merma *float64) *float64 {
	if bruto == nil || tara == nil {
		return nil
	}
	m := 0.0
	if merma != nil {
		m = *merma
	}
	n := *bruto - *tara - m
	return &n
}

// calcImporte derives the amount when both net weight and unit price are
// present.
func calcImporte(neto, precioKg *float64) *float64 {
	if neto == nil || precioKg == nil {
		return nil
	}
	n := *neto * *precioKg
	return &n
}

func validateNumerics(fields map[string]*float64) error {
	for name, v := range fields {
		if v == nil {
			continue
		}
		if *v < 0 || *v > maxNumeric {
			return fmt.Errorf("%w: %s=%v", ErrInvalidNumeric, name, *v)
		}
	}
	return nil
}

// sanitize strips control characters, trims and caps the string. The cap
// counts runes, not bytes, so a truncated value never ends mid-character.
func sanitize(s string, maxLen int) string {
	s = strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return s
}

func sanitizeCompra(c *models.Compra) {
	c.Proveedor = sanitize(c.Proveedor, maxFieldLen)
	c.Mercaderia = sanitize(c.Mercaderia, maxFieldLen)
	c.Chofer = sanitize(c.Chofer, maxFieldLen)
	c.Patente = sanitize(c.Patente, maxPatenteLen)
	c.Observaciones = sanitize(c.Observaciones, maxObsLen)
}

func sanitizeVenta(v *models.Venta) {
	v.Cliente = sanitize(v.Cliente, maxFieldLen)
	v.Mercaderia = sanitize(v.Mercaderia, maxFieldLen)
	v.Transporte = sanitize(v.Transporte, maxFieldLen)
	v.Patente = sanitize(v.Patente, maxPatenteLen)
	v.Incoterm = sanitize(v.Incoterm, maxFieldLen)
	v.Remito = sanitize(v.Remito, maxFieldLen)
	v.Observaciones = sanitize(v.Observaciones, maxObsLen)
}

func matches(search string, fields ...string) bool {
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// compraRow lays out a compra in canonical header order. The Incoterm and
// Remito columns stay empty: they only apply to ventas.
func compraRow(c models.Compra) []interface{} {
	return []interface{}{
		c.ID, string(models.KindCompra), c.Proveedor, c.Mercaderia,
		fcell(c.Bruto), fcell(c.Tara), fcell(c.Merma), fcell(c.Neto),
		fcell(c.PrecioKg), fcell(c.Importe), c.Chofer, c.Patente, "",
		c.Fecha, c.HoraIngreso, c.HoraSalida, "", c.Observaciones,
	}
}

// ventaRow lays out a venta in canonical header order.
func ventaRow(v models.Venta) []interface{} {
	return []interface{}{
		v.ID, string(models.KindVenta), v.Cliente, v.Mercaderia,
		fcell(v.Bruto), fcell(v.Tara), fcell(v.Merma), fcell(v.Neto),
		fcell(v.PrecioKg), fcell(v.Importe), v.Transporte, v.Patente, v.Incoterm,
		v.Fecha, v.HoraIngreso, v.HoraSalida, v.Remito, v.Observaciones,
	}
}

func fcell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
