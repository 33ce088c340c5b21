package models

// Kind discriminates the two transaction types sharing one ledger row schema.
type Kind string

const (
	KindCompra Kind = "Compra"
	KindVenta  Kind = "Venta"
)

// Compra captures a purchase weighing (incoming material from a supplier).
type Compra struct {
	ID            int      `json:"id"`
	Proveedor     string   `json:"proveedor" binding:"required"`
	Mercaderia    string   `json:"mercaderia"`
	Bruto         *float64 `json:"bruto"`
	Tara          *float64 `json:"tara"`
	Merma         *float64 `json:"merma"`
	Neto          *float64 `json:"neto"`
	PrecioKg      *float64 `json:"precio_kg"`
	Importe       *float64 `json:"importe"`
	Chofer        string   `json:"chofer"`
	Patente       string   `json:"patente"`
	Fecha         string   `json:"fecha"`
	HoraIngreso   string   `json:"hora_ingreso"`
	HoraSalida    string   `json:"hora_salida"`
	Observaciones string   `json:"observaciones"`
}

// Venta captures a sale weighing (outgoing material to a client). It carries
// two fields compras never use: the agreed incoterm and the remito number.
type Venta struct {
	ID            int      `json:"id"`
	Cliente       string   `json:"cliente" binding:"required"`
	Mercaderia    string   `json:"mercaderia"`
	Bruto         *float64 `json:"bruto"`
	Tara          *float64 `json:"tara"`
	Merma         *float64 `json:"merma"`
	Neto          *float64 `json:"neto"`
	PrecioKg      *float64 `json:"precio_kg"`
	Importe       *float64 `json:"importe"`
	Transporte    string   `json:"transporte"`
	Patente       string   `json:"patente"`
	Incoterm      string   `json:"incoterm"`
	Fecha         string   `json:"fecha"`
	HoraIngreso   string   `json:"hora_ingreso"`
	HoraSalida    string   `json:"hora_salida"`
	Remito        string   `json:"remito"`
	Observaciones string   `json:"observaciones"`
}

// DayEntries groups the typed projections of one daily sheet by kind.
type DayEntries struct {
	Compras []Compra `json:"Compra"`
	Ventas  []Venta  `json:"Venta"`
}
