package models

import "time"

// DailySummary represents the aggregated balance of one business day,
// archived by the nightly job.
type DailySummary struct {
	Date         string    `bson:"date" json:"date"`
	ComprasCount int       `bson:"compras_count" json:"compras_count"`
	VentasCount  int       `bson:"ventas_count" json:"ventas_count"`
	ComprasKg    float64   `bson:"compras_kg" json:"compras_kg"`
	VentasKg     float64   `bson:"ventas_kg" json:"ventas_kg"`
	BalanceKg    float64   `bson:"balance_kg" json:"balance_kg"`
	ComprasMonto float64   `bson:"compras_monto" json:"compras_monto"`
	VentasMonto  float64   `bson:"ventas_monto" json:"ventas_monto"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
