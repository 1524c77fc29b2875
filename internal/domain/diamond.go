package domain

import (
	"time"
)

// Diamond is the canonical display shape used by the dashboard (camelCase JSON,
// matching the web client). It is produced by the inventory normalizer from
// either backend's raw record shape.
type Diamond struct {
	ID             string  `json:"id"`
	StockNumber    string  `json:"stockNumber"`
	Shape          string  `json:"shape"`
	Carat          float64 `json:"carat"`
	Color          string  `json:"color"`
	Clarity        string  `json:"clarity"`
	Cut            string  `json:"cut"`
	Polish         string  `json:"polish"`
	Symmetry       string  `json:"symmetry"`
	Price          int64   `json:"price"`
	Status         string  `json:"status"`
	ImageURL       string  `json:"imageUrl"`
	CertificateURL string  `json:"certificateUrl"`
}

// InventoryRecord matches the Supabase inventory table. Writes prefer the
// stored procedures (add_diamond_for_user etc.) and fall back to this table
// directly when a procedure is absent.
type InventoryRecord struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID         int64     `gorm:"column:user_id;not null;uniqueIndex:idx_inventory_user_stock" json:"user_id"`
	StockNumber    string    `gorm:"column:stock_number;not null;uniqueIndex:idx_inventory_user_stock" json:"stock_number"`
	Shape          string    `gorm:"column:shape;not null" json:"shape"`
	Weight         float64   `gorm:"column:weight;type:decimal(10,2);not null" json:"weight"`
	Color          string    `gorm:"column:color" json:"color"`
	Clarity        string    `gorm:"column:clarity" json:"clarity"`
	Cut            *string   `gorm:"column:cut" json:"cut"`
	Polish         string    `gorm:"column:polish" json:"polish"`
	Symmetry       string    `gorm:"column:symmetry" json:"symmetry"`
	PricePerCarat  *int64    `gorm:"column:price_per_carat" json:"price_per_carat"`
	Status         string    `gorm:"column:status;type:varchar(20);default:'Available'" json:"status"`
	Picture        *string   `gorm:"column:picture" json:"picture"`
	CertificateURL *string   `gorm:"column:certificate_url" json:"certificate_url"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (InventoryRecord) TableName() string {
	return "inventory"
}

// Diamond statuses used by the dashboard.
const (
	StatusAvailable = "Available"
	StatusReserved  = "Reserved"
	StatusSold      = "Sold"
)

// ShapeRound is the only shape for which a cut grade is meaningful; non-Round
// records carry polish/symmetry instead.
const ShapeRound = "Round"
