// model/item.go
package model

import "time"

type ItemStatus string

const (
	ItemAvailable   ItemStatus = "AVAILABLE"
	ItemRented      ItemStatus = "RENTED"
	ItemReserved    ItemStatus = "RESERVED"
	ItemMaintenance ItemStatus = "MAINTENANCE"
)

// Item is one physical good listed by a seller. Sized items carry one
// variant row per size; unsized items have none.
type Item struct {
	ID        int64      `json:"id"`
	SellerID  int64      `json:"seller_id"`
	Name      string     `json:"name"`
	Status    ItemStatus `json:"status"`
	Rentable  bool       `json:"rentable"`
	CreatedAt time.Time  `json:"created_at"`
}

type ItemVariant struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Label  string `json:"label"` // size label, e.g. "M", "42"
}
