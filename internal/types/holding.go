// internal/types/holding.go
package types

import "time"

// Holding is a portfolio entry: the token snapshot taken when the holding was
// added, plus the quantity and acquisition price.
type Holding struct {
	ID            string    `json:"id"`
	Token         Token     `json:"token"`
	Amount        float64   `json:"amount"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
}
