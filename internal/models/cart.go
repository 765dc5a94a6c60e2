package models

// CartEntry is one (item id, quantity) pair in a user's cart.
// Quantity is never below 1; at most one entry exists per item id.
type CartEntry struct {
	ItemID   string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CartEntries is the whole cart, persisted as a JSON column on the user row.
type CartEntries []CartEntry

// CartItem is a cart entry resolved against the catalog.
type CartItem struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}
