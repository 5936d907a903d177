package models

// CartItem is a single publisher-placement line item as submitted by
// the checkout UI. Price is in minor units and is re-validated server
// side; the client never supplies a trusted total.
type CartItem struct {
	SiteID     string `json:"id"`
	SiteName   string `json:"name"`
	PriceCents int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}
