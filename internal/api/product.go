package api

// Product is a single catalog entry as returned by the storefront API.
// The upstream payload is an open-ended record; decoding through this struct
// normalizes it to a strict schema and drops unknown fields at the boundary.
//
// A product is identified by either a catalog ID or an external-catalog
// accession number (parent ASIN); at most one is populated.
type Product struct {
	ProductID   string  `json:"Product_ID,omitempty"`
	ParentASIN  string  `json:"parent_asin,omitempty"`
	Title       string  `json:"Product_Title"`
	Description string  `json:"Description"`
	Category    string  `json:"Category"`
	Price       float64 `json:"Price"`
	Rating      float64 `json:"Rating"`
	RatingCount int     `json:"Rating_Count,omitempty"`
	Store       string  `json:"Store,omitempty"`
}

// ID returns the product's identifier: the catalog ID when present,
// otherwise the accession number.
func (p Product) ID() string {
	if p.ProductID != "" {
		return p.ProductID
	}
	return p.ParentASIN
}
