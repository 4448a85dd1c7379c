package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Ref points at another backend record. List endpoints populate it as an
// object ({"_id": "...", "name": "..."}) while writes send the bare id.
type Ref struct {
	ID   string
	Name string
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var obj struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.ID, r.Name = obj.ID, obj.Name
	return nil
}

// Label is the human-readable form used in listings.
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Product is a stock-keeping item owned by a tenant.
type Product struct {
	ID           string `json:"_id,omitempty"`
	UserID       string `json:"userId,omitempty"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description"`
	Stock        int    `json:"stock"`
	Unit         string `json:"unit,omitempty"`
}

// DefaultUnit is applied to products created without an explicit unit.
const DefaultUnit = "Adet"

// FilterProducts returns the products whose name contains term, ignoring case.
// An empty term returns the input unchanged.
func FilterProducts(products []Product, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// FindProduct returns the product with the given id.
func FindProduct(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Purchase records stock bought for a product.
type Purchase struct {
	ID                  string  `json:"_id,omitempty"`
	UserID              string  `json:"userID,omitempty"`
	ProductID           Ref     `json:"productID"`
	QuantityPurchased   int     `json:"quantityPurchased"`
	PurchaseDate        string  `json:"purchaseDate"`
	TotalPurchaseAmount float64 `json:"totalPurchaseAmount"`
}

// Sale records stock sold from a store.
type Sale struct {
	ID              string  `json:"_id,omitempty"`
	UserID          string  `json:"userID,omitempty"`
	ProductID       Ref     `json:"productID"`
	StoreID         Ref     `json:"storeID"`
	StockSold       int     `json:"stockSold"`
	SaleDate        string  `json:"saleDate"`
	TotalSaleAmount float64 `json:"totalSaleAmount"`
}

// Store is a physical sales location.
type Store struct {
	ID       string `json:"_id,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Image    string `json:"image,omitempty"`
}

// Totals is the dashboard summary.
type Totals struct {
	SaleAmount     float64
	PurchaseAmount float64
	MonthlySales   []float64
}
