package handler

import (
	"strings"

	"github.com/stockroom/inventory-web/internal/core/domain"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email" label:"Email"`
	Password string `form:"password" validate:"required" label:"Password"`
}

type registerForm struct {
	FirstName   string `form:"firstName" validate:"required" label:"First name"`
	LastName    string `form:"lastName" validate:"required" label:"Last name"`
	Email       string `form:"email" validate:"required,email" label:"Email"`
	Password    string `form:"password" validate:"required,min=6" label:"Password"`
	PhoneNumber string `form:"phoneNumber" validate:"required" label:"Phone number"`
	ImageURL    string `form:"imageUrl" validate:"omitempty,url" label:"Image URL"`
}

func (f registerForm) toDomain() domain.Registration {
	return domain.Registration{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}
}

type productForm struct {
	Name         string `form:"name" validate:"required" label:"Name"`
	Manufacturer string `form:"manufacturer" validate:"required" label:"Manufacturer"`
	Description  string `form:"description" label:"Description"`
	Stock        int    `form:"stock" validate:"gte=0" label:"Stock"`
	Unit         string `form:"unit" label:"Unit"`
}

func (f productForm) toDomain() domain.Product {
	unit := strings.TrimSpace(f.Unit)
	if unit == "" {
		unit = domain.DefaultUnit
	}
	return domain.Product{
		Name:         strings.TrimSpace(f.Name),
		Manufacturer: strings.TrimSpace(f.Manufacturer),
		Description:  strings.TrimSpace(f.Description),
		Stock:        f.Stock,
		Unit:         unit,
	}
}

type purchaseForm struct {
	ProductID           string  `form:"productID" validate:"required" label:"Product"`
	QuantityPurchased   int     `form:"quantityPurchased" validate:"gt=0" label:"Quantity"`
	PurchaseDate        string  `form:"purchaseDate" validate:"required,datetime=2006-01-02" label:"Date"`
	TotalPurchaseAmount float64 `form:"totalPurchaseAmount" validate:"gte=0" label:"Total amount"`
}

func (f purchaseForm) toDomain() domain.Purchase {
	return domain.Purchase{
		ProductID:           domain.Ref{ID: f.ProductID},
		QuantityPurchased:   f.QuantityPurchased,
		PurchaseDate:        f.PurchaseDate,
		TotalPurchaseAmount: f.TotalPurchaseAmount,
	}
}

type saleForm struct {
	ProductID       string  `form:"productID" validate:"required" label:"Product"`
	StoreID         string  `form:"storeID" validate:"required" label:"Store"`
	StockSold       int     `form:"stockSold" validate:"gt=0" label:"Stock sold"`
	SaleDate        string  `form:"saleDate" validate:"required,datetime=2006-01-02" label:"Date"`
	TotalSaleAmount float64 `form:"totalSaleAmount" validate:"gte=0" label:"Total amount"`
}

func (f saleForm) toDomain() domain.Sale {
	return domain.Sale{
		ProductID:       domain.Ref{ID: f.ProductID},
		StoreID:         domain.Ref{ID: f.StoreID},
		StockSold:       f.StockSold,
		SaleDate:        f.SaleDate,
		TotalSaleAmount: f.TotalSaleAmount,
	}
}

type storeForm struct {
	Name     string `form:"name" validate:"required" label:"Name"`
	Category string `form:"category" validate:"required" label:"Category"`
	Address  string `form:"address" validate:"required" label:"Address"`
	City     string `form:"city" validate:"required" label:"City"`
	Image    string `form:"image" validate:"omitempty,url" label:"Image URL"`
}

func (f storeForm) toDomain() domain.Store {
	return domain.Store{
		Name:     strings.TrimSpace(f.Name),
		Category: strings.TrimSpace(f.Category),
		Address:  strings.TrimSpace(f.Address),
		City:     strings.TrimSpace(f.City),
		Image:    strings.TrimSpace(f.Image),
	}
}
