package view

import (
	"github.com/stockroom/inventory-web/internal/core/domain"
)

// Page is the data every template receives.
type Page struct {
	Title       string
	CurrentPath string

	// Chrome renders the admin header and side menu around the content.
	Chrome bool
	// EmployeeHeader renders the minimal header used outside the chrome.
	EmployeeHeader bool

	Nav  []NavItem
	User *User

	Notice string
	Error  string

	Data any
}

// NavItem is one side menu entry.
type NavItem struct {
	Path   string
	Title  string
	Active bool
}

// User is the profile block shown in the chrome.
type User struct {
	Name      string
	Email     string
	AvatarURL string
	IsAdmin   bool
}

// RoleLabel is the text of the role badge.
func (u User) RoleLabel() string {
	if u.IsAdmin {
		return "Admin"
	}
	return "Employee"
}

// UserFrom projects an identity for display.
func UserFrom(id domain.Identity) *User {
	name := id.DisplayName
	if name == "" {
		name = "User"
	}
	return &User{
		Name:      name,
		Email:     id.Email,
		AvatarURL: id.AvatarURL,
		IsAdmin:   id.IsAdmin(),
	}
}

// LoginData backs the sign-in form.
type LoginData struct {
	Email string
}

// RegisterData backs the sign-up form.
type RegisterData struct {
	Form domain.Registration
}

// InventoryData backs the product list and its add/edit dialog.
type InventoryData struct {
	Products []domain.Product
	Total    int
	Search   string
	Dialog   *domain.Dialog
	// BasePath is where the list lives in the current route table.
	BasePath string
}

// DashboardData backs the admin dashboard.
type DashboardData struct {
	Totals       domain.Totals
	ProductCount int
	StoreCount   int
}

// PurchasesData backs the purchase list and its entry form.
type PurchasesData struct {
	Purchases []domain.Purchase
	Products  []domain.Product
	ShowForm  bool
}

// SalesData backs the sales list and its entry form.
type SalesData struct {
	Sales    []domain.Sale
	Products []domain.Product
	Stores   []domain.Store
	ShowForm bool
}

// StoresData backs the store list and its entry form.
type StoresData struct {
	Stores   []domain.Store
	ShowForm bool
}

// ErrorData backs the generic error page.
type ErrorData struct {
	Status  int
	Message string
}
