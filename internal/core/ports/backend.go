package ports

import (
	"context"

	"github.com/stockroom/inventory-web/internal/core/domain"
)

// AuthGateway covers the public backend endpoints that need no identity.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.BackendUser, error)
}

// InventoryAPI is the identity-stamped backend surface used by the views.
type InventoryAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	AddProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
	AddPurchase(ctx context.Context, p domain.Purchase) (*domain.Purchase, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	AddSale(ctx context.Context, s domain.Sale) (*domain.Sale, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
	AddStore(ctx context.Context, s domain.Store) (*domain.Store, error)

	TotalSaleAmount(ctx context.Context) (float64, error)
	TotalPurchaseAmount(ctx context.Context) (float64, error)
	MonthlySales(ctx context.Context) ([]float64, error)
}

// SessionState is the slice of a Session Context the API client needs: the
// identity to stamp on requests and the teardown to run on rejection.
type SessionState interface {
	Identity() (domain.Identity, bool)
	SignOut(ctx context.Context) error
}

// InventoryClientFactory binds the backend client to one session.
type InventoryClientFactory interface {
	For(sess SessionState, onReject func()) InventoryAPI
}
