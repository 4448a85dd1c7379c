package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/ports"
	"github.com/stockroom/inventory-web/internal/core/session"
	"github.com/stockroom/inventory-web/internal/infrastructure/db/memory"
	"github.com/stockroom/inventory-web/internal/pkg/seal"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	e.Validator = NewValidator()
	return e
}

func newSession(t *testing.T, role domain.Role) *session.Context {
	t.Helper()
	box, err := seal.New("secret")
	if err != nil {
		t.Fatalf("seal.New: %v", err)
	}
	store := session.NewStore(memory.NewKVStore(), box, time.Hour, zerolog.Nop())
	sess := session.NewContext(store, "p1", zerolog.Nop())
	sess.Hydrate(context.Background())
	if role != "" {
		err := sess.SignIn(context.Background(), "u1", role, nil,
			session.WithToken("tok", time.Time{}),
			session.WithProfile("Ada Lovelace", "ada@example.com", ""))
		if err != nil {
			t.Fatalf("sign in: %v", err)
		}
	}
	return sess
}

// newRequest builds a context carrying sess. A non-nil form is sent
// url-encoded as the request body.
func newRequest(e *echo.Echo, method, target string, form url.Values, sess *session.Context) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		middleware.WithSession(c, sess)
	}
	return c, rec
}

type stubAuth struct {
	loginFn    func(ctx context.Context, sess *session.Context, email, password string, onComplete func() error) error
	registerFn func(ctx context.Context, reg domain.Registration) (*domain.BackendUser, error)
	logoutFn   func(ctx context.Context, sess *session.Context) error
}

func (s *stubAuth) Login(ctx context.Context, sess *session.Context, email, password string, onComplete func() error) error {
	return s.loginFn(ctx, sess, email, password, onComplete)
}

func (s *stubAuth) Register(ctx context.Context, reg domain.Registration) (*domain.BackendUser, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubAuth) Logout(ctx context.Context, sess *session.Context) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, sess)
	}
	return sess.SignOut(ctx)
}

// stubBackend hands out api and records the rejection callback it was bound with.
type stubBackend struct {
	api      *stubAPI
	onReject func()
}

func (b *stubBackend) For(_ ports.SessionState, onReject func()) ports.InventoryAPI {
	b.onReject = onReject
	return b.api
}

// stubAPI answers from its fields. Err, when set, fails every call.
type stubAPI struct {
	Err       error
	Products  []domain.Product
	Purchases []domain.Purchase
	Sales     []domain.Sale
	Stores    []domain.Store
	SaleTotal float64
	BuyTotal  float64
	Monthly   []float64

	added   []domain.Product
	updated map[string]domain.Product
	deleted []string

	addPurchaseErr error
	addedPurchases []domain.Purchase
	addedSales     []domain.Sale
	addedStores    []domain.Store
}

func (a *stubAPI) ListProducts(context.Context) ([]domain.Product, error) {
	return a.Products, a.Err
}

func (a *stubAPI) AddProduct(_ context.Context, p domain.Product) (*domain.Product, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	a.added = append(a.added, p)
	return &p, nil
}

func (a *stubAPI) UpdateProduct(_ context.Context, id string, p domain.Product) (*domain.Product, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	if a.updated == nil {
		a.updated = map[string]domain.Product{}
	}
	a.updated[id] = p
	return &p, nil
}

func (a *stubAPI) DeleteProduct(_ context.Context, id string) error {
	if a.Err != nil {
		return a.Err
	}
	a.deleted = append(a.deleted, id)
	return nil
}

func (a *stubAPI) ListPurchases(context.Context) ([]domain.Purchase, error) {
	return a.Purchases, a.Err
}

func (a *stubAPI) AddPurchase(_ context.Context, p domain.Purchase) (*domain.Purchase, error) {
	if a.addPurchaseErr != nil {
		return nil, a.addPurchaseErr
	}
	a.addedPurchases = append(a.addedPurchases, p)
	return &p, a.Err
}

func (a *stubAPI) ListSales(context.Context) ([]domain.Sale, error) {
	return a.Sales, a.Err
}

func (a *stubAPI) AddSale(_ context.Context, s domain.Sale) (*domain.Sale, error) {
	a.addedSales = append(a.addedSales, s)
	return &s, a.Err
}

func (a *stubAPI) ListStores(context.Context) ([]domain.Store, error) {
	return a.Stores, a.Err
}

func (a *stubAPI) AddStore(_ context.Context, s domain.Store) (*domain.Store, error) {
	a.addedStores = append(a.addedStores, s)
	return &s, a.Err
}

func (a *stubAPI) TotalSaleAmount(context.Context) (float64, error) {
	return a.SaleTotal, a.Err
}

func (a *stubAPI) TotalPurchaseAmount(context.Context) (float64, error) {
	return a.BuyTotal, a.Err
}

func (a *stubAPI) MonthlySales(context.Context) ([]float64, error) {
	return a.Monthly, a.Err
}
