package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/ports"
	"github.com/stockroom/inventory-web/internal/core/session"
)

// LedgerHandler serves the admin purchase, sales and store pages. Each page
// lists records and accepts new ones through a form on the same path.
type LedgerHandler struct {
	backend BackendBinder
	log     zerolog.Logger
}

func NewLedgerHandler(backend BackendBinder, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{backend: backend, log: log}
}

// Purchases handles GET /purchase-details.
func (h *LedgerHandler) Purchases(c echo.Context) error {
	return h.withAPI(c, func(sess *session.Context, api ports.InventoryAPI) error {
		return h.renderPurchases(c, sess, api, http.StatusOK, c.QueryParam("form") != "", "")
	})
}

// CreatePurchase handles POST /purchase-details.
func (h *LedgerHandler) CreatePurchase(c echo.Context) error {
	return h.withAPI(c, func(sess *session.Context, api ports.InventoryAPI) error {
		var form purchaseForm
		err := h.bind(c, &form)
		if err == nil {
			_, err = api.AddPurchase(c.Request().Context(), form.toDomain())
		}
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return err
			}
			status, msg := h.describe(err)
			return h.renderPurchases(c, sess, api, status, true, msg)
		}
		return c.Redirect(http.StatusSeeOther, "/purchase-details?notice=saved")
	})
}

// Sales handles GET /sales.
func (h *LedgerHandler) Sales(c echo.Context) error {
	return h.withAPI(c, func(sess *session.Context, api ports.InventoryAPI) error {
		return h.renderSales(c, sess, api, http.StatusOK, c.QueryParam("form") != "", "")
	})
}

// CreateSale handles POST /sales.
func (h *LedgerHandler) CreateSale(c echo.Context) error {
	return h.withAPI(c, func(sess *session.Context, api ports.InventoryAPI) error {
		var form saleForm
		err := h.bind(c, &form)
		if err == nil {
			_, err = api.AddSale(c.Request().Context(), form.toDomain())
		}
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return err
			}
			status, msg := h.describe(err)
			return h.renderSales(c, sess, api, status, true, msg)
		}
		return c.Redirect(http.StatusSeeOther, "/sales?notice=saved")
	})
}

// Stores handles GET /manage-store.
func (h *LedgerHandler) Stores(c echo.Context) error {
	return h.withAPI(c, func(sess *session.Context, api ports.InventoryAPI) error {
		return h.renderStores(c, sess, api, http.StatusOK, c.QueryParam("form") != "", "")
	})
}

// CreateStore handles POST /manage-store.
func (h *LedgerHandler) CreateStore(c echo.Context) error {
	return h.withAPI(c, func(sess *session.Context, api ports.InventoryAPI) error {
		var form storeForm
		err := h.bind(c, &form)
		if err == nil {
			_, err = api.AddStore(c.Request().Context(), form.toDomain())
		}
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return err
			}
			status, msg := h.describe(err)
			return h.renderStores(c, sess, api, status, true, msg)
		}
		return c.Redirect(http.StatusSeeOther, "/manage-store?notice=saved")
	})
}

func (h *LedgerHandler) withAPI(c echo.Context, fn func(*session.Context, ports.InventoryAPI) error) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fn(sess, h.backend.For(sess, markRejected(c)))
}

func (h *LedgerHandler) bind(c echo.Context, form any) error {
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission.")
	}
	return c.Validate(form)
}

func (h *LedgerHandler) describe(err error) (int, string) {
	status, msg, known := Describe(err)
	if !known {
		h.log.Error().Err(err).Msg("ledger mutation failed")
	}
	return status, msg
}

func (h *LedgerHandler) renderPurchases(c echo.Context, sess *session.Context, api ports.InventoryAPI, status int, showForm bool, msg string) error {
	ctx := c.Request().Context()
	purchases, err := api.ListPurchases(ctx)
	if err != nil {
		return err
	}
	var products []domain.Product
	if showForm {
		if products, err = api.ListProducts(ctx); err != nil {
			return err
		}
	}

	page := pageFor(c, sess, routes.ViewPurchases)
	page.Error = msg
	page.Data = view.PurchasesData{Purchases: purchases, Products: products, ShowForm: showForm}
	return c.Render(status, view.TemplatePurchases, page)
}

func (h *LedgerHandler) renderSales(c echo.Context, sess *session.Context, api ports.InventoryAPI, status int, showForm bool, msg string) error {
	ctx := c.Request().Context()
	sales, err := api.ListSales(ctx)
	if err != nil {
		return err
	}
	var (
		products []domain.Product
		stores   []domain.Store
	)
	if showForm {
		if products, err = api.ListProducts(ctx); err != nil {
			return err
		}
		if stores, err = api.ListStores(ctx); err != nil {
			return err
		}
	}

	page := pageFor(c, sess, routes.ViewSales)
	page.Error = msg
	page.Data = view.SalesData{Sales: sales, Products: products, Stores: stores, ShowForm: showForm}
	return c.Render(status, view.TemplateSales, page)
}

func (h *LedgerHandler) renderStores(c echo.Context, sess *session.Context, api ports.InventoryAPI, status int, showForm bool, msg string) error {
	stores, err := api.ListStores(c.Request().Context())
	if err != nil {
		return err
	}

	page := pageFor(c, sess, routes.ViewStores)
	page.Error = msg
	page.Data = view.StoresData{Stores: stores, ShowForm: showForm}
	return c.Render(status, view.TemplateStores, page)
}
