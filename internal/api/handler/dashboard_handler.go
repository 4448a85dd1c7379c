package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/domain"
)

// DashboardHandler serves the admin summary page.
type DashboardHandler struct {
	backend BackendBinder
	log     zerolog.Logger
}

func NewDashboardHandler(backend BackendBinder, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{backend: backend, log: log}
}

// Show renders totals and monthly sales. Figures that fail to load are shown
// as zero under a visible warning; a rejected session aborts the page.
func (h *DashboardHandler) Show(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	api := h.backend.For(sess, markRejected(c))
	ctx := c.Request().Context()

	var (
		data   view.DashboardData
		failed error
	)
	collect := func(err error) error {
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrUnauthenticated) {
			return err
		}
		if failed == nil {
			failed = err
		}
		return nil
	}

	sales, err := api.TotalSaleAmount(ctx)
	if err := collect(err); err != nil {
		return err
	}
	purchases, err := api.TotalPurchaseAmount(ctx)
	if err := collect(err); err != nil {
		return err
	}
	monthly, err := api.MonthlySales(ctx)
	if err := collect(err); err != nil {
		return err
	}
	products, err := api.ListProducts(ctx)
	if err := collect(err); err != nil {
		return err
	}
	stores, err := api.ListStores(ctx)
	if err := collect(err); err != nil {
		return err
	}

	data.Totals = domain.Totals{SaleAmount: sales, PurchaseAmount: purchases, MonthlySales: monthly}
	data.ProductCount = len(products)
	data.StoreCount = len(stores)

	page := pageFor(c, sess, routes.ViewDashboard)
	page.Data = data
	if failed != nil {
		_, msg, known := Describe(failed)
		if !known {
			h.log.Error().Err(failed).Msg("dashboard figures failed to load")
		}
		page.Error = "Some figures could not be loaded. " + msg
	}
	return c.Render(http.StatusOK, view.TemplateDashboard, page)
}
