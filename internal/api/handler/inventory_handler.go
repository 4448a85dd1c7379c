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

// BackendBinder hands out a backend client bound to one session.
type BackendBinder interface {
	For(sess ports.SessionState, onReject func()) ports.InventoryAPI
}

// InventoryHandler serves the product list for both roles.
type InventoryHandler struct {
	backend BackendBinder
	log     zerolog.Logger
}

func NewInventoryHandler(backend BackendBinder, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{backend: backend, log: log}
}

// List renders the products, filtered by ?q=. ?dialog=add opens an empty
// product form; ?edit=<id> opens the form for that product.
func (h *InventoryHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	api := h.backend.For(sess, markRejected(c))

	products, err := api.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}

	dialog := domain.NewDialog()
	var msg string
	switch {
	case c.QueryParam("dialog") == string(domain.DialogAdd):
		err = dialog.Open(domain.DialogAdd, domain.Product{})
	case c.QueryParam("edit") != "":
		if p, ok := domain.FindProduct(products, c.QueryParam("edit")); ok {
			err = dialog.Open(domain.DialogEdit, p)
		} else {
			msg = "That product no longer exists."
		}
	}
	if err != nil {
		return err
	}

	return h.render(c, sess, http.StatusOK, products, dialog, msg)
}

// Create handles POST /inventory/products.
func (h *InventoryHandler) Create(c echo.Context) error {
	return h.save(c, domain.DialogAdd, "")
}

// Update handles POST /inventory/products/:id.
func (h *InventoryHandler) Update(c echo.Context) error {
	return h.save(c, domain.DialogEdit, c.Param("id"))
}

// Delete handles POST /inventory/products/:id/delete.
func (h *InventoryHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	api := h.backend.For(sess, markRejected(c))
	ctx := c.Request().Context()

	if err := api.DeleteProduct(ctx, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return err
		}
		return h.renderFailure(c, sess, api, nil, err)
	}
	return c.Redirect(http.StatusSeeOther, inventoryPath(sess)+"?notice=deleted")
}

func (h *InventoryHandler) save(c echo.Context, mode domain.DialogMode, id string) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	api := h.backend.For(sess, markRejected(c))
	ctx := c.Request().Context()

	var form productForm
	bindErr := c.Bind(&form)
	product := form.toDomain()
	product.ID = id

	dialog := domain.NewDialog()
	if err := dialog.Open(mode, product); err != nil {
		return err
	}
	// Open resets add-mode forms; keep what the user typed.
	dialog.Product = product

	if bindErr != nil {
		return h.renderFailure(c, sess, api, dialog, echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission."))
	}
	if err := c.Validate(&form); err != nil {
		return h.renderFailure(c, sess, api, dialog, err)
	}

	if mode == domain.DialogEdit {
		_, err = api.UpdateProduct(ctx, id, product)
	} else {
		_, err = api.AddProduct(ctx, product)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return err
		}
		return h.renderFailure(c, sess, api, dialog, err)
	}

	return c.Redirect(http.StatusSeeOther, inventoryPath(sess)+"?notice=saved")
}

// renderFailure re-renders the list with the error and, when given, the
// dialog still open so the user can correct and resubmit.
func (h *InventoryHandler) renderFailure(c echo.Context, sess *session.Context, api ports.InventoryAPI, dialog *domain.Dialog, cause error) error {
	status, msg, known := Describe(cause)
	if !known {
		h.log.Error().Err(cause).Msg("inventory mutation failed")
	}

	products, err := api.ListProducts(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return err
		}
		h.log.Warn().Err(err).Msg("could not reload products after failed mutation")
	}
	return h.render(c, sess, status, products, dialog, msg)
}

func (h *InventoryHandler) render(c echo.Context, sess *session.Context, status int, products []domain.Product, dialog *domain.Dialog, msg string) error {
	if dialog != nil && dialog.State == domain.DialogOpening {
		if err := dialog.Settle(); err != nil {
			return err
		}
	}

	search := c.QueryParam("q")
	filtered := domain.FilterProducts(products, search)

	page := pageFor(c, sess, routes.ViewInventory)
	page.Error = msg
	page.Data = view.InventoryData{
		Products: filtered,
		Total:    len(filtered),
		Search:   search,
		Dialog:   dialog,
		BasePath: inventoryPath(sess),
	}
	return c.Render(status, view.TemplateInventory, page)
}

func inventoryPath(sess *session.Context) string {
	if p, ok := routes.Select(sess.Role()).PathFor(routes.ViewInventory); ok {
		return p
	}
	return "/"
}
