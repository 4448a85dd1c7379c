package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/ports"
)

var _ ports.InventoryAPI = (*Session)(nil)

func (s *Session) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := s.Request(ctx, http.MethodGet, "/api/product", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) AddProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	uid, err := s.subject()
	if err != nil {
		return nil, err
	}
	p.UserID = uid
	if p.Unit == "" {
		p.Unit = domain.DefaultUnit
	}

	var out domain.Product
	if err := s.Request(ctx, http.MethodPost, "/api/product/add", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProduct(ctx context.Context, id string, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := s.Request(ctx, http.MethodPut, "/api/product/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteProduct(ctx context.Context, id string) error {
	return s.Request(ctx, http.MethodDelete, "/api/product/"+url.PathEscape(id), nil, nil)
}

func (s *Session) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	var out []domain.Purchase
	if err := s.getForSubject(ctx, "/api/purchase/get/", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) AddPurchase(ctx context.Context, p domain.Purchase) (*domain.Purchase, error) {
	uid, err := s.subject()
	if err != nil {
		return nil, err
	}
	p.UserID = uid

	var out domain.Purchase
	if err := s.Request(ctx, http.MethodPost, "/api/purchase/add", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListSales(ctx context.Context) ([]domain.Sale, error) {
	var out []domain.Sale
	if err := s.getForSubject(ctx, "/api/sales/get/", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) AddSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	uid, err := s.subject()
	if err != nil {
		return nil, err
	}
	sale.UserID = uid

	var out domain.Sale
	if err := s.Request(ctx, http.MethodPost, "/api/sales/add", sale, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListStores(ctx context.Context) ([]domain.Store, error) {
	var out []domain.Store
	if err := s.getForSubject(ctx, "/api/store/get/", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) AddStore(ctx context.Context, st domain.Store) (*domain.Store, error) {
	uid, err := s.subject()
	if err != nil {
		return nil, err
	}
	st.UserID = uid

	var out domain.Store
	if err := s.Request(ctx, http.MethodPost, "/api/store/add", st, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) TotalSaleAmount(ctx context.Context) (float64, error) {
	var raw json.RawMessage
	if err := s.getForSubject(ctx, "/api/sales/get/", "/totalsaleamount", &raw); err != nil {
		return 0, err
	}
	return decodeAmount(raw, "totalSaleAmount")
}

func (s *Session) TotalPurchaseAmount(ctx context.Context) (float64, error) {
	var raw json.RawMessage
	if err := s.getForSubject(ctx, "/api/purchase/get/", "/totalpurchaseamount", &raw); err != nil {
		return 0, err
	}
	return decodeAmount(raw, "totalPurchaseAmount")
}

func (s *Session) MonthlySales(ctx context.Context) ([]float64, error) {
	var raw json.RawMessage
	if err := s.Request(ctx, http.MethodGet, "/api/sales/getmonthly", nil, &raw); err != nil {
		return nil, err
	}
	return decodeSeries(raw, "salesAmount")
}

func (s *Session) getForSubject(ctx context.Context, prefix, suffix string, out any) error {
	uid, err := s.subject()
	if err != nil {
		return err
	}
	return s.Request(ctx, http.MethodGet, prefix+url.PathEscape(uid)+suffix, nil, out)
}

// decodeAmount accepts the shapes the backend has used for aggregates: a bare
// number, {"<field>": n}, {"total": n}, or a one-element array of either.
func decodeAmount(raw json.RawMessage, field string) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0, malformed(err)
		}
		if len(items) == 0 {
			return 0, nil
		}
		return decodeAmount(items[0], field)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, malformed(err)
		}
		for _, k := range []string{field, "total", "amount"} {
			if v, ok := obj[k]; ok {
				return decodeAmount(v, field)
			}
		}
		return 0, nil
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, malformed(err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, malformed(err)
		}
		return f, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, malformed(err)
	}
	return f, nil
}

// decodeSeries accepts a bare array of numbers or {"<field>": [...]}.
func decodeSeries(raw json.RawMessage, field string) ([]float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, malformed(err)
		}
		return decodeSeries(obj[field], field)
	}

	var out []float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, malformed(err)
	}
	return out, nil
}

func malformed(err error) error {
	return &APIError{Status: http.StatusOK, Message: "malformed aggregate", Err: fmt.Errorf("%w: %w", domain.ErrBackend, err)}
}
