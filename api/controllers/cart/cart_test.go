package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartdto "github.com/angelmondragon/cartreserve-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/cartreserve-backend/api/middleware"
	"github.com/angelmondragon/cartreserve-backend/api/responses"
	cartsvc "github.com/angelmondragon/cartreserve-backend/internal/cart"
	"github.com/angelmondragon/cartreserve-backend/internal/inventory"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
)

type stubCartService struct {
	cartsvc.Service

	summary   *cartsvc.Summary
	line      *models.CartLineItem
	remaining cartsvc.Remaining
	err       error

	lastSession string
	lastAdd     cartsvc.AddInput
	lastUpdate  int
	removed     uuid.UUID
	cleared     bool
}

func (s *stubCartService) Summary(_ context.Context, sessionKey string) (*cartsvc.Summary, error) {
	s.lastSession = sessionKey
	return s.summary, s.err
}

func (s *stubCartService) Add(_ context.Context, sessionKey string, input cartsvc.AddInput) (*models.CartLineItem, error) {
	s.lastSession = sessionKey
	s.lastAdd = input
	return s.line, s.err
}

func (s *stubCartService) Update(_ context.Context, sessionKey string, _ uuid.UUID, quantity int) (*models.CartLineItem, error) {
	s.lastSession = sessionKey
	s.lastUpdate = quantity
	return s.line, s.err
}

func (s *stubCartService) Remove(_ context.Context, sessionKey string, inventoryID uuid.UUID) error {
	s.lastSession = sessionKey
	s.removed = inventoryID
	return s.err
}

func (s *stubCartService) Clear(_ context.Context, sessionKey string) error {
	s.lastSession = sessionKey
	s.cleared = true
	return s.err
}

func (s *stubCartService) ExpiryRemaining(_ context.Context, sessionKey string) (cartsvc.Remaining, error) {
	s.lastSession = sessionKey
	return s.remaining, s.err
}

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithCartSession(req.Context(), "sess-1"))
}

func withInventoryParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("inventoryId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleLine() *models.CartLineItem {
	return &models.CartLineItem{
		ID:            uuid.New(),
		InventoryID:   uuid.New(),
		ProductID:     uuid.New(),
		Variety:       "red / XL",
		Quantity:      3,
		UnitSalePrice: decimal.RequireFromString("12.5"),
		ExpiresAt:     time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC),
	}
}

func TestCartSummaryFormatsMoney(t *testing.T) {
	line := sampleLine()
	svc := &stubCartService{summary: &cartsvc.Summary{
		Items:         []models.CartLineItem{*line},
		Count:         3,
		Subtotal:      decimal.RequireFromString("37.5"),
		DeliveryPrice: decimal.Zero,
		Total:         decimal.RequireFromString("37.5"),
		Remaining:     cartsvc.Remaining{Minutes: 1, Seconds: 30, ExpiresAt: line.ExpiresAt},
	}}
	resp := httptest.NewRecorder()
	CartSummary(svc, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartdto.Summary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Subtotal != "37.50" || envelope.Data.Total != "37.50" || envelope.Data.DeliveryPrice != "0.00" {
		t.Fatalf("unexpected totals %+v", envelope.Data)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].LineTotal != "37.50" {
		t.Fatalf("unexpected items %+v", envelope.Data.Items)
	}
	if envelope.Data.Remaining.Minutes != 1 || envelope.Data.Remaining.Seconds != 30 {
		t.Fatalf("unexpected remaining %+v", envelope.Data.Remaining)
	}
	if svc.lastSession != "sess-1" {
		t.Fatalf("expected session from context, got %q", svc.lastSession)
	}
}

func TestCartAddItemCreated(t *testing.T) {
	svc := &stubCartService{line: sampleLine()}
	inventoryID := uuid.New()
	body := `{"inventory_id":"` + inventoryID.String() + `","quantity":3,"override":true}`

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAdd.InventoryID != inventoryID || svc.lastAdd.Quantity != 3 || !svc.lastAdd.Override {
		t.Fatalf("unexpected add input %+v", svc.lastAdd)
	}
	if !svc.lastAdd.UnitPrice.IsZero() {
		t.Fatal("unit price must come from inventory, not the client")
	}
}

func TestCartAddItemRejectsBadQuantity(t *testing.T) {
	svc := &stubCartService{line: sampleLine()}
	body := `{"inventory_id":"` + uuid.NewString() + `","quantity":0}`

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastSession != "" {
		t.Fatal("service must not be called on invalid input")
	}
}

func TestCartAddItemOverReservationIsFieldError(t *testing.T) {
	record := &models.InventoryRecord{ID: uuid.New(), AttributeValues: "blue", AvailableQty: 2}
	svc := &stubCartService{err: inventory.OverReservation(record, 5)}
	body := `{"inventory_id":"` + record.ID.String() + `","quantity":5}`

	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope responses.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeOverReservation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if !strings.Contains(envelope.Error.Fields["quantity"], "blue is 2") {
		t.Fatalf("unexpected field error %q", envelope.Error.Fields["quantity"])
	}
}

func TestCartUpdateItem(t *testing.T) {
	svc := &stubCartService{line: sampleLine()}
	req := withInventoryParam(newRequest(http.MethodPut, "/api/v1/cart/items/x", `{"quantity":7}`), uuid.NewString())

	resp := httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastUpdate != 7 {
		t.Fatalf("expected quantity 7, got %d", svc.lastUpdate)
	}
}

func TestCartRemoveItemInvalidID(t *testing.T) {
	svc := &stubCartService{}
	req := withInventoryParam(newRequest(http.MethodDelete, "/api/v1/cart/items/nope", ""), "nope")

	resp := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItem(t *testing.T) {
	svc := &stubCartService{}
	id := uuid.New()
	req := withInventoryParam(newRequest(http.MethodDelete, "/api/v1/cart/items/"+id.String(), ""), id.String())

	resp := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if svc.removed != id {
		t.Fatalf("expected %s removed, got %s", id, svc.removed)
	}
}

func TestCartClear(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, newRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusNoContent || !svc.cleared {
		t.Fatalf("expected clear with 204, got %d cleared=%v", resp.Code, svc.cleared)
	}
}

func TestCartExpiryWithoutSession(t *testing.T) {
	svc := &stubCartService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/expiry", nil)
	resp := httptest.NewRecorder()
	CartExpiry(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartExpiryExpiredOmitsTimestamp(t *testing.T) {
	svc := &stubCartService{remaining: cartsvc.Remaining{Expired: true}}
	resp := httptest.NewRecorder()
	CartExpiry(svc, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/api/v1/cart/expiry", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartdto.Remaining `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Expired || envelope.Data.ExpiresAt != nil {
		t.Fatalf("unexpected remaining %+v", envelope.Data)
	}
}
