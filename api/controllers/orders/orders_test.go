package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	internalorders "github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

type stubControllerOrdersService struct {
	create       func(ctx context.Context, userID uuid.UUID, input internalorders.CreateInput) (*internalorders.OrderDTO, error)
	get          func(ctx context.Context, actor types.Actor, id uuid.UUID) (*internalorders.OrderDTO, error)
	listMine     func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error)
	listAll      func(ctx context.Context, f internalorders.ListFilter) (*internalorders.OrderList, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status string) (*internalorders.OrderDTO, error)
}

func (s *stubControllerOrdersService) Create(ctx context.Context, userID uuid.UUID, input internalorders.CreateInput) (*internalorders.OrderDTO, error) {
	return s.create(ctx, userID, input)
}

func (s *stubControllerOrdersService) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*internalorders.OrderDTO, error) {
	return s.get(ctx, actor, id)
}

func (s *stubControllerOrdersService) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error) {
	return s.listMine(ctx, userID, params)
}

func (s *stubControllerOrdersService) ListAll(ctx context.Context, f internalorders.ListFilter) (*internalorders.OrderList, error) {
	return s.listAll(ctx, f)
}

func (s *stubControllerOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*internalorders.OrderDTO, error) {
	return s.updateStatus(ctx, id, status)
}

func (s *stubControllerOrdersService) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*internalorders.OrderDTO, error) {
	panic("not implemented")
}

func withActor(req *http.Request, role enums.UserRole) (*http.Request, types.Actor) {
	actor := types.Actor{UserID: uuid.New(), Role: role}
	return req.WithContext(middleware.WithActor(req.Context(), actor)), actor
}

func withOrderID(req *http.Request, id uuid.UUID) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("id", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateOrderSuccess(t *testing.T) {
	medicineID := uuid.New()
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[{"medicineId":"`+medicineID.String()+`","quantity":2}],"shippingAddress":{"street":"1 Main","city":"Austin"}}`))
	req.Header.Set("Content-Type", "application/json")
	req, actor := withActor(req, enums.UserRoleUser)

	called := false
	svc := &stubControllerOrdersService{
		create: func(ctx context.Context, userID uuid.UUID, input internalorders.CreateInput) (*internalorders.OrderDTO, error) {
			if userID != actor.UserID {
				t.Fatalf("unexpected user id %s", userID)
			}
			if len(input.Items) != 1 || input.Items[0].MedicineID != medicineID.String() || input.Items[0].Quantity != 2 {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			called = true
			return &internalorders.OrderDTO{ID: orderID, UserID: userID}, nil
		},
	}

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatalf("service not invoked")
	}
	var envelope struct {
		Data internalorders.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.ID)
	}
}

func TestCreateOrderRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[],"bogus":true}`))
	req.Header.Set("Content-Type", "application/json")
	req, _ = withActor(req, enums.UserRoleUser)

	resp := httptest.NewRecorder()
	Create(&stubControllerOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateOrderUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Create(&stubControllerOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListMineUsesCaller(t *testing.T) {
	req, actor := withActor(httptest.NewRequest(http.MethodGet, "/api/orders?page=3", nil), enums.UserRoleUser)
	svc := &stubControllerOrdersService{
		listMine: func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error) {
			if userID != actor.UserID {
				t.Fatalf("unexpected user id %s", userID)
			}
			if params.Page != 3 || params.Limit != pagination.DefaultLimit {
				t.Fatalf("unexpected params %+v", params)
			}
			return &internalorders.OrderList{}, nil
		},
	}

	resp := httptest.NewRecorder()
	ListMine(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestGetOrderForbidden(t *testing.T) {
	orderID := uuid.New()
	req, _ := withActor(httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil), enums.UserRoleUser)
	req = withOrderID(req, orderID)
	svc := &stubControllerOrdersService{
		get: func(ctx context.Context, actor types.Actor, id uuid.UUID) (*internalorders.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to view this order")
		},
	}

	resp := httptest.NewRecorder()
	Get(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestListAllFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=shipped&paymentStatus=paid&limit=25", nil)
	svc := &stubControllerOrdersService{
		listAll: func(ctx context.Context, f internalorders.ListFilter) (*internalorders.OrderList, error) {
			if f.Status == nil || *f.Status != enums.OrderStatusShipped {
				t.Fatalf("unexpected status %v", f.Status)
			}
			if f.PaymentStatus == nil || *f.PaymentStatus != enums.PaymentStatusPaid {
				t.Fatalf("unexpected payment status %v", f.PaymentStatus)
			}
			if f.Pagination.Limit != 25 {
				t.Fatalf("unexpected limit %d", f.Pagination.Limit)
			}
			return &internalorders.OrderList{}, nil
		},
	}

	resp := httptest.NewRecorder()
	ListAll(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListAllInvalidStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=lost", nil)
	resp := httptest.NewRecorder()
	ListAll(&stubControllerOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateStatusTransitionRejected(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"pending"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderID(req, orderID)
	svc := &stubControllerOrdersService{
		updateStatus: func(ctx context.Context, id uuid.UUID, status string) (*internalorders.OrderDTO, error) {
			if id != orderID || status != "pending" {
				t.Fatalf("unexpected input %s %s", id, status)
			}
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition")
		},
	}

	resp := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestUpdateStatusRequiresBody(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+orderID.String()+"/status", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderID(req, orderID)

	resp := httptest.NewRecorder()
	UpdateStatus(&stubControllerOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
