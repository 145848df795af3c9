package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/internal/banners"
	"github.com/angelmondragon/pharmacy-backend/internal/categories"
	"github.com/angelmondragon/pharmacy-backend/internal/medicines"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

type stubMedicines struct {
	list       func(ctx context.Context, f medicines.ListFilter) (*medicines.MedicineList, error)
	discounted func(ctx context.Context, limit int) ([]medicines.MedicineDTO, error)
	create     func(ctx context.Context, actor types.Actor, input medicines.CreateInput) (*medicines.MedicineDTO, error)
	del        func(ctx context.Context, actor types.Actor, id uuid.UUID) error
}

func (s *stubMedicines) List(ctx context.Context, f medicines.ListFilter) (*medicines.MedicineList, error) {
	return s.list(ctx, f)
}

func (s *stubMedicines) Discounted(ctx context.Context, limit int) ([]medicines.MedicineDTO, error) {
	return s.discounted(ctx, limit)
}

func (s *stubMedicines) Get(ctx context.Context, id uuid.UUID) (*medicines.MedicineDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Medicine not found")
}

func (s *stubMedicines) Create(ctx context.Context, actor types.Actor, input medicines.CreateInput) (*medicines.MedicineDTO, error) {
	return s.create(ctx, actor, input)
}

func (s *stubMedicines) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input medicines.UpdateInput) (*medicines.MedicineDTO, error) {
	panic("not implemented")
}

func (s *stubMedicines) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	return s.del(ctx, actor, id)
}

func TestListMedicinesParsesFilters(t *testing.T) {
	categoryID := uuid.New()
	var got medicines.ListFilter
	svc := &stubMedicines{list: func(ctx context.Context, f medicines.ListFilter) (*medicines.MedicineList, error) {
		got = f
		return &medicines.MedicineList{}, nil
	}}

	target := "/api/medicines?page=2&limit=5&sortBy=price&sortOrder=asc&inStock=true&category=" + categoryID.String() + "&search=%20aspirin%20"
	resp := serve(ListMedicines(svc, nil), newRequest(http.MethodGet, target, "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.Pagination.Page != 2 || got.Pagination.Limit != 5 {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}
	if got.SortBy != "price" || got.SortOrder != "asc" {
		t.Fatalf("unexpected sort %s %s", got.SortBy, got.SortOrder)
	}
	if got.InStock == nil || !*got.InStock {
		t.Fatalf("expected inStock filter")
	}
	if got.CategoryID == nil || *got.CategoryID != categoryID {
		t.Fatalf("unexpected category %v", got.CategoryID)
	}
	if got.SellerID != nil {
		t.Fatalf("expected no seller filter")
	}
	if got.Search != "aspirin" {
		t.Fatalf("unexpected search %q", got.Search)
	}
}

func TestListMedicinesDefaultsLimit(t *testing.T) {
	var got medicines.ListFilter
	svc := &stubMedicines{list: func(ctx context.Context, f medicines.ListFilter) (*medicines.MedicineList, error) {
		got = f
		return &medicines.MedicineList{}, nil
	}}
	resp := serve(ListMedicines(svc, nil), newRequest(http.MethodGet, "/api/medicines", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.Pagination.Limit != medicines.DefaultListLimit || got.Pagination.Page != 1 {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}
}

func TestListMedicinesRejectsBadCategory(t *testing.T) {
	resp := serve(ListMedicines(&stubMedicines{}, nil), newRequest(http.MethodGet, "/api/medicines?category=nope", "", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDiscountedMedicinesLimit(t *testing.T) {
	var limit int
	svc := &stubMedicines{discounted: func(ctx context.Context, l int) ([]medicines.MedicineDTO, error) {
		limit = l
		return []medicines.MedicineDTO{}, nil
	}}
	resp := serve(DiscountedMedicines(svc, nil), newRequest(http.MethodGet, "/api/medicines/discounted?limit=4", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if limit != 4 {
		t.Fatalf("expected limit 4 got %d", limit)
	}

	resp = serve(DiscountedMedicines(svc, nil), newRequest(http.MethodGet, "/api/medicines/discounted?limit=0", "", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetMedicineNotFound(t *testing.T) {
	id := uuid.New().String()
	resp := serve(GetMedicine(&stubMedicines{}, nil), newRequest(http.MethodGet, "/api/medicines/"+id, "", map[string]string{"id": id}))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestCreateMedicineRequiresActor(t *testing.T) {
	resp := serve(CreateMedicine(&stubMedicines{}, nil), newRequest(http.MethodPost, "/api/medicines", `{}`, nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCreateMedicineValidatesBody(t *testing.T) {
	req, _ := asActor(newRequest(http.MethodPost, "/api/medicines", `{"name":""}`, nil), enums.UserRoleSeller)
	resp := serve(CreateMedicine(&stubMedicines{}, nil), req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDeleteMedicinePassesActor(t *testing.T) {
	id := uuid.New()
	req, actor := asActor(newRequest(http.MethodDelete, "/api/medicines/"+id.String(), "", map[string]string{"id": id.String()}), enums.UserRoleSeller)
	called := false
	svc := &stubMedicines{del: func(ctx context.Context, got types.Actor, gotID uuid.UUID) error {
		if got != actor {
			t.Fatalf("unexpected actor %+v", got)
		}
		if gotID != id {
			t.Fatalf("unexpected id %s", gotID)
		}
		called = true
		return nil
	}}
	resp := serve(DeleteMedicine(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatalf("service not invoked")
	}
}

type stubCategories struct {
	categories.Service
	byName func(ctx context.Context, name string) (*categories.CategoryDTO, error)
}

func (s *stubCategories) GetByName(ctx context.Context, name string) (*categories.CategoryDTO, error) {
	return s.byName(ctx, name)
}

func TestGetCategoryByName(t *testing.T) {
	svc := &stubCategories{byName: func(ctx context.Context, name string) (*categories.CategoryDTO, error) {
		if name != "Pain Relief" {
			t.Fatalf("unexpected name %q", name)
		}
		return &categories.CategoryDTO{ID: uuid.New(), Name: name}, nil
	}}
	req := newRequest(http.MethodGet, "/api/categories/name/Pain%20Relief", "", map[string]string{"name": "Pain Relief"})
	resp := serve(GetCategoryByName(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var got categories.CategoryDTO
	decodeData(t, resp, &got)
	if got.Name != "Pain Relief" {
		t.Fatalf("unexpected category %+v", got)
	}
}

func TestGetCategoryInvalidID(t *testing.T) {
	resp := serve(GetCategory(&stubCategories{}, nil), newRequest(http.MethodGet, "/api/categories/abc", "", map[string]string{"id": "abc"}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubBanners struct {
	banners.Service
	list     func(ctx context.Context, active *bool) ([]banners.BannerDTO, error)
	priority func(ctx context.Context, id uuid.UUID, order int) (*banners.BannerDTO, error)
}

func (s *stubBanners) List(ctx context.Context, active *bool) ([]banners.BannerDTO, error) {
	return s.list(ctx, active)
}

func (s *stubBanners) UpdatePriority(ctx context.Context, id uuid.UUID, order int) (*banners.BannerDTO, error) {
	return s.priority(ctx, id, order)
}

func TestListBannersActiveFilter(t *testing.T) {
	var got *bool
	svc := &stubBanners{list: func(ctx context.Context, active *bool) ([]banners.BannerDTO, error) {
		got = active
		return nil, nil
	}}
	resp := serve(ListBanners(svc, nil), newRequest(http.MethodGet, "/api/banners?active=false", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got == nil || *got {
		t.Fatalf("expected active=false filter")
	}
}

func TestUpdateBannerPriority(t *testing.T) {
	id := uuid.New()
	svc := &stubBanners{priority: func(ctx context.Context, gotID uuid.UUID, order int) (*banners.BannerDTO, error) {
		if order != 3 {
			t.Fatalf("unexpected order %d", order)
		}
		return &banners.BannerDTO{ID: gotID}, nil
	}}
	params := map[string]string{"id": id.String()}
	resp := serve(UpdateBannerPriority(svc, nil), newRequest(http.MethodPatch, "/api/banners/"+id.String()+"/priority", `{"order":3}`, params))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = serve(UpdateBannerPriority(svc, nil), newRequest(http.MethodPatch, "/api/banners/"+id.String()+"/priority", `{}`, params))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing order got %d", resp.Code)
	}
}
