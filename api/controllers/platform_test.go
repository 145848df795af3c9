package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/internal/admin"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/identity"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthReadyReportsChecks(t *testing.T) {
	deps := map[string]Pinger{"database": stubPinger{}, "redis": nil}
	resp := serve(HealthReady(deps, nil), newRequest(http.MethodGet, "/health/ready", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var got struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeData(t, resp, &got)
	if got.Checks["database"] != "up" || got.Checks["redis"] != "disabled" {
		t.Fatalf("unexpected checks %+v", got.Checks)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	deps := map[string]Pinger{"database": stubPinger{err: errors.New("refused")}}
	resp := serve(HealthReady(deps, nil), newRequest(http.MethodGet, "/health/ready", "", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

type stubVerifier struct {
	id  identity.Identity
	err error
}

func (v stubVerifier) Verify(ctx context.Context, token string) (identity.Identity, error) {
	return v.id, v.err
}

type stubSyncer struct {
	synced identity.Identity
}

func (s *stubSyncer) Sync(ctx context.Context, id identity.Identity) (*models.User, error) {
	s.synced = id
	return &models.User{ID: uuid.New(), Email: id.Email, Name: id.Name, Role: enums.UserRoleUser}, nil
}

func (s *stubSyncer) SyncWithRole(ctx context.Context, role enums.UserRole) (*models.User, error) {
	panic("not implemented")
}

func TestFirebaseLoginSyncsUser(t *testing.T) {
	verifier := stubVerifier{id: identity.Identity{UID: "uid-1", Email: "ana@example.com", Name: "Ana"}}
	syncer := &stubSyncer{}
	resp := serve(FirebaseLogin(verifier, syncer, nil), newRequest(http.MethodPost, "/api/auth/firebase-login", `{"idToken":"tok"}`, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if syncer.synced.UID != "uid-1" {
		t.Fatalf("identity not synced")
	}
	var got struct {
		Message string        `json:"message"`
		User    users.UserDTO `json:"user"`
	}
	decodeData(t, resp, &got)
	if got.Message != "Login successful" || got.User.Email != "ana@example.com" {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestFirebaseLoginRejectsBadToken(t *testing.T) {
	verifier := stubVerifier{err: errors.New("expired")}
	resp := serve(FirebaseLogin(verifier, &stubSyncer{}, nil), newRequest(http.MethodPost, "/api/auth/firebase-login", `{"idToken":"tok"}`, nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestFirebaseLoginRequiresToken(t *testing.T) {
	resp := serve(FirebaseLogin(stubVerifier{}, &stubSyncer{}, nil), newRequest(http.MethodPost, "/api/auth/firebase-login", `{}`, nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubUsers struct {
	users.Service
	get        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	updateRole func(ctx context.Context, id uuid.UUID, role string) (*models.User, error)
}

func (s *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.get(ctx, id)
}

func (s *stubUsers) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	return s.updateRole(ctx, id, role)
}

func TestMeReturnsCaller(t *testing.T) {
	req, actor := asActor(newRequest(http.MethodGet, "/api/users/me", "", nil), enums.UserRoleUser)
	svc := &stubUsers{get: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
		if id != actor.UserID {
			t.Fatalf("unexpected id %s", id)
		}
		return &models.User{ID: id, Email: "me@example.com", Role: enums.UserRoleUser}, nil
	}}
	resp := serve(Me(svc, nil), req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var got users.UserDTO
	decodeData(t, resp, &got)
	if got.ID != actor.UserID {
		t.Fatalf("unexpected user %+v", got)
	}
}

func TestUpdateUserRoleInvalidRole(t *testing.T) {
	id := uuid.New()
	svc := &stubUsers{updateRole: func(ctx context.Context, gotID uuid.UUID, role string) (*models.User, error) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid role")
	}}
	req, _ := asActor(newRequest(http.MethodPatch, "/api/users/"+id.String()+"/role", `{"role":"wizard"}`, map[string]string{"id": id.String()}), enums.UserRoleAdmin)
	resp := serve(UpdateUserRole(svc, nil), req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubStats struct{}

func (stubStats) Stats(ctx context.Context) (*admin.Stats, error) {
	return &admin.Stats{Products: 4, Customers: 9, Support: 1}, nil
}

func TestPublicStats(t *testing.T) {
	resp := serve(PublicStats(stubStats{}, nil), newRequest(http.MethodGet, "/api/stats", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var got admin.Stats
	decodeData(t, resp, &got)
	if got.Products != 4 || got.Customers != 9 || got.Support != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}
