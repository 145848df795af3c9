package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/identity"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
}

// Service keeps the local user store in step with the identity provider.
type Service interface {
	Sync(ctx context.Context, id identity.Identity) (*models.User, error)
	SyncWithRole(ctx context.Context, role enums.UserRole) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.User, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Sync(ctx context.Context, id identity.Identity) (*models.User, error) {
	email := NormalizeEmail(id.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email in token")
	}
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user, err := s.findOrCreate(ctx, &models.User{
		Name:           name,
		Username:       name,
		Email:          email,
		Role:           enums.UserRoleUser,
		ProfilePicture: id.Picture,
		IsActive:       true,
	})
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if user.Name == "" {
		patch["name"] = name
	}
	if user.ProfilePicture == "" && id.Picture != "" {
		patch["profile_picture"] = id.Picture
	}
	if len(patch) > 0 {
		if _, err := s.repo.Update(ctx, user.ID, patch); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user profile")
		}
		if user, err = s.repo.FindByID(ctx, user.ID); err != nil {
			return nil, db.MapError(err, "User not found", "")
		}
	}

	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "User account is inactive")
	}
	return user, nil
}

func (s *service) SyncWithRole(ctx context.Context, role enums.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid role")
	}
	title := strings.ToUpper(role.String()[:1]) + role.String()[1:]
	user, err := s.findOrCreate(ctx, &models.User{
		Name:     title + " User",
		Username: role.String(),
		Email:    role.String() + "@example.com",
		Role:     role,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		if _, err := s.repo.Update(ctx, user.ID, map[string]any{"role": role}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update dev user role")
		}
		user.Role = role
	}
	return user, nil
}

// findOrCreate looks the user up by email and inserts candidate when absent.
// A concurrent insert of the same email falls back to the stored row.
func (s *service) findOrCreate(ctx context.Context, candidate *models.User) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, candidate.Email)
	if err == nil {
		return user, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if err := s.repo.Create(ctx, candidate); err != nil {
		if db.IsUniqueViolation(err, "") {
			return s.repo.FindByEmail(ctx, candidate.Email)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return candidate, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "User not found", "")
	}
	return user, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	params = params.Normalize(50)
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := &UserList{Users: make([]UserDTO, 0, len(rows)), Pagination: params.Result(total)}
	for i := range rows {
		out.Users = append(out.Users, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	parsed, err := enums.ParseUserRole(role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid role")
	}
	return s.update(ctx, id, map[string]any{"role": parsed})
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	updates := input.updates()
	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}
	return s.update(ctx, id, updates)
}

func (s *service) update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	ok, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return s.GetByID(ctx, id)
}
