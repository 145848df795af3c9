package reviews

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

const (
	DefaultFeaturedLimit = 3
	maxCommentLength     = 500
)

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ExistsForMedicine(ctx context.Context, userID, medicineID uuid.UUID) (bool, error)
	HasDeliveredOrder(ctx context.Context, userID uuid.UUID, medicineID *uuid.UUID) (bool, error)
	Top(ctx context.Context, limit int) ([]models.Review, error)
	Summary(ctx context.Context) (int64, float64, error)
	ListForMedicine(ctx context.Context, medicineID uuid.UUID, params pagination.Params) ([]models.Review, int64, error)
	RatingsForMedicine(ctx context.Context, medicineID uuid.UUID) ([]int, error)
}

type medicineChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	AddMedicineReview(ctx context.Context, actor types.Actor, medicineID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	AddGeneralReview(ctx context.Context, actor types.Actor, input CreateInput) (*ReviewDTO, error)
	Featured(ctx context.Context, limit int) (*Featured, error)
	MedicineReviews(ctx context.Context, medicineID uuid.UUID, params pagination.Params) (*MedicineReviews, error)
	Stats(ctx context.Context, medicineID uuid.UUID) (*Stats, error)
}

type service struct {
	repo      repository
	medicines medicineChecker
}

func NewService(repo repository, medicines medicineChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("medicine checker required")
	}
	return &service{repo: repo, medicines: medicines}, nil
}

func validateInput(input CreateInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5")
	}
	if strings.TrimSpace(input.Comment) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Comment is required")
	}
	if len([]rune(input.Comment)) > maxCommentLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "Comment must be less than 500 characters")
	}
	return nil
}

func (s *service) AddMedicineReview(ctx context.Context, actor types.Actor, medicineID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.ensureMedicine(ctx, medicineID); err != nil {
		return nil, err
	}
	verified, err := s.purchased(ctx, actor, &medicineID)
	if err != nil {
		return nil, err
	}
	if !verified && !actor.Role.CanSell() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Only users who have purchased this medicine can review it")
	}

	exists, err := s.repo.ExistsForMedicine(ctx, actor.UserID, medicineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup review")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "You have already reviewed this medicine")
	}

	review := &models.Review{
		UserID:             actor.UserID,
		MedicineID:         &medicineID,
		Rating:             input.Rating,
		Comment:            strings.TrimSpace(input.Comment),
		IsVerifiedPurchase: verified,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "You have already reviewed this medicine")
		}
		return nil, db.MapError(err, "", "")
	}
	return s.load(ctx, review.ID)
}

func (s *service) AddGeneralReview(ctx context.Context, actor types.Actor, input CreateInput) (*ReviewDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	verified, err := s.purchased(ctx, actor, nil)
	if err != nil {
		return nil, err
	}
	if !verified && !actor.Role.CanSell() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Only users who have purchased medicine can submit reviews")
	}
	review := &models.Review{
		UserID:             actor.UserID,
		Rating:             input.Rating,
		Comment:            strings.TrimSpace(input.Comment),
		IsVerifiedPurchase: verified,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, db.MapError(err, "", "")
	}
	return s.load(ctx, review.ID)
}

func (s *service) Featured(ctx context.Context, limit int) (*Featured, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	rows, err := s.repo.Top(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured reviews")
	}
	total, avg, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize reviews")
	}
	out := &Featured{Reviews: toDTOs(rows), TotalReviews: total, AverageRating: round1(avg)}
	return out, nil
}

func (s *service) MedicineReviews(ctx context.Context, medicineID uuid.UUID, params pagination.Params) (*MedicineReviews, error) {
	params = params.Normalize(pagination.DefaultLimit)
	rows, total, err := s.repo.ListForMedicine(ctx, medicineID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	pages := params.Result(total).Pages
	return &MedicineReviews{
		Reviews: toDTOs(rows),
		Pagination: PageInfo{
			CurrentPage:  params.Page,
			TotalPages:   pages,
			TotalReviews: total,
			HasNextPage:  params.Page < pages,
			HasPrevPage:  params.Page > 1,
		},
	}, nil
}

func (s *service) Stats(ctx context.Context, medicineID uuid.UUID) (*Stats, error) {
	if err := s.ensureMedicine(ctx, medicineID); err != nil {
		return nil, err
	}
	ratings, err := s.repo.RatingsForMedicine(ctx, medicineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load ratings")
	}
	return BuildStats(ratings), nil
}

// BuildStats computes the mean rating and the 5..1 star distribution.
func BuildStats(ratings []int) *Stats {
	counts := map[int]int{}
	sum := 0
	for _, r := range ratings {
		counts[r]++
		sum += r
	}
	stats := &Stats{TotalReviews: len(ratings), RatingDistribution: make([]StarCount, 0, 5)}
	if len(ratings) > 0 {
		stats.AverageRating = round1(float64(sum) / float64(len(ratings)))
	}
	for star := 5; star >= 1; star-- {
		pct := 0
		if len(ratings) > 0 {
			pct = int(math.Round(float64(counts[star]) / float64(len(ratings)) * 100))
		}
		stats.RatingDistribution = append(stats.RatingDistribution, StarCount{Stars: star, Count: counts[star], Percentage: pct})
	}
	return stats
}

func (s *service) purchased(ctx context.Context, actor types.Actor, medicineID *uuid.UUID) (bool, error) {
	ok, err := s.repo.HasDeliveredOrder(ctx, actor.UserID, medicineID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check purchase history")
	}
	return ok, nil
}

func (s *service) ensureMedicine(ctx context.Context, id uuid.UUID) error {
	ok, err := s.medicines.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup medicine")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Medicine not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "Review not found", "")
	}
	dto := FromModel(*review)
	return &dto, nil
}

func toDTOs(rows []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
