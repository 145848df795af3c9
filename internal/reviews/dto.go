package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

type ReviewerRef struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Role           enums.UserRole `json:"role"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
}

type MedicineRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ReviewDTO struct {
	ID                 uuid.UUID    `json:"id"`
	User               ReviewerRef  `json:"user"`
	Medicine           *MedicineRef `json:"medicine,omitempty"`
	Rating             int          `json:"rating"`
	Comment            string       `json:"comment"`
	IsVerifiedPurchase bool         `json:"isVerifiedPurchase"`
	CreatedAt          time.Time    `json:"createdAt"`
}

func FromModel(r models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:                 r.ID,
		User:               ReviewerRef{ID: r.UserID},
		Rating:             r.Rating,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		CreatedAt:          r.CreatedAt,
	}
	if r.User != nil {
		dto.User.Name = r.User.Name
		dto.User.Role = r.User.Role
		dto.User.ProfilePicture = r.User.ProfilePicture
	}
	if r.MedicineID != nil {
		dto.Medicine = &MedicineRef{ID: *r.MedicineID}
		if r.Medicine != nil {
			dto.Medicine.Name = r.Medicine.Name
		}
	}
	return dto
}

type CreateInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

type Featured struct {
	Reviews       []ReviewDTO `json:"reviews"`
	TotalReviews  int64       `json:"totalReviews"`
	AverageRating float64     `json:"averageRating"`
}

type PageInfo struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalReviews int64 `json:"totalReviews"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

type MedicineReviews struct {
	Reviews    []ReviewDTO `json:"reviews"`
	Pagination PageInfo    `json:"pagination"`
}

type StarCount struct {
	Stars      int `json:"stars"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

type Stats struct {
	AverageRating      float64     `json:"averageRating"`
	TotalReviews       int         `json:"totalReviews"`
	RatingDistribution []StarCount `json:"ratingDistribution"`
}
