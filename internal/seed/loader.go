package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Summary counts the rows created by a load; existing rows are skipped.
type Summary struct {
	Users      int
	Categories int
	Medicines  int
	Banners    int
	HeroSlides int
	Coupons    int
}

// Loader writes a Fixture idempotently, keyed on each record's natural key:
// user email, category name, medicine name per seller, banner and slide title,
// coupon code.
type Loader struct {
	tx   txRunner
	logg *logger.Logger
}

func NewLoader(tx txRunner, logg *logger.Logger) (*Loader, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Loader{tx: tx, logg: logg}, nil
}

func (l *Loader) Load(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sum = Summary{}
		users := map[string]models.User{}
		for _, u := range f.Users {
			row, created, err := l.user(tx, u)
			if err != nil {
				return err
			}
			users[row.Email] = row
			sum.Users += boolInt(created)
		}
		categories := map[string]models.Category{}
		for _, c := range f.Categories {
			row, created, err := l.category(tx, c)
			if err != nil {
				return err
			}
			categories[strings.ToLower(row.Name)] = row
			sum.Categories += boolInt(created)
		}
		medicines := map[string]models.Medicine{}
		for _, m := range f.Medicines {
			row, created, err := l.medicine(tx, m, users, categories)
			if err != nil {
				return err
			}
			medicines[strings.ToLower(row.Name)] = row
			sum.Medicines += boolInt(created)
		}
		for _, b := range f.Banners {
			created, err := l.banner(tx, b)
			if err != nil {
				return err
			}
			sum.Banners += boolInt(created)
		}
		for _, h := range f.HeroSlides {
			created, err := l.heroSlide(tx, h, medicines)
			if err != nil {
				return err
			}
			sum.HeroSlides += boolInt(created)
		}
		for _, c := range f.Coupons {
			created, err := l.coupon(tx, c, users)
			if err != nil {
				return err
			}
			sum.Coupons += boolInt(created)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	ctx = l.logg.WithFields(ctx, map[string]any{
		"users":       sum.Users,
		"categories":  sum.Categories,
		"medicines":   sum.Medicines,
		"banners":     sum.Banners,
		"hero_slides": sum.HeroSlides,
		"coupons":     sum.Coupons,
	})
	l.logg.Info(ctx, "seed.loaded")
	return sum, nil
}

func (l *Loader) user(tx *gorm.DB, in User) (models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return models.User{}, false, fmt.Errorf("seed user missing email")
	}
	role := enums.UserRoleUser
	if in.Role != "" {
		parsed, err := enums.ParseUserRole(strings.ToLower(in.Role))
		if err != nil {
			return models.User{}, false, fmt.Errorf("seed user %s: %w", email, err)
		}
		role = parsed
	}
	name := in.Name
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	row := models.User{Name: name, Email: email, Role: role, IsActive: true}
	created, err := firstOrCreate(tx, &row, "email = ?", email)
	return row, created, err
}

func (l *Loader) category(tx *gorm.DB, in Category) (models.Category, bool, error) {
	if in.Name == "" {
		return models.Category{}, false, fmt.Errorf("seed category missing name")
	}
	row := models.Category{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		Icon:        defaultString(in.Icon, "Pill"),
		Color:       defaultString(in.Color, "cyan"),
		IsActive:    true,
	}
	created, err := firstOrCreate(tx, &row, "LOWER(name) = ?", strings.ToLower(in.Name))
	return row, created, err
}

func (l *Loader) medicine(tx *gorm.DB, in Medicine, users map[string]models.User, categories map[string]models.Category) (models.Medicine, bool, error) {
	seller, ok := users[strings.ToLower(in.Seller)]
	if !ok {
		return models.Medicine{}, false, fmt.Errorf("seed medicine %q: unknown seller %q", in.Name, in.Seller)
	}
	category, ok := categories[strings.ToLower(in.Category)]
	if !ok {
		return models.Medicine{}, false, fmt.Errorf("seed medicine %q: unknown category %q", in.Name, in.Category)
	}
	row := models.Medicine{
		Name:               in.Name,
		GenericName:        in.GenericName,
		Description:        in.Description,
		Image:              in.Image,
		CategoryID:         category.ID,
		SellerID:           seller.ID,
		Company:            in.Company,
		MassUnit:           in.MassUnit,
		Price:              money.FromFloat(in.Price),
		DiscountPercentage: money.FromFloat(in.DiscountPercentage),
		DiscountStartDate:  in.DiscountStartDate,
		DiscountEndDate:    in.DiscountEndDate,
		InStock:            in.StockQuantity > 0,
		StockQuantity:      in.StockQuantity,
		IsAdvertised:       in.IsAdvertised,
	}
	created, err := firstOrCreate(tx, &row, "name = ? AND seller_id = ?", in.Name, seller.ID)
	return row, created, err
}

func (l *Loader) banner(tx *gorm.DB, in Banner) (bool, error) {
	row := models.Banner{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Link:        defaultString(in.Link, "#"),
		Active:      true,
		Order:       in.Order,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	return firstOrCreate(tx, &row, "title = ?", in.Title)
}

func (l *Loader) heroSlide(tx *gorm.DB, in HeroSlide, medicines map[string]models.Medicine) (bool, error) {
	row := models.HeroSlide{
		Title:           in.Title,
		Subtitle:        in.Subtitle,
		Description:     in.Description,
		Image:           in.Image,
		ButtonText:      in.ButtonText,
		ButtonLink:      defaultString(in.ButtonLink, "#"),
		Active:          true,
		BackgroundColor: "from-cyan-500 to-blue-500",
		LightBackground: "from-cyan-50 to-blue-50",
		TextColor:       "text-white",
		LightTextColor:  "text-gray-900",
		Order:           in.Order,
	}
	if in.FeaturedMedicine != "" {
		med, ok := medicines[strings.ToLower(in.FeaturedMedicine)]
		if !ok {
			return false, fmt.Errorf("seed hero slide %q: unknown medicine %q", in.Title, in.FeaturedMedicine)
		}
		row.FeaturedMedicineID = &med.ID
	}
	return firstOrCreate(tx, &row, "title = ?", in.Title)
}

func (l *Loader) coupon(tx *gorm.DB, in Coupon, users map[string]models.User) (bool, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return false, fmt.Errorf("seed coupon missing code")
	}
	if !in.StartDate.Before(in.EndDate) {
		return false, fmt.Errorf("seed coupon %s: start date must be before end date", code)
	}
	creator, ok := users[strings.ToLower(in.CreatedBy)]
	if !ok {
		return false, fmt.Errorf("seed coupon %s: unknown creator %q", code, in.CreatedBy)
	}
	kind := enums.DiscountTypePercentage
	if in.DiscountType != "" {
		parsed, err := enums.ParseDiscountType(strings.ToLower(in.DiscountType))
		if err != nil {
			return false, fmt.Errorf("seed coupon %s: %w", code, err)
		}
		kind = parsed
	}
	row := models.Coupon{
		Code:               code,
		DiscountType:       kind,
		DiscountValue:      money.FromFloat(in.DiscountValue),
		MinimumOrderAmount: money.FromFloat(in.MinimumOrderAmount),
		UsageLimit:         in.UsageLimit,
		StartDate:          in.StartDate.UTC(),
		EndDate:            in.EndDate.UTC(),
		IsActive:           true,
		CreatedBy:          creator.ID,
	}
	if in.MaximumDiscountAmount != nil {
		row.MaximumDiscountAmount = decimal.NewNullDecimal(money.FromFloat(*in.MaximumDiscountAmount))
	}
	return firstOrCreate(tx, &row, "code = ?", code)
}

// firstOrCreate loads the row matching the query into dest, or inserts dest.
func firstOrCreate(tx *gorm.DB, dest any, query string, args ...any) (bool, error) {
	res := tx.Where(query, args...).Limit(1).Find(dest)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := tx.Create(dest).Error; err != nil {
		return false, err
	}
	return true, nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
