package heroslides

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/medicines"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

func setup(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), medicines.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedMedicine(t *testing.T, conn *gorm.DB) models.Medicine {
	t.Helper()
	cat := models.Category{Name: "Cold", Description: "d", Image: "i"}
	require.NoError(t, conn.Create(&cat).Error)
	seller := models.User{Email: "seller@x.com", Name: "S"}
	require.NoError(t, conn.Create(&seller).Error)
	m := models.Medicine{Name: "Vicks", CategoryID: cat.ID, SellerID: seller.ID, Price: decimal.RequireFromString("12.50")}
	require.NoError(t, conn.Create(&m).Error)
	return m
}

func baseInput() CreateInput {
	return CreateInput{Title: "Winter", Subtitle: "Stay warm", Description: "deals", Image: "w.png", ButtonText: "Shop"}
}

func TestCreateAppliesStyleDefaults(t *testing.T) {
	svc, _ := setup(t)

	slide, err := svc.Create(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, "#", slide.ButtonLink)
	assert.Equal(t, "from-cyan-500 to-blue-500", slide.BackgroundColor)
	assert.Equal(t, "from-cyan-50 to-blue-50", slide.LightBackground)
	assert.Equal(t, "text-white", slide.TextColor)
	assert.Equal(t, "text-gray-900", slide.LightTextColor)
	assert.True(t, slide.Active)
	assert.Nil(t, slide.FeaturedMedicine)
}

func TestCreateResolvesFeaturedMedicine(t *testing.T) {
	svc, conn := setup(t)
	m := seedMedicine(t, conn)

	in := baseInput()
	in.FeaturedMedicine = m.ID.String()
	slide, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, slide.FeaturedMedicine)
	assert.Equal(t, "Vicks", slide.FeaturedMedicine.Name)
	assert.Equal(t, 12.5, slide.FeaturedMedicine.Price)

	in.FeaturedMedicine = uuid.NewString()
	_, err = svc.Create(context.Background(), in)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestLiveSkipsInactiveAndOutOfWindow(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	expiredStart := now.Add(-48 * time.Hour)
	expiredEnd := now.Add(-24 * time.Hour)
	off := false

	visible := baseInput()
	_, err := svc.Create(ctx, visible)
	require.NoError(t, err)

	expired := baseInput()
	expired.StartDate, expired.EndDate = &expiredStart, &expiredEnd
	_, err = svc.Create(ctx, expired)
	require.NoError(t, err)

	hidden := baseInput()
	hidden.Active = &off
	_, err = svc.Create(ctx, hidden)
	require.NoError(t, err)

	live, err := svc.Live(ctx)
	require.NoError(t, err)
	assert.Len(t, live, 1)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateToggleDelete(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	slide, err := svc.Create(ctx, baseInput())
	require.NoError(t, err)

	subtitle := "Now cheaper"
	updated, err := svc.Update(ctx, slide.ID, UpdateInput{Subtitle: &subtitle})
	require.NoError(t, err)
	assert.Equal(t, subtitle, updated.Subtitle)

	toggled, err := svc.ToggleStatus(ctx, slide.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	require.NoError(t, svc.Delete(ctx, slide.ID))
	_, err = svc.Get(ctx, slide.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
