package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dinedash/internal/common"
	"dinedash/internal/logger"
	"dinedash/internal/models"
	"dinedash/internal/repositories"

	"github.com/google/uuid"
)

// CouponService resolves and manages restaurant-scoped discount coupons.
type CouponService interface {
	// Resolve never fails for an unknown code; absence is the
	// CouponNotFound outcome.
	Resolve(ctx context.Context, code string, restaurantID uuid.UUID) (*models.CouponResolution, error)
	Create(ctx context.Context, code string, restaurantID uuid.UUID, percentage int) (*models.Coupon, error)
	Deactivate(ctx context.Context, code string, restaurantID uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, restaurantID uuid.UUID) ([]*models.Coupon, error)
}

type couponService struct {
	repo repositories.CouponRepository
	log  *logger.Logger
	now  func() time.Time
}

func NewCouponService(repo repositories.CouponRepository, log *logger.Logger) CouponService {
	return &couponService{repo: repo, log: log, now: time.Now}
}

func (s *couponService) Resolve(ctx context.Context, code string, restaurantID uuid.UUID) (*models.CouponResolution, error) {
	code = models.NormalizeCouponCode(code)
	if code == "" {
		return &models.CouponResolution{Outcome: models.CouponNotFound}, nil
	}

	coupon, err := s.repo.GetByCode(ctx, restaurantID, code)
	if errors.Is(err, common.ErrNotFound) {
		return &models.CouponResolution{Outcome: models.CouponNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve coupon: %w", err)
	}

	if !coupon.IsActive() {
		return &models.CouponResolution{Outcome: models.CouponFoundInactive, Coupon: coupon}, nil
	}
	return &models.CouponResolution{Outcome: models.CouponFoundActive, Percentage: coupon.Percentage, Coupon: coupon}, nil
}

func (s *couponService) Create(ctx context.Context, code string, restaurantID uuid.UUID, percentage int) (*models.Coupon, error) {
	code = models.NormalizeCouponCode(code)
	if code == "" {
		return nil, common.Validation("create coupon", "coupon code is required")
	}
	if percentage < 1 || percentage > 100 {
		return nil, common.Validation("create coupon", "percentage must be between 1 and 100, got %d", percentage)
	}

	saved, reactivated, err := s.repo.CreateOrReactivate(ctx, &models.Coupon{
		ID:           uuid.New(),
		Code:         code,
		Percentage:   percentage,
		RestaurantID: restaurantID,
		Status:       models.CouponActive,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	msg := "coupon created"
	if reactivated {
		msg = "coupon reactivated"
	}
	s.log.Info(ctx, "coupon_created", msg,
		slog.String("coupon_id", saved.ID.String()),
		slog.String("code", saved.Code),
		slog.String("restaurant_id", restaurantID.String()),
		slog.Int("percentage", saved.Percentage))
	return saved, nil
}

func (s *couponService) Deactivate(ctx context.Context, code string, restaurantID uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.Deactivate(ctx, restaurantID, models.NormalizeCouponCode(code))
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "coupon_deactivated", "coupon deactivated",
		slog.String("coupon_id", coupon.ID.String()),
		slog.String("restaurant_id", restaurantID.String()))
	return coupon, nil
}

func (s *couponService) List(ctx context.Context, restaurantID uuid.UUID) ([]*models.Coupon, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID)
}
