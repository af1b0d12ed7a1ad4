package services

import (
	"context"
	"time"

	"dinedash/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order, initial *models.OrderStatusHistory) error {
	args := m.Called(ctx, order, initial)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, customerID, limit, offset)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetStatus(ctx context.Context, id uuid.UUID) (*models.OrderStatusSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderStatusSnapshot), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, t models.StatusTransition) (*models.Order, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListHistory(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderStatusHistory), args.Error(1)
}

func (m *MockOrderRepository) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockMealRepository struct {
	mock.Mock
}

func (m *MockMealRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Meal, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.Meal), args.Error(1)
}

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, restaurantID uuid.UUID, code string) (*models.Coupon, error) {
	args := m.Called(ctx, restaurantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func (m *MockCouponRepository) CreateOrReactivate(ctx context.Context, coupon *models.Coupon) (*models.Coupon, bool, error) {
	args := m.Called(ctx, coupon)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Coupon), args.Bool(1), args.Error(2)
}

func (m *MockCouponRepository) Deactivate(ctx context.Context, restaurantID uuid.UUID, code string) (*models.Coupon, error) {
	args := m.Called(ctx, restaurantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func (m *MockCouponRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*models.Coupon, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]*models.Coupon), args.Error(1)
}
