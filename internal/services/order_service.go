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

// OrderServiceInterface is the order lifecycle: creation with pricing, reads,
// and authorized status changes.
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, customerID uuid.UUID, page models.Page) ([]*models.Order, error)
	GetOrderStatus(ctx context.Context, orderID uuid.UUID) (*models.OrderStatusSnapshot, error)
	GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusHistory, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, target models.OrderStatus, role models.Role) (*models.Order, error)
	// ConfirmDeliveredBefore moves up to limit orders delivered before cutoff
	// to received on behalf of the platform. It returns how many moved.
	ConfirmDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// LineItemRequest is one requested meal and quantity.
type LineItemRequest struct {
	MealID   uuid.UUID `json:"meal_id"`
	Quantity int       `json:"quantity"`
}

// CreateOrderRequest carries everything the caller may supply. The
// restaurant is always derived from the meals.
type CreateOrderRequest struct {
	CustomerID uuid.UUID         `json:"-"`
	Items      []LineItemRequest `json:"items"`
	CouponCode *string           `json:"coupon_code,omitempty"`
	TipAmount  models.Money      `json:"tip_amount"`
}

type orderService struct {
	orderRepo  repositories.OrderRepository
	mealRepo   repositories.MealRepository
	coupons    CouponService
	authorizer StatusAuthorizer
	log        *logger.Logger
	now        func() time.Time
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	mealRepo repositories.MealRepository,
	coupons CouponService,
	authorizer StatusAuthorizer,
	log *logger.Logger,
) OrderServiceInterface {
	return &orderService{
		orderRepo:  orderRepo,
		mealRepo:   mealRepo,
		coupons:    coupons,
		authorizer: authorizer,
		log:        log,
		now:        time.Now,
	}
}

// clock returns the current time at storage precision.
func (s *orderService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	const op = "create order"

	if len(req.Items) == 0 {
		return nil, common.Validation(op, "order must contain at least one item")
	}
	if req.TipAmount < 0 {
		return nil, common.Validation(op, "tip amount cannot be negative")
	}
	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, common.Validation(op, "quantity for meal %s must be at least 1", it.MealID)
		}
		if !seen[it.MealID] {
			seen[it.MealID] = true
			ids = append(ids, it.MealID)
		}
	}

	meals, err := s.mealRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orderID := uuid.New()
	items := make([]models.OrderItem, 0, len(req.Items))
	var restaurantID uuid.UUID
	for i, it := range req.Items {
		meal, ok := meals[it.MealID]
		if !ok {
			return nil, common.NotFound(op, "meal %s not found", it.MealID)
		}
		if i == 0 {
			restaurantID = meal.RestaurantID
		} else if meal.RestaurantID != restaurantID {
			return nil, common.Conflict(op, "all items must come from the same restaurant")
		}
		items = append(items, models.OrderItem{
			ID:       uuid.New(),
			OrderID:  orderID,
			LineNo:   i + 1,
			MealID:   meal.ID,
			Title:    meal.Title,
			Quantity: it.Quantity,
			Price:    meal.Price,
		})
	}

	var discount *models.Discount
	if req.CouponCode != nil && models.NormalizeCouponCode(*req.CouponCode) != "" {
		code := models.NormalizeCouponCode(*req.CouponCode)
		res, err := s.coupons.Resolve(ctx, code, restaurantID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		switch res.Outcome {
		case models.CouponNotFound:
			return nil, common.Validation(op, "coupon %s does not exist for this restaurant", code)
		case models.CouponFoundInactive:
			return nil, common.Validation(op, "coupon %s is not active", code)
		}
		discount = &models.Discount{Percentage: res.Percentage, CouponCode: &code}
	}

	pct := 0
	if discount != nil {
		pct = discount.Percentage
	}
	totals, err := CalculateTotals(items, pct, req.TipAmount)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	order := &models.Order{
		ID:           orderID,
		CustomerID:   req.CustomerID,
		RestaurantID: restaurantID,
		Status:       models.StatusPlaced,
		TotalPrice:   totals.Total,
		TipAmount:    req.TipAmount,
		Discount:     discount,
		Version:      1,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	initial := &models.OrderStatusHistory{
		OrderID:   orderID,
		Status:    models.StatusPlaced,
		ChangedBy: models.RoleCustomer,
		ChangedAt: now,
	}

	if err := s.orderRepo.Create(ctx, order, initial); err != nil {
		s.log.Error(ctx, "order_create_failed", "failed to persist order", err,
			slog.String("order_id", orderID.String()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info(ctx, "order_created", "order placed",
		slog.String("order_id", orderID.String()),
		slog.String("customer_id", req.CustomerID.String()),
		slog.String("restaurant_id", restaurantID.String()),
		slog.String("subtotal", totals.Subtotal.String()),
		slog.String("discount", totals.Discount.String()),
		slog.String("total", totals.Total.String()))
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, customerID uuid.UUID, page models.Page) ([]*models.Order, error) {
	if page.Limit < 1 {
		return nil, common.Validation("list orders", "limit must be positive")
	}
	return s.orderRepo.ListByCustomer(ctx, customerID, page.Limit, page.Offset())
}

func (s *orderService) GetOrderStatus(ctx context.Context, orderID uuid.UUID) (*models.OrderStatusSnapshot, error) {
	return s.orderRepo.GetStatus(ctx, orderID)
}

func (s *orderService) GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusHistory, error) {
	if _, err := s.orderRepo.GetStatus(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListHistory(ctx, orderID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, target models.OrderStatus, role models.Role) (*models.Order, error) {
	current, err := s.orderRepo.GetStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if denied, ok := s.authorizer.Authorize(role, current.Status, target).(Denied); ok {
		s.log.Info(ctx, "order_transition_denied", denied.Reason,
			slog.String("order_id", orderID.String()),
			slog.String("role", string(role)),
			slog.String("from", string(current.Status)),
			slog.String("to", string(target)))
		return nil, denied.Err()
	}

	// History timestamps must never go backwards, even across clock skew.
	at := s.clock()
	if at.Before(current.UpdatedAt) {
		at = current.UpdatedAt
	}

	updated, err := s.orderRepo.TransitionStatus(ctx, models.StatusTransition{
		OrderID:         orderID,
		From:            current.Status,
		To:              target,
		ExpectedVersion: current.Version,
		ChangedBy:       role,
		At:              at,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "order_status_changed", "order status updated",
		slog.String("order_id", orderID.String()),
		slog.String("role", string(role)),
		slog.String("from", string(current.Status)),
		slog.String("to", string(target)),
		slog.Int("version", updated.Version))
	return updated, nil
}

func (s *orderService) ConfirmDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	ids, err := s.orderRepo.ListDeliveredBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("confirm delivered orders: %w", err)
	}

	confirmed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return confirmed, err
		}
		_, err := s.UpdateOrderStatus(ctx, id, models.StatusReceived, models.RoleAdmin)
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrInvalidTransition), errors.Is(err, common.ErrNotFound):
			// Moved by someone else since it was listed.
			continue
		default:
			return confirmed, err
		}
	}
	return confirmed, nil
}
