package handlers

import (
	"net/http"
	"strconv"

	"dinedash/internal/common"
	"dinedash/internal/models"
	"dinedash/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService    services.OrderServiceInterface
	defaultPageSize int
	maxPageSize     int
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface, defaultPageSize, maxPageSize int) *OrderHandlers {
	return &OrderHandlers{
		orderService:    orderService,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func principalFrom(c echo.Context) (common.Principal, error) {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return p, nil
}

// loadVisibleOrder fetches the order and hides it from principals that have
// no business seeing it.
func (h *OrderHandlers) loadVisibleOrder(c echo.Context, p common.Principal) (*models.Order, error) {
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return nil, common.Validation("get order", "%s", err.Error())
	}
	order, err := h.orderService.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case models.RoleAdmin:
		return order, nil
	case models.RoleOwner:
		if p.OwnsRestaurant(order.RestaurantID) {
			return order, nil
		}
	case models.RoleCustomer:
		if order.CustomerID == p.ID {
			return order, nil
		}
	}
	return nil, common.NotFound("get order", "order %s not found", orderID)
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req services.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.CustomerID = p.ID

	order, err := h.orderService.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /v1/orders. Customers see their own orders; admins
// pass customer_id.
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	customerID := p.ID
	switch p.Role {
	case models.RoleCustomer:
	case models.RoleAdmin:
		customerID, err = common.ValidateUUID(c.QueryParam("customer_id"), "customer_id")
		if err != nil {
			return common.SendValidationError(c, "customer_id", err.Error())
		}
	default:
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	page, limit := 1, 0
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			return common.SendValidationError(c, "page", "must be an integer")
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return common.SendValidationError(c, "limit", "must be an integer")
		}
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), customerID,
		common.NormalizePage(page, limit, h.defaultPageSize, h.maxPageSize))
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	order, err := h.loadVisibleOrder(c, p)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrderStatus handles GET /v1/orders/:id/status
func (h *OrderHandlers) GetOrderStatus(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	order, err := h.loadVisibleOrder(c, p)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	status, err := h.orderService.GetOrderStatus(c.Request().Context(), order.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// GetOrderHistory handles GET /v1/orders/:id/history
func (h *OrderHandlers) GetOrderHistory(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	order, err := h.loadVisibleOrder(c, p)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	history, err := h.orderService.GetOrderHistory(c.Request().Context(), order.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

// UpdateOrderStatus handles PATCH /v1/orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	target, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return common.SendValidationError(c, "status", err.Error())
	}

	order, err := h.loadVisibleOrder(c, p)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	updated, err := h.orderService.UpdateOrderStatus(c.Request().Context(), order.ID, target, p.Role)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// RegisterRoutes mounts the order endpoints on g. createMW wraps only the
// creation route.
func (h *OrderHandlers) RegisterRoutes(g *echo.Group, createMW ...echo.MiddlewareFunc) {
	g.POST("/orders", h.CreateOrder, createMW...)
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:id", h.GetOrder)
	g.GET("/orders/:id/status", h.GetOrderStatus)
	g.GET("/orders/:id/history", h.GetOrderHistory)
	g.PATCH("/orders/:id/status", h.UpdateOrderStatus)
}
