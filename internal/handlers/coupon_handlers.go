package handlers

import (
	"net/http"

	"dinedash/internal/common"
	"dinedash/internal/models"
	"dinedash/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CouponHandlers handles HTTP requests for restaurant coupons
type CouponHandlers struct {
	couponService services.CouponService
}

func NewCouponHandlers(couponService services.CouponService) *CouponHandlers {
	return &CouponHandlers{couponService: couponService}
}

// CouponResolutionResponse is the public view of a coupon lookup.
type CouponResolutionResponse struct {
	Code         string    `json:"code"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Status       string    `json:"status"`
	Percentage   int       `json:"percentage,omitempty"`
}

func restaurantParam(c echo.Context) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param("restaurantId"), "restaurantId")
	if err != nil {
		return uuid.Nil, common.Validation("parse restaurant", "%s", err.Error())
	}
	return id, nil
}

// canManage reports whether p may change coupons of restaurantID.
func canManage(p common.Principal, restaurantID uuid.UUID) bool {
	return p.Role == models.RoleAdmin || (p.Role == models.RoleOwner && p.OwnsRestaurant(restaurantID))
}

// ResolveCoupon handles GET /v1/restaurants/:restaurantId/coupons/:code
func (h *CouponHandlers) ResolveCoupon(c echo.Context) error {
	restaurantID, err := restaurantParam(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	res, err := h.couponService.Resolve(c.Request().Context(), c.Param("code"), restaurantID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if res.Outcome == models.CouponNotFound {
		return common.SendNotFoundError(c, "Coupon")
	}

	return c.JSON(http.StatusOK, CouponResolutionResponse{
		Code:         models.NormalizeCouponCode(c.Param("code")),
		RestaurantID: restaurantID,
		Status:       res.Outcome.String(),
		Percentage:   res.Percentage,
	})
}

// ListCoupons handles GET /v1/restaurants/:restaurantId/coupons
func (h *CouponHandlers) ListCoupons(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	restaurantID, err := restaurantParam(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !canManage(p, restaurantID) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	coupons, err := h.couponService.List(c.Request().Context(), restaurantID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, coupons)
}

// CreateCoupon handles POST /v1/restaurants/:restaurantId/coupons
func (h *CouponHandlers) CreateCoupon(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	restaurantID, err := restaurantParam(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !canManage(p, restaurantID) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var req struct {
		Code       string `json:"code"`
		Percentage int    `json:"percentage"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	coupon, err := h.couponService.Create(c.Request().Context(), req.Code, restaurantID, req.Percentage)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, coupon)
}

// DeactivateCoupon handles DELETE /v1/restaurants/:restaurantId/coupons/:code
func (h *CouponHandlers) DeactivateCoupon(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}
	restaurantID, err := restaurantParam(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !canManage(p, restaurantID) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	coupon, err := h.couponService.Deactivate(c.Request().Context(), c.Param("code"), restaurantID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, coupon)
}

// RegisterRoutes mounts the coupon endpoints on g. writeMW wraps the
// mutating routes.
func (h *CouponHandlers) RegisterRoutes(g *echo.Group, writeMW ...echo.MiddlewareFunc) {
	g.GET("/restaurants/:restaurantId/coupons/:code", h.ResolveCoupon)
	g.GET("/restaurants/:restaurantId/coupons", h.ListCoupons)
	g.POST("/restaurants/:restaurantId/coupons", h.CreateCoupon, writeMW...)
	g.DELETE("/restaurants/:restaurantId/coupons/:code", h.DeactivateCoupon, writeMW...)
}
