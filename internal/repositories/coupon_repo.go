package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dinedash/internal/casting"
	"dinedash/internal/common"
	"dinedash/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CouponRepository interface {
	GetByCode(ctx context.Context, restaurantID uuid.UUID, code string) (*models.Coupon, error)
	// CreateOrReactivate inserts coupon, or reactivates an existing inactive
	// coupon with the same (restaurant, code) in place. An existing active
	// coupon is a conflict. reactivated reports which branch ran.
	CreateOrReactivate(ctx context.Context, coupon *models.Coupon) (saved *models.Coupon, reactivated bool, err error)
	Deactivate(ctx context.Context, restaurantID uuid.UUID, code string) (*models.Coupon, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*models.Coupon, error)
}

type couponRepo struct {
	db DB
}

func NewCouponRepo(db DB) CouponRepository {
	return &couponRepo{db: db}
}

var couponSelect = `SELECT ` + strings.Join(couponColumns, ", ") + ` FROM coupons`

func (r *couponRepo) GetByCode(ctx context.Context, restaurantID uuid.UUID, code string) (*models.Coupon, error) {
	coupon, err := scanCoupon(r.db.QueryRow(ctx, couponSelect+` WHERE restaurant_id = $1 AND code = $2`, restaurantID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("get coupon", "coupon %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return coupon, nil
}

func (r *couponRepo) CreateOrReactivate(ctx context.Context, coupon *models.Coupon) (*models.Coupon, bool, error) {
	insert, err := rowValues(couponSchema, couponRecord(coupon), couponColumns)
	if err != nil {
		return nil, false, err
	}
	active, err := rowValues(couponSchema, casting.Record{"active": models.CouponActive}, []string{"active"})
	if err != nil {
		return nil, false, err
	}

	var (
		saved       *models.Coupon
		reactivated bool
	)
	err = WithinTx(ctx, r.db, func(q Querier) error {
		existing, err := scanCoupon(q.QueryRow(ctx, couponSelect+`
			WHERE restaurant_id = $1 AND code = $2
			FOR UPDATE`, coupon.RestaurantID, coupon.Code))
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if _, err := q.Exec(ctx, `INSERT INTO coupons (`+strings.Join(couponColumns, ", ")+`) VALUES (`+placeholders(1, len(couponColumns))+`)`, insert...); err != nil {
				if isUniqueViolation(err) {
					return common.Conflict("create coupon", "coupon %s already exists for restaurant %s", coupon.Code, coupon.RestaurantID)
				}
				return fmt.Errorf("insert coupon: %w", err)
			}
			c := *coupon
			saved = &c
			return nil
		case err != nil:
			return fmt.Errorf("lock coupon: %w", err)
		case existing.IsActive():
			return common.Conflict("create coupon", "active coupon %s already exists for restaurant %s", coupon.Code, coupon.RestaurantID)
		}

		saved, err = scanCoupon(q.QueryRow(ctx, `
			UPDATE coupons
			SET active = $1, percentage = $2
			WHERE id = $3
			RETURNING `+strings.Join(couponColumns, ", "), active[0], coupon.Percentage, existing.ID))
		if err != nil {
			return fmt.Errorf("reactivate coupon: %w", err)
		}
		reactivated = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return saved, reactivated, nil
}

func (r *couponRepo) Deactivate(ctx context.Context, restaurantID uuid.UUID, code string) (*models.Coupon, error) {
	inactive, err := rowValues(couponSchema, casting.Record{"active": models.CouponInactive}, []string{"active"})
	if err != nil {
		return nil, err
	}
	coupon, err := scanCoupon(r.db.QueryRow(ctx, `
		UPDATE coupons
		SET active = $1
		WHERE restaurant_id = $2 AND code = $3
		RETURNING `+strings.Join(couponColumns, ", "), inactive[0], restaurantID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("deactivate coupon", "coupon %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("deactivate coupon: %w", err)
	}
	return coupon, nil
}

func (r *couponRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*models.Coupon, error) {
	rows, err := r.db.Query(ctx, couponSelect+`
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []*models.Coupon{}
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	return coupons, rows.Err()
}
