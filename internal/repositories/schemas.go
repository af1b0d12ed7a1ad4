package repositories

import (
	"fmt"
	"time"

	"dinedash/internal/casting"
	"dinedash/internal/models"

	"github.com/google/uuid"
)

var (
	orderColumns   = []string{"id", "customer_id", "restaurant_id", "status", "total_price", "tip_amount", "discount_percentage", "coupon_code", "version", "created_at", "updated_at"}
	itemColumns    = []string{"id", "order_id", "meal_id", "title", "quantity", "price", "line_no"}
	historyColumns = []string{"order_id", "status", "changed_by", "changed_at"}
	couponColumns  = []string{"id", "code", "percentage", "restaurant_id", "active", "created_at"}
	mealColumns    = []string{"id", "restaurant_id", "title", "price"}
)

func discountComposite() *casting.CompositeCodec[*models.Discount] {
	return casting.NewComposite[*models.Discount]("discount",
		[]string{"discount_percentage", "coupon_code"},
		casting.Record{"discount_percentage": 0, "coupon_code": (*string)(nil)},
		func(d *models.Discount) (casting.Record, error) {
			if d.Percentage < 0 || d.Percentage > 100 {
				return nil, fmt.Errorf("discount percentage %d out of range", d.Percentage)
			}
			return casting.Record{"discount_percentage": d.Percentage, "coupon_code": d.CouponCode}, nil
		},
		func(cols casting.Record) (*models.Discount, error) {
			pct, err := casting.Get[int](cols, "discount_percentage")
			if err != nil {
				return nil, err
			}
			code, err := casting.Get[*string](cols, "coupon_code")
			if err != nil {
				return nil, err
			}
			if pct == 0 && code == nil {
				return nil, nil
			}
			return &models.Discount{Percentage: pct, CouponCode: code}, nil
		},
	)
}

func couponStatusCodec() casting.Codec[models.CouponStatus, int16] {
	flag := casting.BoolInt()
	return casting.Funcs[models.CouponStatus, int16]{
		To: func(s models.CouponStatus) (int16, error) {
			switch s {
			case models.CouponActive:
				return flag.Serialize(true)
			case models.CouponInactive:
				return flag.Serialize(false)
			}
			return 0, fmt.Errorf("invalid coupon status %q", s)
		},
		From: func(v int16) (models.CouponStatus, error) {
			active, err := flag.Deserialize(v)
			if err != nil {
				return "", err
			}
			if active {
				return models.CouponActive, nil
			}
			return models.CouponInactive, nil
		},
	}
}

var (
	orderSchema = casting.NewSchema("orders",
		casting.Field("status", casting.Enum[models.OrderStatus](models.OrderStatus.Valid)),
		casting.Field("total_price", casting.Int64[models.Money]()),
		casting.Field("tip_amount", casting.Int64[models.Money]()),
		casting.Field("created_at", casting.TimeText()),
		casting.Field("updated_at", casting.TimeText()),
		casting.WithComposite(discountComposite()),
	)

	itemSchema = casting.NewSchema("order_items",
		casting.Field("price", casting.Int64[models.Money]()),
	)

	historySchema = casting.NewSchema("order_status_history",
		casting.Field("status", casting.Enum[models.OrderStatus](models.OrderStatus.Valid)),
		casting.Field("changed_by", casting.Enum[models.Role](validRole)),
		casting.Field("changed_at", casting.TimeText()),
	)

	couponSchema = casting.NewSchema("coupons",
		casting.Field("active", couponStatusCodec()),
		casting.Field("created_at", casting.TimeText()),
	)

	mealSchema = casting.NewSchema("meals",
		casting.Field("price", casting.Int64[models.Money]()),
	)
)

func validRole(r models.Role) bool {
	_, err := models.ParseRole(string(r))
	return err == nil
}

func orderRecord(o *models.Order) casting.Record {
	rec := casting.Record{
		"id":            o.ID,
		"customer_id":   o.CustomerID,
		"restaurant_id": o.RestaurantID,
		"status":        o.Status,
		"total_price":   o.TotalPrice,
		"tip_amount":    o.TipAmount,
		"version":       o.Version,
		"created_at":    o.CreatedAt,
		"updated_at":    o.UpdatedAt,
	}
	if o.Discount != nil {
		rec["discount"] = o.Discount
	}
	return rec
}

func orderFromRecord(rec casting.Record) (*models.Order, error) {
	var (
		o   models.Order
		err error
	)
	if o.ID, err = casting.Get[uuid.UUID](rec, "id"); err != nil {
		return nil, err
	}
	if o.CustomerID, err = casting.Get[uuid.UUID](rec, "customer_id"); err != nil {
		return nil, err
	}
	if o.RestaurantID, err = casting.Get[uuid.UUID](rec, "restaurant_id"); err != nil {
		return nil, err
	}
	if o.Status, err = casting.Get[models.OrderStatus](rec, "status"); err != nil {
		return nil, err
	}
	if o.TotalPrice, err = casting.Get[models.Money](rec, "total_price"); err != nil {
		return nil, err
	}
	if o.TipAmount, err = casting.Get[models.Money](rec, "tip_amount"); err != nil {
		return nil, err
	}
	if o.Discount, err = casting.Get[*models.Discount](rec, "discount"); err != nil {
		return nil, err
	}
	if o.Version, err = casting.Get[int](rec, "version"); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = casting.Get[time.Time](rec, "created_at"); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = casting.Get[time.Time](rec, "updated_at"); err != nil {
		return nil, err
	}
	return &o, nil
}

func itemRecord(it *models.OrderItem) casting.Record {
	return casting.Record{
		"id":       it.ID,
		"order_id": it.OrderID,
		"meal_id":  it.MealID,
		"title":    it.Title,
		"quantity": it.Quantity,
		"price":    it.Price,
		"line_no":  it.LineNo,
	}
}

func itemFromRecord(rec casting.Record) (*models.OrderItem, error) {
	var (
		it  models.OrderItem
		err error
	)
	if it.ID, err = casting.Get[uuid.UUID](rec, "id"); err != nil {
		return nil, err
	}
	if it.OrderID, err = casting.Get[uuid.UUID](rec, "order_id"); err != nil {
		return nil, err
	}
	if it.MealID, err = casting.Get[uuid.UUID](rec, "meal_id"); err != nil {
		return nil, err
	}
	if it.Title, err = casting.Get[string](rec, "title"); err != nil {
		return nil, err
	}
	if it.Quantity, err = casting.Get[int](rec, "quantity"); err != nil {
		return nil, err
	}
	if it.Price, err = casting.Get[models.Money](rec, "price"); err != nil {
		return nil, err
	}
	if it.LineNo, err = casting.Get[int](rec, "line_no"); err != nil {
		return nil, err
	}
	return &it, nil
}

func historyRecord(h *models.OrderStatusHistory) casting.Record {
	return casting.Record{
		"order_id":   h.OrderID,
		"status":     h.Status,
		"changed_by": h.ChangedBy,
		"changed_at": h.ChangedAt,
	}
}

func historyFromRecord(rec casting.Record) (*models.OrderStatusHistory, error) {
	var (
		h   models.OrderStatusHistory
		err error
	)
	if h.ID, err = casting.Get[int64](rec, "id"); err != nil {
		return nil, err
	}
	if h.OrderID, err = casting.Get[uuid.UUID](rec, "order_id"); err != nil {
		return nil, err
	}
	if h.Status, err = casting.Get[models.OrderStatus](rec, "status"); err != nil {
		return nil, err
	}
	if h.ChangedBy, err = casting.Get[models.Role](rec, "changed_by"); err != nil {
		return nil, err
	}
	if h.ChangedAt, err = casting.Get[time.Time](rec, "changed_at"); err != nil {
		return nil, err
	}
	return &h, nil
}

func couponRecord(c *models.Coupon) casting.Record {
	return casting.Record{
		"id":            c.ID,
		"code":          c.Code,
		"percentage":    c.Percentage,
		"restaurant_id": c.RestaurantID,
		"active":        c.Status,
		"created_at":    c.CreatedAt,
	}
}

func couponFromRecord(rec casting.Record) (*models.Coupon, error) {
	var (
		c   models.Coupon
		err error
	)
	if c.ID, err = casting.Get[uuid.UUID](rec, "id"); err != nil {
		return nil, err
	}
	if c.Code, err = casting.Get[string](rec, "code"); err != nil {
		return nil, err
	}
	if c.Percentage, err = casting.Get[int](rec, "percentage"); err != nil {
		return nil, err
	}
	if c.RestaurantID, err = casting.Get[uuid.UUID](rec, "restaurant_id"); err != nil {
		return nil, err
	}
	if c.Status, err = casting.Get[models.CouponStatus](rec, "active"); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = casting.Get[time.Time](rec, "created_at"); err != nil {
		return nil, err
	}
	return &c, nil
}

func mealFromRecord(rec casting.Record) (*models.Meal, error) {
	var (
		m   models.Meal
		err error
	)
	if m.ID, err = casting.Get[uuid.UUID](rec, "id"); err != nil {
		return nil, err
	}
	if m.RestaurantID, err = casting.Get[uuid.UUID](rec, "restaurant_id"); err != nil {
		return nil, err
	}
	if m.Title, err = casting.Get[string](rec, "title"); err != nil {
		return nil, err
	}
	if m.Price, err = casting.Get[models.Money](rec, "price"); err != nil {
		return nil, err
	}
	return &m, nil
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		id, customerID, restaurantID uuid.UUID
		status                       string
		total, tip                   int64
		pct, version                 int
		code                         *string
		createdAt, updatedAt         string
	)
	if err := row.Scan(&id, &customerID, &restaurantID, &status, &total, &tip, &pct, &code, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec, err := orderSchema.Deserialize(casting.Record{
		"id": id, "customer_id": customerID, "restaurant_id": restaurantID,
		"status": status, "total_price": total, "tip_amount": tip,
		"discount_percentage": pct, "coupon_code": code, "version": version,
		"created_at": createdAt, "updated_at": updatedAt,
	})
	if err != nil {
		return nil, err
	}
	return orderFromRecord(rec)
}

func scanItem(row rowScanner) (*models.OrderItem, error) {
	var (
		id, orderID, mealID uuid.UUID
		title               string
		quantity, lineNo    int
		price               int64
	)
	if err := row.Scan(&id, &orderID, &mealID, &title, &quantity, &price, &lineNo); err != nil {
		return nil, err
	}
	rec, err := itemSchema.Deserialize(casting.Record{
		"id": id, "order_id": orderID, "meal_id": mealID, "title": title, "quantity": quantity, "price": price, "line_no": lineNo,
	})
	if err != nil {
		return nil, err
	}
	return itemFromRecord(rec)
}

func scanHistory(row rowScanner) (*models.OrderStatusHistory, error) {
	var (
		id                          int64
		orderID                     uuid.UUID
		status, changedBy, changedAt string
	)
	if err := row.Scan(&id, &orderID, &status, &changedBy, &changedAt); err != nil {
		return nil, err
	}
	rec, err := historySchema.Deserialize(casting.Record{
		"id": id, "order_id": orderID, "status": status, "changed_by": changedBy, "changed_at": changedAt,
	})
	if err != nil {
		return nil, err
	}
	return historyFromRecord(rec)
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var (
		id, restaurantID uuid.UUID
		code, createdAt  string
		percentage       int
		active           int16
	)
	if err := row.Scan(&id, &code, &percentage, &restaurantID, &active, &createdAt); err != nil {
		return nil, err
	}
	rec, err := couponSchema.Deserialize(casting.Record{
		"id": id, "code": code, "percentage": percentage, "restaurant_id": restaurantID,
		"active": active, "created_at": createdAt,
	})
	if err != nil {
		return nil, err
	}
	return couponFromRecord(rec)
}

func scanMeal(row rowScanner) (*models.Meal, error) {
	var (
		id, restaurantID uuid.UUID
		title            string
		price            int64
	)
	if err := row.Scan(&id, &restaurantID, &title, &price); err != nil {
		return nil, err
	}
	rec, err := mealSchema.Deserialize(casting.Record{
		"id": id, "restaurant_id": restaurantID, "title": title, "price": price,
	})
	if err != nil {
		return nil, err
	}
	return mealFromRecord(rec)
}

// rowValues serializes rec through schema and returns the named columns in
// order, ready to be passed as query arguments.
func rowValues(schema *casting.Schema, rec casting.Record, columns []string) ([]interface{}, error) {
	row, err := schema.Serialize(rec)
	if err != nil {
		return nil, err
	}
	return casting.Values(row, columns...)
}
