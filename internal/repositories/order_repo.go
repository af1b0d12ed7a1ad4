package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dinedash/internal/casting"
	"dinedash/internal/common"
	"dinedash/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	// Create writes the header, every item and the initial history entry
	// in one transaction.
	Create(ctx context.Context, order *models.Order, initial *models.OrderStatusHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*models.OrderStatusSnapshot, error)
	// TransitionStatus applies t only if the order still has t.From and
	// t.ExpectedVersion, and appends one history entry in the same
	// transaction. The returned order includes its items.
	TransitionStatus(ctx context.Context, t models.StatusTransition) (*models.Order, error)
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusHistory, error)
	ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

var orderSelect = `SELECT ` + strings.Join(orderColumns, ", ") + ` FROM orders`

func placeholders(start, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order, initial *models.OrderStatusHistory) error {
	header, err := rowValues(orderSchema, orderRecord(order), orderColumns)
	if err != nil {
		return err
	}
	history, err := rowValues(historySchema, historyRecord(initial), historyColumns)
	if err != nil {
		return err
	}
	items := make([][]interface{}, 0, len(order.Items))
	for i := range order.Items {
		order.Items[i].LineNo = i + 1
		args, err := rowValues(itemSchema, itemRecord(&order.Items[i]), itemColumns)
		if err != nil {
			return err
		}
		items = append(items, args)
	}

	return WithinTx(ctx, r.db, func(q Querier) error {
		headerSQL := `INSERT INTO orders (` + strings.Join(orderColumns, ", ") + `) VALUES (` + placeholders(1, len(orderColumns)) + `)`
		if _, err := q.Exec(ctx, headerSQL, header...); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		itemSQL := `INSERT INTO order_items (` + strings.Join(itemColumns, ", ") + `) VALUES (` + placeholders(1, len(itemColumns)) + `)`
		for _, args := range items {
			if _, err := q.Exec(ctx, itemSQL, args...); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		historySQL := `INSERT INTO order_status_history (` + strings.Join(historyColumns, ", ") + `) VALUES (` + placeholders(1, len(historyColumns)) + `)`
		if _, err := q.Exec(ctx, historySQL, history...); err != nil {
			return fmt.Errorf("insert order history: %w", err)
		}
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("get order", "order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.Items, err = listItems(ctx, r.db, id); err != nil {
		return nil, err
	}
	return order, nil
}

// listItems returns an order's lines in the order they were placed.
func listItems(ctx context.Context, q Querier, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT `+strings.Join(itemColumns, ", ")+`
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, orderSelect+`
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) GetStatus(ctx context.Context, id uuid.UUID) (*models.OrderStatusSnapshot, error) {
	var (
		status, updatedAt string
		version           int
	)
	err := r.db.QueryRow(ctx, `SELECT status, version, updated_at FROM orders WHERE id = $1`, id).Scan(&status, &version, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("get order status", "order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}

	rec, err := orderSchema.Deserialize(casting.Record{"status": status, "updated_at": updatedAt})
	if err != nil {
		return nil, err
	}
	snap := &models.OrderStatusSnapshot{OrderID: id, Version: version}
	if snap.Status, err = casting.Get[models.OrderStatus](rec, "status"); err != nil {
		return nil, err
	}
	if snap.UpdatedAt, err = casting.Get[time.Time](rec, "updated_at"); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *orderRepo) TransitionStatus(ctx context.Context, t models.StatusTransition) (*models.Order, error) {
	update, err := rowValues(orderSchema, casting.Record{"status": t.To, "updated_at": t.At}, []string{"status", "updated_at"})
	if err != nil {
		return nil, err
	}
	expected, err := rowValues(orderSchema, casting.Record{"status": t.From}, []string{"status"})
	if err != nil {
		return nil, err
	}
	history, err := rowValues(historySchema, historyRecord(&models.OrderStatusHistory{
		OrderID:   t.OrderID,
		Status:    t.To,
		ChangedBy: t.ChangedBy,
		ChangedAt: t.At,
	}), historyColumns)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = WithinTx(ctx, r.db, func(q Querier) error {
		args := append(update, t.OrderID, expected[0], t.ExpectedVersion)
		order, err := scanOrder(q.QueryRow(ctx, `
			UPDATE orders
			SET status = $1, updated_at = $2, version = version + 1
			WHERE id = $3 AND status = $4 AND version = $5
			RETURNING `+strings.Join(orderColumns, ", "), args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Conflict("update order status", "order %s was modified concurrently", t.OrderID)
		}
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		historySQL := `INSERT INTO order_status_history (` + strings.Join(historyColumns, ", ") + `) VALUES (` + placeholders(1, len(historyColumns)) + `)`
		if _, err := q.Exec(ctx, historySQL, history...); err != nil {
			return fmt.Errorf("insert order history: %w", err)
		}
		if order.Items, err = listItems(ctx, q, t.OrderID); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepo) ListHistory(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, status, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at DESC, id DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()

	entries := []*models.OrderStatusHistory{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListDeliveredBefore returns orders that have been delivered since before
// cutoff, oldest first.
func (r *orderRepo) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	args, err := rowValues(orderSchema, casting.Record{"status": models.StatusDelivered, "updated_at": cutoff}, []string{"status", "updated_at"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT id FROM orders
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list delivered orders: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
