package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, order_no, created_at, registration_id, event_id, order_point_id, status, assigned_user, note`

const itemColumns = `id, order_id, name, price, quantity, status, note`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, registrationID uuid.UUID, order *domain.Order) error {
	return withTx(ctx, r.db, func(tx Tx) error {
		var eventID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT event_id FROM registrations WHERE id = $1`, registrationID).Scan(&eventID)
		if err != nil {
			return notFound(err, "registration %s", registrationID)
		}

		// The row lock taken by UPDATE serializes concurrent creations for the same event.
		var orderNo int
		err = tx.QueryRow(ctx,
			`UPDATE events SET last_order_no = last_order_no + 1 WHERE id = $1 RETURNING last_order_no`,
			eventID,
		).Scan(&orderNo)
		if err != nil {
			return notFound(err, "event %s", eventID)
		}

		order.RegistrationID = registrationID
		order.EventID = eventID
		order.OrderNo = orderNo

		query := `
			INSERT INTO orders (id, order_no, created_at, registration_id, event_id, order_point_id,
			                    status, assigned_user, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = tx.Exec(ctx, query,
			order.ID, order.OrderNo, order.CreatedAt, order.RegistrationID, order.EventID,
			order.OrderPointID, order.Status, order.AssignedUser, order.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		itemQuery := `
			INSERT INTO order_items (id, order_id, position, name, price, quantity, status, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			_, err = tx.Exec(ctx, itemQuery,
				item.ID, item.OrderID, i, item.Name, item.Price, item.Quantity, item.Status, item.Note,
			)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "order %s", id)
	}

	if err := loadItems(ctx, r.db, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindItem(ctx context.Context, itemID uuid.UUID) (*domain.OrderItem, error) {
	item, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM order_items WHERE id = $1`, itemID))
	if err != nil {
		return nil, notFound(err, "order item %s", itemID)
	}
	return item, nil
}

func (r *orderRepository) Mutate(ctx context.Context, orderID uuid.UUID, fn interfaces.OrderMutation) (*domain.Order, error) {
	var result *domain.Order
	err := withTx(ctx, r.db, func(tx Tx) error {
		order, err := mutateLocked(ctx, tx, orderID, fn)
		result = order
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) MutateByItem(ctx context.Context, itemID uuid.UUID, fn interfaces.OrderMutation) (*domain.Order, error) {
	var result *domain.Order
	err := withTx(ctx, r.db, func(tx Tx) error {
		var orderID uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT order_id FROM order_items WHERE id = $1`, itemID).Scan(&orderID); err != nil {
			return notFound(err, "order item %s", itemID)
		}

		order, err := mutateLocked(ctx, tx, orderID, fn)
		result = order
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// mutateLocked loads the order FOR UPDATE, applies fn and writes back what changed.
func mutateLocked(ctx context.Context, tx Tx, orderID uuid.UUID, fn interfaces.OrderMutation) (*domain.Order, error) {
	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
	if err != nil {
		return nil, notFound(err, "order %s", orderID)
	}
	if err := loadItems(ctx, tx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	before := make(map[uuid.UUID]domain.ItemStatus, len(order.Items))
	for _, item := range order.Items {
		before[item.ID] = item.Status
	}

	if err := fn(order); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $1, assigned_user = $2 WHERE id = $3`,
		order.Status, order.AssignedUser, order.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	for _, item := range order.Items {
		if before[item.ID] == item.Status {
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE order_items SET status = $1 WHERE id = $2`, item.Status, item.ID); err != nil {
			return nil, fmt.Errorf("failed to update order item: %w", err)
		}
	}

	return order, nil
}

func (r *orderRepository) ListByEvent(ctx context.Context, eventID uuid.UUID, excluded []domain.OrderStatus) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE event_id = $1 AND NOT (status = ANY($2))
		ORDER BY order_no ASC
	`
	return r.queryOrders(ctx, query, eventID, statusStrings(excluded))
}

func (r *orderRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE registration_id = $1
		ORDER BY order_no DESC
	`
	return r.queryOrders(ctx, query, registrationID)
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY order_no DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	rows.Close()

	if err := loadItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems attaches items to the given orders with a single query.
func loadItems(ctx context.Context, q Querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := q.Query(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if owner, ok := byID[item.OrderID]; ok {
			owner.Items = append(owner.Items, *item)
		}
	}
	return rows.Err()
}

func scanOrder(row Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNo, &o.CreatedAt, &o.RegistrationID, &o.EventID, &o.OrderPointID,
		&o.Status, &o.AssignedUser, &o.Note,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row Row) (*domain.OrderItem, error) {
	var i domain.OrderItem
	if err := row.Scan(&i.ID, &i.OrderID, &i.Name, &i.Price, &i.Quantity, &i.Status, &i.Note); err != nil {
		return nil, err
	}
	return &i, nil
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
