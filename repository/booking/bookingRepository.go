// repository/booking/repo.go
package bookingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaqsi1990/cloth-sub001/model"
	"github.com/vaqsi1990/cloth-sub001/service/rental"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so the read queries
// serve the plain store and open transactions alike.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct{ db dbtx }

type repo struct {
	queries
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) rental.Store {
	return &repo{queries: queries{db: pool}, pool: pool}
}

func (r *repo) Begin(ctx context.Context) (rental.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txStore{queries: queries{db: tx}, tx: tx}, nil
}

type txStore struct {
	queries
	tx pgx.Tx
}

func (t *txStore) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *txStore) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func norows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return rental.ErrNoRecord
	}
	return err
}

// Items & variants

const itemCols = `id, seller_id, name, status, rentable, created_at`

func scanItem(row pgx.Row) (*model.Item, error) {
	it := &model.Item{}
	err := row.Scan(&it.ID, &it.SellerID, &it.Name, &it.Status, &it.Rentable, &it.CreatedAt)
	if err != nil {
		return nil, norows(err)
	}
	return it, nil
}

func (q queries) Item(ctx context.Context, id int64) (*model.Item, error) {
	return scanItem(q.db.QueryRow(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE id = $1`, id))
}

func (q queries) ItemForUpdate(ctx context.Context, id int64) (*model.Item, error) {
	// Serializes all bookings of one item behind this lock.
	return scanItem(q.db.QueryRow(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE id = $1
		FOR UPDATE`, id))
}

func (q queries) Variant(ctx context.Context, id int64) (*model.ItemVariant, error) {
	v := &model.ItemVariant{}
	err := q.db.QueryRow(ctx, `
		SELECT id, item_id, label
		FROM item_variants
		WHERE id = $1`, id).
		Scan(&v.ID, &v.ItemID, &v.Label)
	if err != nil {
		return nil, norows(err)
	}
	return v, nil
}

func (q queries) SetItemStatus(ctx context.Context, itemID int64, status model.ItemStatus) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE items
		SET status = $2
		WHERE id = $1`, itemID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return rental.ErrNoRecord
	}
	return nil
}

// Renters

func (q queries) RenterBlocked(ctx context.Context, renterID int64) (bool, error) {
	var blocked bool
	err := q.db.QueryRow(ctx, `
		SELECT blocked
		FROM users
		WHERE id = $1`, renterID).Scan(&blocked)
	if err != nil {
		return false, norows(err)
	}
	return blocked, nil
}

// Bookings

const bookingCols = `id, item_id, variant_id, renter_id, start_date, end_date,
	status, price_per_day, total_price, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	b := &model.Booking{}
	err := row.Scan(&b.ID, &b.ItemID, &b.VariantID, &b.RenterID, &b.StartDate, &b.EndDate,
		&b.Status, &b.PricePerDay, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, norows(err)
	}
	return b, nil
}

func (q queries) Booking(ctx context.Context, id int64) (*model.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE id = $1`, id))
}

func (q queries) BookingForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE id = $1
		FOR UPDATE`, id))
}

func (q queries) InsertBooking(ctx context.Context, b *model.Booking) error {
	return q.db.QueryRow(ctx, `
		INSERT INTO bookings
			(item_id, variant_id, renter_id, start_date, end_date, status, price_per_day, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		b.ItemID, b.VariantID, b.RenterID, b.StartDate, b.EndDate, b.Status, b.PricePerDay, b.TotalPrice).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (q queries) UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE bookings
		SET status = $2,
			updated_at = NOW()
		WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return rental.ErrNoRecord
	}
	return nil
}

func (q queries) UpdateBookingDates(ctx context.Context, id int64, start, end time.Time, totalPrice float64) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE bookings
		SET start_date = $2,
			end_date = $3,
			total_price = $4,
			updated_at = NOW()
		WHERE id = $1`, id, start, end, totalPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return rental.ErrNoRecord
	}
	return nil
}

func (q queries) BusyBookings(ctx context.Context, itemID int64, variantID *int64, excludeID int64) ([]model.Booking, error) {
	// A booking without a variant occupies the whole item, so it blocks
	// every variant; one with a variant only blocks its own.
	rows, err := q.db.Query(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE item_id = $1
		AND status IN ('RESERVED', 'ACTIVE', 'LATE')
		AND ($2::bigint IS NULL OR variant_id IS NULL OR variant_id = $2)
		AND id <> $3
		ORDER BY start_date, id`, itemID, variantID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.ItemID, &b.VariantID, &b.RenterID, &b.StartDate, &b.EndDate,
			&b.Status, &b.PricePerDay, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q queries) ListBookings(ctx context.Context, f rental.ListFilter) ([]model.Booking, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE renter_id = $1
		AND ($2::bigint = 0 OR item_id = $2)
		AND ($3::text = '' OR status = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`,
		f.RenterID, f.ItemID, string(f.Status), f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.ItemID, &b.VariantID, &b.RenterID, &b.StartDate, &b.EndDate,
			&b.Status, &b.PricePerDay, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Order lines (shadow bookings)

func (q queries) BusyRentalLines(ctx context.Context, itemID int64, cutoff time.Time) ([]model.RentalLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT l.id, l.order_id, l.item_id, COALESCE(l.size, ''), l.start_date, l.end_date, o.status, l.created_at
		FROM order_items l
		JOIN orders o ON o.id = l.order_id
		WHERE l.item_id = $1
		AND o.status IN ('PENDING', 'PAID', 'SHIPPED')
		AND l.end_date >= $2
		ORDER BY l.start_date, l.id`, itemID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RentalLine
	for rows.Next() {
		var l model.RentalLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Size, &l.StartDate, &l.EndDate,
			&l.OrderStatus, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q queries) PurgeStaleRentalLines(ctx context.Context, itemID int64, before time.Time) (int64, error) {
	// Only stale lines go: interval already over, or parent order dead.
	// Live shadow bookings keep blocking the item (they are a real busy
	// source of their own).
	tag, err := q.db.Exec(ctx, `
		DELETE FROM order_items l
		USING orders o
		WHERE o.id = l.order_id
		AND l.item_id = $1
		AND (l.end_date < $2 OR o.status IN ('CANCELED', 'REFUNDED'))`, itemID, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Transactions

func (q queries) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	return q.db.QueryRow(ctx, `
		INSERT INTO transactions (type, booking_id, seller_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		t.Type, t.BookingID, t.SellerID, t.Amount).
		Scan(&t.ID, &t.CreatedAt)
}
