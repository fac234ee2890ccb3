package database

import (
	"context"
	"database/sql"
	"fmt"

	"itscare/internal/models"
)

const bookingColumns = `id, customer, phone, address, group_name, model, type, qty, scope,
	price_total, book_date, book_time, ampm, engineer, contractor,
	commission_rate, pay_method, paid, memo, created_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Customer, &b.Phone, &b.Address, &b.Group, &b.Model,
		&b.Type, &b.Qty, &b.Scope, &b.PriceTotal, &b.BookDate, &b.BookTime,
		&b.Meridiem, &b.Engineer, &b.Contractor, &b.CommissionRate,
		&b.PayMethod, &b.Paid, &b.Memo, &b.CreatedAt,
	)
	return b, err
}

// ListBookings returns the full collection, oldest registration first.
// This is the snapshot every derived view is computed from.
func (d *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at, id`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking fetches a single booking by id.
func (d *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(d.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

const insertBookingQuery = `INSERT INTO bookings (` + bookingColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertArgs(b *models.Booking) []any {
	return []any{
		b.ID, b.Customer, b.Phone, b.Address, b.Group, b.Model,
		string(b.Type), b.Qty, string(b.Scope), b.PriceTotal, b.BookDate,
		b.BookTime, string(b.Meridiem), b.Engineer, b.Contractor,
		b.CommissionRate, string(b.PayMethod), string(b.Paid), b.Memo,
		b.CreatedAt,
	}
}

// CreateBooking inserts one booking.
func (d *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	if _, err := d.db.ExecContext(ctx, insertBookingQuery, insertArgs(b)...); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// CreateBookings inserts an imported batch in one transaction.
// Import merge is additive: no dedup against existing records.
func (d *DB) CreateBookings(ctx context.Context, bookings []models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertBookingQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range bookings {
		if _, err := stmt.ExecContext(ctx, insertArgs(&bookings[i])...); err != nil {
			return fmt.Errorf("failed to insert imported booking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// UpdateBooking rewrites every mutable field of the booking with the
// given id; identity and registration timestamp are immutable.
func (d *DB) UpdateBooking(ctx context.Context, b *models.Booking) error {
	query := `UPDATE bookings SET
			customer = ?, phone = ?, address = ?, group_name = ?, model = ?,
			type = ?, qty = ?, scope = ?, price_total = ?, book_date = ?,
			book_time = ?, ampm = ?, engineer = ?, contractor = ?,
			commission_rate = ?, pay_method = ?, paid = ?, memo = ?
		WHERE id = ?`
	result, err := d.db.ExecContext(ctx, query,
		b.Customer, b.Phone, b.Address, b.Group, b.Model,
		string(b.Type), b.Qty, string(b.Scope), b.PriceTotal, b.BookDate,
		b.BookTime, string(b.Meridiem), b.Engineer, b.Contractor,
		b.CommissionRate, string(b.PayMethod), string(b.Paid), b.Memo,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireRow(result)
}

// SetPaid flips only the settlement status.
func (d *DB) SetPaid(ctx context.Context, id string, paid models.PaidStatus) error {
	result, err := d.db.ExecContext(ctx, `UPDATE bookings SET paid = ? WHERE id = ?`, string(paid), id)
	if err != nil {
		return fmt.Errorf("failed to set paid status: %w", err)
	}
	return requireRow(result)
}

// DeleteBooking removes one booking by id.
func (d *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireRow(result)
}

// DeleteAllBookings wipes the ledger. Only reachable through the
// explicit clear-all operation.
func (d *DB) DeleteAllBookings(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("failed to clear bookings: %w", err)
	}
	return nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
