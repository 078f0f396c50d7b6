package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `
    SELECT b.id, b.start_date, b.end_date, b.item_id, b.booker_id, b.status,
           i.name, i.owner_id, u.name
    FROM bookings b
    JOIN items i ON i.id = b.item_id
    JOIN users u ON u.id = b.booker_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_date, end_date, item_id, booker_id, status)
              VALUES (?, ?, ?, ?, ?)`

	result, err := db.ExecContext(ctx, query,
		fmtTime(booking.Start), fmtTime(booking.End),
		booking.ItemID, booking.BookerID, booking.Status)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, translateErr(err))
	}
	return booking, nil
}

// UpdateBookingStatus performs the WAITING -> terminal transition inside a
// transaction. The read-check-write keeps two concurrent approvals from both
// succeeding: the loser re-reads a non-WAITING status and fails.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current models.BookingStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read booking %d status: %w", id, translateErr(err))
	}
	if current != models.StatusWaiting {
		return fmt.Errorf("%w: booking already processed", domain.ErrInvalidRequest)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("failed to update booking %d status: %w", id, err)
	}

	return tx.Commit()
}

func (db *DB) GetBookerBookings(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error) {
	return db.getBookingsFor(ctx, "b.booker_id", bookerID, state, now, limit, offset)
}

func (db *DB) GetOwnerBookings(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error) {
	return db.getBookingsFor(ctx, "i.owner_id", ownerID, state, now, limit, offset)
}

func (db *DB) getBookingsFor(ctx context.Context, column string, userID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error) {
	where := fmt.Sprintf(" WHERE %s = ?", column)
	args := []any{userID}

	switch state {
	case models.StateAll:
	case models.StateCurrent:
		where += ` AND b.start_date <= ? AND b.end_date >= ?`
		args = append(args, fmtTime(now), fmtTime(now))
	case models.StatePast:
		where += ` AND b.end_date < ?`
		args = append(args, fmtTime(now))
	case models.StateFuture:
		where += ` AND b.start_date > ?`
		args = append(args, fmtTime(now))
	case models.StateWaiting, models.StateRejected:
		where += ` AND b.status = ?`
		args = append(args, string(state))
	default:
		return nil, fmt.Errorf("%w: unknown state: %s", domain.ErrInvalidRequest, state)
	}

	query := bookingSelect + where + ` ORDER BY b.start_date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return db.queryBookings(ctx, query, args...)
}

// GetLastApprovedBooking returns the approved booking of the item with the
// greatest start <= asOf, or nil when there is none.
func (db *DB) GetLastApprovedBooking(ctx context.Context, itemID int64, asOf time.Time) (*models.Booking, error) {
	query := bookingSelect + `
        WHERE b.item_id = ? AND b.status = ? AND b.start_date <= ?
        ORDER BY b.start_date DESC LIMIT 1`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, fmtTime(asOf)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking for item %d: %w", itemID, err)
	}
	return booking, nil
}

// GetNextApprovedBooking returns the approved booking of the item with the
// smallest start > asOf, or nil when there is none.
func (db *DB) GetNextApprovedBooking(ctx context.Context, itemID int64, asOf time.Time) (*models.Booking, error) {
	query := bookingSelect + `
        WHERE b.item_id = ? AND b.status = ? AND b.start_date > ?
        ORDER BY b.start_date ASC LIMIT 1`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, fmtTime(asOf)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking for item %d: %w", itemID, err)
	}
	return booking, nil
}

// GetPastApprovedBookings is the comment-eligibility query: approved bookings
// of the item by the user that already ended.
func (db *DB) GetPastApprovedBookings(ctx context.Context, itemID, userID int64, now time.Time) ([]*models.Booking, error) {
	query := bookingSelect + `
        WHERE b.item_id = ? AND b.booker_id = ? AND b.status = ? AND b.end_date < ?
        ORDER BY b.start_date`

	return db.queryBookings(ctx, query, itemID, userID, models.StatusApproved, fmtTime(now))
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	var startRaw, endRaw string
	err := row.Scan(&booking.ID, &startRaw, &endRaw, &booking.ItemID, &booking.BookerID,
		&booking.Status, &booking.ItemName, &booking.ItemOwnerID, &booking.BookerName)
	if err != nil {
		return nil, err
	}

	if booking.Start, err = parseTime(startRaw); err != nil {
		return nil, err
	}
	if booking.End, err = parseTime(endRaw); err != nil {
		return nil, err
	}
	return &booking, nil
}
