package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/eventra/eventra-backend/internal/model"
)

// BookingRepo persists bookings and their service entries. Payment marking
// and status transitions are conditional UPDATEs so that concurrent
// reconciliation paths cannot both win; marking a booking paid happens at
// most once.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingCols = `id,user_id,venue_id,is_service_only,event_type,guest_count,
	start_date,end_date,special_request,customer_name,customer_phone,national_id,
	total_amount,advance_amount,remaining_amount,payment_method,is_paid,
	transaction_id,paid_at,status,notified_email,notified_sms,notified_call,
	created_at,updated_at`

func scanBooking(row scannable) (model.Booking, error) {
	var b model.Booking
	var venueID sql.NullInt64
	var endDate, paidAt sql.NullTime
	var request, nationalID, method, txnID sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &venueID, &b.IsServiceOnly,
		&b.Event.Type, &b.Event.GuestCount, &b.Event.StartDate, &endDate,
		&request, &b.Customer.Name, &b.Customer.Phone, &nationalID,
		&b.Payment.Total, &b.Payment.Advance, &b.Payment.Remaining, &method,
		&b.Payment.IsPaid, &txnID, &paidAt, &b.Status,
		&b.Notifications.EmailSent, &b.Notifications.SMSSent, &b.Notifications.CallSent,
		&b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	if venueID.Valid {
		v := uint64(venueID.Int64)
		b.VenueID = &v
	}
	if endDate.Valid {
		b.Event.EndDate = endDate.Time
	}
	if paidAt.Valid {
		t := paidAt.Time
		b.Payment.PaidAt = &t
	}
	b.Event.Request = request.String
	b.Customer.NationalID = nationalID.String
	b.Payment.Method = method.String
	if txnID.Valid {
		s := txnID.String
		b.Payment.TransactionID = &s
	}
	return b, nil
}

// Create inserts the booking and its service entries in one transaction and
// populates the generated id and timestamps. The start-date window is
// re-checked here as a persistence-layer guard independent of the API-layer
// validation.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if !model.WithinStartWindow(b.Event.StartDate, time.Now().UTC()) {
		return model.ErrStartDateTooFar
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var venueID any
	if b.VenueID != nil {
		venueID = *b.VenueID
	}
	var endDate any
	if !b.Event.EndDate.IsZero() {
		endDate = b.Event.EndDate
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO bookings
		(user_id, venue_id, is_service_only, event_type, guest_count, start_date,
		 end_date, special_request, customer_name, customer_phone, national_id,
		 total_amount, advance_amount, remaining_amount, payment_method, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, venueID, b.IsServiceOnly, b.Event.Type, b.Event.GuestCount,
		b.Event.StartDate, endDate, b.Event.Request,
		b.Customer.Name, b.Customer.Phone, b.Customer.NationalID,
		b.Payment.Total, b.Payment.Advance, b.Payment.Remaining,
		b.Payment.Method, string(model.StatusPending))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.StatusPending

	if len(b.Services) > 0 {
		q := "INSERT INTO booking_services (booking_id, provider_id, service_type, details, price) VALUES "
		args := make([]any, 0, len(b.Services)*5)
		for i, s := range b.Services {
			if i > 0 {
				q += ","
			}
			q += "(?,?,?,?,?)"
			args = append(args, b.ID, s.ProviderID, string(s.ServiceType), s.Details, s.Price)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM bookings WHERE id=?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *BookingRepo) loadServices(ctx context.Context, bookingIDs []uint64, byID map[uint64]*model.Booking) error {
	if len(bookingIDs) == 0 {
		return nil
	}
	q := "SELECT booking_id, provider_id, service_type, details, price FROM booking_services WHERE booking_id IN ("
	args := make([]any, len(bookingIDs))
	for i, id := range bookingIDs {
		if i > 0 {
			q += ","
		}
		q += "?"
		args[i] = id
	}
	q += ") ORDER BY id ASC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookingID uint64
		var s model.BookingService
		var details sql.NullString
		if err := rows.Scan(&bookingID, &s.ProviderID, &s.ServiceType, &details, &s.Price); err != nil {
			return err
		}
		s.Details = details.String
		if b, ok := byID[bookingID]; ok {
			b.Services = append(b.Services, s)
		}
	}
	return rows.Err()
}

// GetByID loads a booking with its service entries.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id=? LIMIT 1", id))
	if err != nil {
		return b, err
	}
	if err := r.loadServices(ctx, []uint64{b.ID}, map[uint64]*model.Booking{b.ID: &b}); err != nil {
		return b, err
	}
	return b, nil
}

func (r *BookingRepo) list(ctx context.Context, cond string, args ...any) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE "+cond+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]uint64, len(out))
	byID := make(map[uint64]*model.Booking, len(out))
	for i := range out {
		ids[i] = out[i].ID
		byID[out[i].ID] = &out[i]
	}
	if err := r.loadServices(ctx, ids, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForUser returns the bookings owned by a user, newest first.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx, "user_id=?", userID)
}

// ListForHost returns the bookings referencing a host as venue or provider.
func (r *BookingRepo) ListForHost(ctx context.Context, hostID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		"venue_id=? OR id IN (SELECT booking_id FROM booking_services WHERE provider_id=?)",
		hostID, hostID)
}

// UpdateStatusCAS moves the booking from the expected current status to the
// target. It reports false when the booking was no longer in the expected
// state, which callers treat as losing the race.
func (r *BookingRepo) UpdateStatusCAS(ctx context.Context, id uint64, from, to model.Status) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status=?",
		string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkPaidCAS sets the payment fields and advances the status to confirmed,
// conditional on the booking being unpaid. Exactly one caller can win; all
// later attempts (second client confirm, webhook replay) report
// ErrAlreadyPaid and must not re-run the paid notification fan-out.
func (r *BookingRepo) MarkPaidCAS(ctx context.Context, id uint64, txnID, method string, when time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET is_paid=1, transaction_id=?, payment_method=?, paid_at=?, status=?
		 WHERE id=? AND is_paid=0`,
		txnID, method, when, string(model.StatusConfirmed), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	return nil
}

// SetNotificationFlags ORs the delivery-attempt flags onto the booking.
// Best-effort bookkeeping; failures here are logged by callers, not fatal.
func (r *BookingRepo) SetNotificationFlags(ctx context.Context, id uint64, f model.NotificationFlags) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET notified_email=notified_email OR ?,
		 notified_sms=notified_sms OR ?, notified_call=notified_call OR ? WHERE id=?`,
		f.EmailSent, f.SMSSent, f.CallSent, id)
	return err
}

// Delete removes the booking and its service entries. Administrator only;
// handlers enforce the gate.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM booking_services WHERE booking_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
