package bookings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
)

const dateLayout = "02/01/2006"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Booking is a finalized booking row.
type Booking struct {
	ID             string     `json:"id"`
	Phone          string     `json:"phone"`
	CustomerName   string     `json:"customer_name"`
	Package        string     `json:"package"`
	Destination    string     `json:"destination"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	NumberOfPeople int        `json:"number_of_people,omitempty"`
	TotalPrice     string     `json:"total_price,omitempty"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	db  querier
	now func() time.Time
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return newRepositoryWithQuerier(pool)
}

func newRepositoryWithQuerier(db querier) *Repository {
	if db == nil {
		panic("bookings: querier required")
	}
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const insertBooking = `INSERT INTO travel_bookings
	(id, phone, customer_name, package, destination, start_date, end_date, number_of_people, total_price, status, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Insert stores a finalized booking and returns its id.
func (r *Repository) Insert(ctx context.Context, rec backend.BookingRecord) (string, error) {
	id := uuid.New()
	status := strings.TrimSpace(rec.Status)
	if status == "" {
		status = "pending"
	}
	_, err := r.db.Exec(ctx, insertBooking,
		pgtype.UUID{Bytes: [16]byte(id), Valid: true},
		rec.CustomerPhone,
		rec.CustomerName,
		rec.Package,
		rec.Destination,
		toPGDate(rec.StartDate),
		toPGDate(rec.EndDate),
		toPGInt(rec.NumberOfPeople),
		rec.TotalPrice,
		status,
		rec.Notes,
		pgtype.Timestamptz{Time: r.now(), Valid: true},
	)
	if err != nil {
		return "", fmt.Errorf("bookings: insert: %w", err)
	}
	return id.String(), nil
}

const listByPhone = `SELECT id::text, phone, customer_name, package, destination, start_date, end_date,
	number_of_people, total_price, status, notes, created_at
	FROM travel_bookings WHERE phone = $1 ORDER BY created_at DESC LIMIT $2`

// ListByPhone returns the newest bookings for phone.
func (r *Repository) ListByPhone(ctx context.Context, phone string, limit int) ([]Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, listByPhone, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		var (
			b          Booking
			start, end pgtype.Date
			people     pgtype.Int4
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(&b.ID, &b.Phone, &b.CustomerName, &b.Package, &b.Destination,
			&start, &end, &people, &b.TotalPrice, &b.Status, &b.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		b.StartDate = fromPGDate(start)
		b.EndDate = fromPGDate(end)
		if people.Valid {
			b.NumberOfPeople = int(people.Int32)
		}
		if createdAt.Valid {
			b.CreatedAt = createdAt.Time
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list rows: %w", err)
	}
	return out, nil
}

func toPGDate(raw string) pgtype.Date {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func fromPGDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func toPGInt(raw string) pgtype.Int4 {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}
