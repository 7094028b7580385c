package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
)

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	start := time.Date(2026, 6, 23, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO travel_bookings").
		WithArgs(
			pgxmock.AnyArg(),
			"919876543210",
			"Asha Verma",
			"P001",
			"Bali, Indonesia",
			pgtype.Date{Time: start, Valid: true},
			pgtype.Date{Time: end, Valid: true},
			pgtype.Int4{Int32: 2, Valid: true},
			"50000",
			"pending",
			"notes",
			pgtype.Timestamptz{Time: fixed, Valid: true},
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.Insert(context.Background(), backend.BookingRecord{
		CustomerPhone:  "919876543210",
		CustomerName:   "Asha Verma",
		Package:        "P001",
		Destination:    "Bali, Indonesia",
		StartDate:      "23/06/2026",
		EndDate:        "30/06/2026",
		NumberOfPeople: "2",
		TotalPrice:     "50000",
		Notes:          "notes",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryInsertUnparseableValues(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	mock.ExpectExec("INSERT INTO travel_bookings").
		WithArgs(
			pgxmock.AnyArg(), "1", "", "", "",
			pgtype.Date{}, pgtype.Date{}, pgtype.Int4{},
			"", "confirmed", "", pgxmock.AnyArg(),
		).
		WillReturnError(errors.New("db down"))

	_, err = repo.Insert(context.Background(), backend.BookingRecord{
		CustomerPhone:  "1",
		StartDate:      "next week",
		NumberOfPeople: "a few",
		Status:         "confirmed",
	})
	if err == nil {
		t.Fatalf("expected insert error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryListByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	start := time.Date(2026, 6, 23, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "phone", "customer_name", "package", "destination", "start_date", "end_date", "number_of_people", "total_price", "status", "notes", "created_at"}).
		AddRow("b-1", "919876543210", "Asha", "P001", "Bali, Indonesia",
			start, nil, int64(2), "", "pending", "", created)
	mock.ExpectQuery("SELECT id::text, phone").WithArgs("919876543210", 20).WillReturnRows(rows)

	out, err := repo.ListByPhone(context.Background(), "919876543210", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(out))
	}
	b := out[0]
	if b.ID != "b-1" || b.NumberOfPeople != 2 || b.Status != "pending" {
		t.Fatalf("unexpected booking %#v", b)
	}
	if b.StartDate == nil || !b.StartDate.Equal(start) || b.EndDate != nil {
		t.Fatalf("unexpected dates %v %v", b.StartDate, b.EndDate)
	}
	if !b.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at %v", b.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestServiceRecordFinalized(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	svc := NewService(newRepositoryWithQuerier(mock), nil)
	mock.ExpectExec("INSERT INTO travel_bookings").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := svc.RecordFinalized(context.Background(), backend.BookingRecord{CustomerPhone: "919876543210"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.ListByPhone(context.Background(), "", 10); err == nil {
		t.Fatalf("expected phone validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
