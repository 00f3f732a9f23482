package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/repository"
)

func TestMemberRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMemberRepository(mock)

	createdAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "email", "role", "verified", "created_at"}).
		AddRow("member-1", "pat@example.com", "admin", true, createdAt)

	mock.ExpectQuery(`SELECT .*FROM profiles WHERE id = \$1`).
		WithArgs("member-1").
		WillReturnRows(rows)

	member, err := repo.GetByID(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if member.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", member.Role)
	}
	if !member.Verified {
		t.Fatalf("expected verified member")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemberRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMemberRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM profiles WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "verified", "created_at"}))

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemberRepository_ListUnverified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMemberRepository(mock)

	createdAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "email", "role", "verified", "created_at"}).
		AddRow("member-1", "a@example.com", "member", false, createdAt).
		AddRow("member-2", "b@example.com", "member", false, createdAt.Add(time.Hour))

	mock.ExpectQuery(`SELECT .*FROM profiles WHERE verified = \$1 ORDER BY created_at ASC LIMIT 20`).
		WithArgs(false).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM profiles WHERE verified = \$1`).
		WithArgs(false).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	members, total, err := repo.ListUnverified(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListUnverified returned error: %v", err)
	}
	if len(members) != 2 || total != 2 {
		t.Fatalf("expected 2 members with total 2, got %d/%d", len(members), total)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemberRepository_MarkVerifiedIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMemberRepository(mock)

	// Updating an already-verified row still affects it; the repository
	// reports not-found only when the row does not exist.
	mock.ExpectExec(`UPDATE profiles SET verified = \$1 WHERE id = \$2`).
		WithArgs(true, "member-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkVerified(context.Background(), "member-1"); err != nil {
		t.Fatalf("MarkVerified returned error: %v", err)
	}
}
