package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

func creativeColumns() []string {
	return []string{"id", "account_id", "name", "format", "objectives", "tags", "status", "created_at", "updated_at"}
}

func TestCreativeRepoListByAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCreativeRepo(db)

	now := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(creativeColumns()).
		AddRow("cr_1", "101", "Summer Video", "video", []byte("{lead_gen,traffic}"), []byte("{video,US}"), "active", now, now).
		AddRow("cr_2", "101", "Static Banner", "image", []byte("{}"), []byte("{}"), "paused", now, now)

	mock.ExpectQuery("SELECT id, account_id, name, format, objectives, tags, status").
		WithArgs("101").
		WillReturnRows(rows)

	got, err := repo.ListByAccount(context.Background(), "101")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("creatives = %d, want 2", len(got))
	}
	first := got[0]
	if first.ID != "cr_1" || first.Format != domain.FormatVideo || first.Status != domain.CreativeActive {
		t.Errorf("first = %+v, want the active video", first)
	}
	if len(first.Objectives) != 2 || first.Objectives[0] != "lead_gen" {
		t.Errorf("objectives = %v, array not parsed", first.Objectives)
	}
	if len(first.Tags) != 2 || first.Tags[1] != "US" {
		t.Errorf("tags = %v, array not parsed", first.Tags)
	}
	if len(got[1].Objectives) != 0 {
		t.Errorf("empty objectives = %v, want none", got[1].Objectives)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestCreativeRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCreativeRepo(db)

	mock.ExpectExec("INSERT INTO creatives").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &domain.Creative{
		ID:        "cr_1",
		AccountID: "101",
		Name:      "Summer Video",
		Format:    domain.FormatVideo,
		Tags:      []string{"video", "US"},
		Status:    domain.CreativeActive,
	}
	if err := repo.Upsert(context.Background(), c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestCreativeRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCreativeRepo(db)

	t.Run("found", func(t *testing.T) {
		now := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(creativeColumns()).
			AddRow("cr_1", "101", "Summer Video", "video", []byte("{lead_gen}"), []byte("{}"), "active", now, now)

		mock.ExpectQuery("SELECT id, account_id, name, format, objectives, tags, status").
			WithArgs("cr_1").
			WillReturnRows(rows)

		c, err := repo.Get(context.Background(), "cr_1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if c.Name != "Summer Video" || len(c.Objectives) != 1 {
			t.Errorf("creative = %+v, not carried through", c)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, account_id, name, format, objectives, tags, status").
			WithArgs("cr_missing").
			WillReturnError(sql.ErrNoRows)

		if _, err := repo.Get(context.Background(), "cr_missing"); !errors.Is(err, scoring.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}
