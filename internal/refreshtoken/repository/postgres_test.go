package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"employee-directory/backend/internal/refreshtoken/domain"
)

func newPostgresMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestPostgres_GetByUserID(t *testing.T) {
	repo, mock := newPostgresMock(t)
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("select id, user_id, token_hash, expire_date, created_at from refresh_tokens where user_id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expire_date", "created_at"}).
			AddRow("t1", "u1", "hash", exp, exp.Add(-time.Hour)))
	mock.ExpectQuery("from refresh_tokens").WithArgs("u2").WillReturnError(sql.ErrNoRows)

	tok, err := repo.GetByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if tok == nil || tok.TokenHash != "hash" || !tok.ExpireDate.Equal(exp) {
		t.Errorf("unexpected token %+v", tok)
	}

	tok, err = repo.GetByUserID(context.Background(), "u2")
	if err != nil || tok != nil {
		t.Errorf("missing token = (%v, %v), want (nil, nil)", tok, err)
	}
}

func TestPostgres_Replace_DeletesThenInsertsInOneTx(t *testing.T) {
	repo, mock := newPostgresMock(t)
	now := time.Now().UTC()
	tok := &domain.RefreshToken{ID: "t2", UserID: "u1", TokenHash: "h2", ExpireDate: now.Add(time.Hour), CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("delete from refresh_tokens where user_id = \\$1").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into refresh_tokens").
		WithArgs("t2", "u1", "h2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Replace(context.Background(), tok); err != nil {
		t.Fatalf("Replace: %v", err)
	}
}

func TestPostgres_Replace_RollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newPostgresMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("delete from refresh_tokens").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into refresh_tokens").WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	if err := repo.Replace(context.Background(), &domain.RefreshToken{UserID: "u1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPostgres_Consume(t *testing.T) {
	repo, mock := newPostgresMock(t)
	mock.ExpectExec("delete from refresh_tokens where user_id = \\$1 and token_hash = \\$2").
		WithArgs("u1", "h1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("delete from refresh_tokens where user_id = \\$1 and token_hash = \\$2").
		WithArgs("u1", "h1").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Consume(context.Background(), "u1", "h1")
	if err != nil || !ok {
		t.Errorf("first Consume = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = repo.Consume(context.Background(), "u1", "h1")
	if err != nil || ok {
		t.Errorf("second Consume = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestPostgres_DeleteByUserID(t *testing.T) {
	repo, mock := newPostgresMock(t)
	mock.ExpectExec("delete from refresh_tokens where user_id = \\$1$").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeleteByUserID(context.Background(), "u1")
	if err != nil || ok {
		t.Errorf("DeleteByUserID = (%v, %v), want (false, nil)", ok, err)
	}
}
