package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(owner,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2\)\s*$`

	mock.ExpectExec(q).
		WithArgs("alice", []byte("hash")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), &models.User{Owner: "alice", PasswordHash: []byte("hash")}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{Owner: "alice", PasswordHash: []byte("hash")})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.User{Owner: "alice", PasswordHash: []byte("hash")})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+users\s+WHERE\s+owner\s*=\s*\$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"owner", "password_hash", "lock_index", "vest_index", "created_at"}).
			AddRow("alice", []byte("hash"), uint64(3), uint64(1), time.Unix(42, 0)))

	got, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.LockIndex != 3 || got.VestIndex != 1 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+users\s+WHERE\s+owner\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestIncrementIndexes_CompareAndSet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	lockQ := `(?s)^\s*UPDATE\s+users\s+SET\s+lock_index\s*=\s*lock_index\s*\+\s*1\s+WHERE\s+owner\s*=\s*\$1\s+AND\s+lock_index\s*=\s*\$2\s*$`
	vestQ := `(?s)^\s*UPDATE\s+users\s+SET\s+vest_index\s*=\s*vest_index\s*\+\s*1\s+WHERE\s+owner\s*=\s*\$1\s+AND\s+vest_index\s*=\s*\$2\s*$`

	mock.ExpectExec(lockQ).
		WithArgs("alice", uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.IncrementLockIndex(context.Background(), "alice", 3); err != nil {
		t.Fatalf("IncrementLockIndex error: %v", err)
	}

	// a concurrent deposit already took this index
	mock.ExpectExec(vestQ).
		WithArgs("alice", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.IncrementVestIndex(context.Background(), "alice", 1); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
