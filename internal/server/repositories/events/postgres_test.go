package events

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestAppend_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+audit_events\s*\(id,\s*owner,\s*action,\s*subject,\s*amount,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`

	mock.ExpectExec(q).
		WithArgs("e-1", "alice", string(models.ActionDeposit), "d-1", uint64(100), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &models.AuditEvent{
		ID: "e-1", Owner: "alice", Action: models.ActionDeposit,
		Subject: "d-1", Amount: 100, CreatedAt: 42,
	}
	if err := repo.Append(context.Background(), e); err != nil {
		t.Fatalf("Append error: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+audit_events`).
		WillReturnError(errors.New("db down"))

	e := &models.AuditEvent{ID: "e-1", Owner: "alice", Action: models.ActionBurn}
	err := repo.Append(context.Background(), e)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByOwner_OrderedJournal(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+audit_events\s+WHERE\s+owner\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "action", "subject", "amount", "created_at"}).
			AddRow("e-1", "alice", "deposit", "d-1", uint64(100), int64(10)).
			AddRow("e-2", "alice", "claim", "t-1", uint64(100), int64(20)))

	got, err := repo.ListByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].Action != models.ActionDeposit || got[1].Action != models.ActionClaim {
		t.Fatalf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
