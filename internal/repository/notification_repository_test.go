package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/models"
)

func newNotificationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	declarationID := "decl-1"
	notification := &models.Notification{
		UserID:        "user-1",
		Title:         "Déclaration soumise",
		Message:       "Une nouvelle déclaration attend votre vérification.",
		DeclarationID: &declarationID,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	require.NotEmpty(t, notification.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "message", "declaration_id", "read", "created_at"}).
		AddRow(notification.ID, "user-1", notification.Title, notification.Message, declarationID, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, message")).
		WithArgs("user-1").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.NotificationFilter{UserID: "user-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE")).
		WithArgs("notif-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRead(context.Background(), "notif-1", "user-1"))

	// Touching another user's notification affects no rows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE")).
		WithArgs("notif-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkRead(context.Background(), "notif-1", "user-2"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
