package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/pkg/mailer"
)

type notificationRepoStub struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (r *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.created = append(r.created, n)
	return nil
}

func (r *notificationRepoStub) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Notification, 0, len(r.created))
	for _, n := range r.created {
		if n.UserID == filter.UserID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (r *notificationRepoStub) CountUnread(ctx context.Context, userID string) (int, error) {
	list, _ := r.List(ctx, models.NotificationFilter{UserID: userID})
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepoStub) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *notificationRepoStub) MarkAllRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *notificationRepoStub) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.created {
		if n.ID == id && n.UserID == userID {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type userDirectoryStub struct {
	users map[string]*models.User
}

func (d *userDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (d *userDirectoryStub) ListActiveByRole(ctx context.Context, role models.UserRole, departmentID string) ([]models.User, error) {
	var result []models.User
	for _, u := range d.users {
		if u.Role != role || !u.Active {
			continue
		}
		if departmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != departmentID) {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func notificationFixtures() *userDirectoryStub {
	dept := "dept-1"
	return &userDirectoryStub{users: map[string]*models.User{
		"teacher-1":   {ID: "teacher-1", Email: "alice@univ.example", FullName: "Alice Martin", Role: models.RoleTeacher, Active: true},
		"registrar-1": {ID: "registrar-1", Email: "sec@univ.example", FullName: "Sabine Rol", Role: models.RoleRegistrar, Active: true},
		"registrar-2": {ID: "registrar-2", Email: "sec2@univ.example", FullName: "Marc Petit", Role: models.RoleRegistrar, Active: false},
		"head-1":      {ID: "head-1", Email: "chef@univ.example", FullName: "Chef Dept", Role: models.RoleDepartmentHead, DepartmentID: &dept, Active: true},
	}}
}

func testDeclaration() *models.Declaration {
	return &models.Declaration{
		ID:           "decl-1",
		AuthorID:     "teacher-1",
		AuthorName:   "Alice Martin",
		DepartmentID: "dept-1",
		Date:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:       models.StatusPending,
	}
}

func TestNotificationDispatchCreatesRowsPerRecipient(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, notificationFixtures(), nil, NotificationConfig{}, nil)

	d := testDeclaration()
	svc.Dispatch(context.Background(), d, []models.NotificationIntent{
		{Recipient: models.RecipientSelector{Kind: models.RecipientAuthor}, Template: models.TemplateDeclarationSubmitted, DeclarationID: d.ID},
		{Recipient: models.RecipientSelector{Kind: models.RecipientRegistrars}, Template: models.TemplatePendingVerification, DeclarationID: d.ID},
	})

	// Author plus the single active registrar; the inactive one is skipped.
	require.Len(t, repo.created, 2)
	recipients := map[string]bool{}
	for _, n := range repo.created {
		recipients[n.UserID] = true
		require.NotEmpty(t, n.Title)
		require.NotEmpty(t, n.Message)
		require.NotNil(t, n.DeclarationID)
	}
	require.True(t, recipients["teacher-1"])
	require.True(t, recipients["registrar-1"])
}

func TestNotificationDispatchScopesDepartmentHeads(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, notificationFixtures(), nil, NotificationConfig{}, nil)

	d := testDeclaration()
	svc.Dispatch(context.Background(), d, []models.NotificationIntent{
		{Recipient: models.RecipientSelector{Kind: models.RecipientDepartmentHeads, DepartmentID: "dept-2"}, Template: models.TemplatePendingApproval, DeclarationID: d.ID},
	})
	require.Empty(t, repo.created)

	svc.Dispatch(context.Background(), d, []models.NotificationIntent{
		{Recipient: models.RecipientSelector{Kind: models.RecipientDepartmentHeads, DepartmentID: "dept-1"}, Template: models.TemplatePendingApproval, DeclarationID: d.ID},
	})
	require.Len(t, repo.created, 1)
	require.Equal(t, "head-1", repo.created[0].UserID)
}

func TestNotificationDispatchSendsEmail(t *testing.T) {
	repo := &notificationRepoStub{}
	sender := &recordingMailer{}
	svc := NewNotificationService(repo, notificationFixtures(), sender, NotificationConfig{
		EmailEnabled:      true,
		WorkerConcurrency: 1,
	}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	d := testDeclaration()
	svc.Dispatch(context.Background(), d, []models.NotificationIntent{
		{Recipient: models.RecipientSelector{Kind: models.RecipientAuthor}, Template: models.TemplateDeclarationValidated, DeclarationID: d.ID},
	})

	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Equal(t, "alice@univ.example", sender.sent[0].ToEmail)
	require.NotEmpty(t, sender.sent[0].Subject)
}

func TestNotificationMarkReadOwnership(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, notificationFixtures(), nil, NotificationConfig{}, nil)

	d := testDeclaration()
	svc.Dispatch(context.Background(), d, []models.NotificationIntent{
		{Recipient: models.RecipientSelector{Kind: models.RecipientAuthor}, Template: models.TemplateDeclarationSubmitted, DeclarationID: d.ID},
	})
	require.Len(t, repo.created, 1)
	id := repo.created[0].ID

	require.Error(t, svc.MarkRead(context.Background(), id, "head-1"))
	require.NoError(t, svc.MarkRead(context.Background(), id, "teacher-1"))

	count, err := svc.UnreadCount(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Zero(t, count)
}
