package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
	"github.com/noah-isme/uni-hours-api/pkg/jobs"
	"github.com/noah-isme/uni-hours-api/pkg/mailer"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
}

type notificationUserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActiveByRole(ctx context.Context, role models.UserRole, departmentID string) ([]models.User, error)
}

// NotificationConfig tunes dispatch behaviour.
type NotificationConfig struct {
	EmailEnabled      bool
	WorkerConcurrency int
	WorkerRetries     int
}

type emailJob struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// NotificationService turns workflow notification intents into in-app
// records and outgoing emails. In-app rows are written synchronously so the
// recipient sees them on the next poll; email goes through a background
// queue and its failures never surface to the workflow.
type NotificationService struct {
	repo   notificationStore
	users  notificationUserDirectory
	mailer mailer.Mailer
	queue  *jobs.Queue
	cfg    NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service and its email queue.
func NewNotificationService(repo notificationStore, users notificationUserDirectory, m mailer.Mailer, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{
		repo:   repo,
		users:  users,
		mailer: m,
		cfg:    cfg,
		logger: logger,
	}
	svc.queue = jobs.NewQueue("notification-email", svc.handleEmailJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return svc
}

// Start launches the email workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains and stops the email workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Dispatch resolves each intent's recipient selector to concrete users,
// stores one in-app notification per user, and enqueues emails. Errors are
// logged and swallowed: notification delivery is best effort and must never
// fail a committed workflow transition.
func (s *NotificationService) Dispatch(ctx context.Context, d *models.Declaration, intents []models.NotificationIntent) {
	for _, intent := range intents {
		recipients, err := s.resolve(ctx, d, intent.Recipient)
		if err != nil {
			s.logger.Warn("failed to resolve notification recipients",
				zap.String("declaration_id", d.ID),
				zap.String("template", string(intent.Template)),
				zap.Error(err))
			continue
		}
		subject, body := workflow.Render(intent.Template, intent.Params)
		for _, user := range recipients {
			s.deliver(ctx, &user, d, subject, body)
		}
	}
}

// List returns the actor's notifications.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	notifications, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	return count, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification as read")
	}
	return nil
}

// MarkAllRead flags all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications as read")
	}
	return nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

func (s *NotificationService) resolve(ctx context.Context, d *models.Declaration, selector models.RecipientSelector) ([]models.User, error) {
	switch selector.Kind {
	case models.RecipientAuthor:
		user, err := s.users.FindByID(ctx, d.AuthorID)
		if err != nil {
			return nil, err
		}
		return []models.User{*user}, nil
	case models.RecipientRegistrars:
		return s.users.ListActiveByRole(ctx, models.RoleRegistrar, "")
	case models.RecipientDepartmentHeads:
		return s.users.ListActiveByRole(ctx, models.RoleDepartmentHead, selector.DepartmentID)
	case models.RecipientDirectors:
		return s.users.ListActiveByRole(ctx, models.RoleDirector, "")
	}
	return nil, fmt.Errorf("unknown recipient kind %q", selector.Kind)
}

func (s *NotificationService) deliver(ctx context.Context, user *models.User, d *models.Declaration, subject, body string) {
	notification := &models.Notification{
		UserID:        user.ID,
		Title:         subject,
		Message:       body,
		DeclarationID: &d.ID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to store notification",
			zap.String("user_id", user.ID),
			zap.String("declaration_id", d.ID),
			zap.Error(err))
	}

	if !s.cfg.EmailEnabled || s.mailer == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "email",
		Payload: emailJob{
			ToName:  user.FullName,
			ToEmail: user.Email,
			Subject: subject,
			Body:    body,
		},
		Enqueued: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification email",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}
}

func (s *NotificationService) handleEmailJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return s.mailer.Send(ctx, mailer.Message{
		ToName:  payload.ToName,
		ToEmail: payload.ToEmail,
		Subject: payload.Subject,
		Body:    payload.Body,
	})
}
