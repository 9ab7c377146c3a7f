package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

type userRepoStub struct {
	users map[string]*models.User
	logs  []*models.AuditLog
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]*models.User)}
}

func (r *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	result := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, *u)
	}
	return result, len(result), nil
}

func (r *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copy := *user
	r.users[user.ID] = &copy
	return nil
}

func (r *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *user
	r.users[user.ID] = &copy
	return nil
}

func (r *userRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestUserServiceCreate(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, nil, nil)

	dept := "dept-1"
	grade := models.GradeMaitreAssistant
	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:        "Alice@Univ.example",
		Password:     "secret123",
		FullName:     "Alice Martin",
		Role:         models.RoleTeacher,
		DepartmentID: &dept,
		Grade:        &grade,
	}, "admin-1")
	require.NoError(t, err)
	require.Equal(t, "alice@univ.example", user.Email)
	require.True(t, user.Active)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.Len(t, repo.logs, 1)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, nil, nil)

	req := dto.CreateUserRequest{Email: "alice@univ.example", Password: "secret123", FullName: "Alice Martin", Role: models.RoleTeacher}
	_, err := svc.Create(context.Background(), req, "admin-1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req, "admin-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDepartmentHeadRequiresDepartment(t *testing.T) {
	svc := NewUserService(newUserRepoStub(), nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "chef@univ.example",
		Password: "secret123",
		FullName: "Chef Dept",
		Role:     models.RoleDepartmentHead,
	}, "admin-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateAndDelete(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "alice@univ.example",
		Password: "secret123",
		FullName: "Alice Martin",
		Role:     models.RoleTeacher,
	}, "admin-1")
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), user.ID, dto.UpdateUserRequest{Active: &inactive}, "admin-1")
	require.NoError(t, err)
	require.False(t, updated.Active)

	// Admins cannot delete themselves.
	require.Error(t, svc.Delete(context.Background(), "admin-1", "admin-1"))
	require.NoError(t, svc.Delete(context.Background(), user.ID, "admin-1"))
}
