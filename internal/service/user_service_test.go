package service

import (
	"context"
	"errors"
	"testing"

	"dhobighar-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---------------------------------------------------------------

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, errors.New("record not found")
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return errors.New("record not found")
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

type fakeNotifRepo struct {
	notifications []model.AdminNotification
}

func (f *fakeNotifRepo) Create(_ context.Context, n *model.AdminNotification) error {
	n.ID = uuid.New()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotifRepo) List(_ context.Context, status string, _, _ int) ([]model.AdminNotification, int64, error) {
	var out []model.AdminNotification
	for _, n := range f.notifications {
		if status == "" || n.Status == status {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifRepo) SetStatusForUser(_ context.Context, userID uuid.UUID, status string) error {
	for i := range f.notifications {
		if f.notifications[i].UserID == userID && f.notifications[i].Status == model.StatusPending {
			f.notifications[i].Status = status
		}
	}
	return nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo, *fakeNotifRepo, *fakeAuditRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	notifRepo := &fakeNotifRepo{}
	auditRepo := &fakeAuditRepo{}
	svc := NewUserService(userRepo, notifRepo, auditRepo, fakeTxManager{}, nil)
	return svc, userRepo, notifRepo, auditRepo
}

func register(t *testing.T, svc UserService) *UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterUserRequest{
		Email:       "staff@dhobighar.in",
		DisplayName: "Staff One",
		Password:    "secret123",
	})
	require.NoError(t, err)
	return user
}

// --- Tests ---------------------------------------------------------------

func TestRegisterCreatesPendingAccount(t *testing.T) {
	svc, _, notifRepo, auditRepo := newTestUserService(t)

	user := register(t, svc)
	require.False(t, user.IsApproved, "new accounts start unapproved")
	require.False(t, user.IsAdmin)

	require.Len(t, notifRepo.notifications, 1)
	require.Equal(t, model.NotificationNewUserRegistration, notifRepo.notifications[0].Type)
	require.Equal(t, model.StatusPending, notifRepo.notifications[0].Status)
	require.Equal(t, "staff@dhobighar.in", notifRepo.notifications[0].Email)

	require.Len(t, auditRepo.entries, 1)
	require.Equal(t, model.ActionRegisterUser, auditRepo.entries[0].Action)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Email: "not-an-email", DisplayName: "X", Password: "secret123",
	})
	require.ErrorContains(t, err, "invalid email format")

	register(t, svc)
	_, err = svc.Register(context.Background(), RegisterUserRequest{
		Email: "staff@dhobighar.in", DisplayName: "Dup", Password: "secret123",
	})
	require.ErrorContains(t, err, "email already exists")
}

func TestLoginGatedOnApproval(t *testing.T) {
	svc, userRepo, _, _ := newTestUserService(t)
	ctx := context.Background()
	user := register(t, svc)

	_, err := svc.Login(ctx, LoginUserRequest{Email: "staff@dhobighar.in", Password: "secret123"})
	require.ErrorContains(t, err, "account is pending approval from admin")

	_, err = svc.Login(ctx, LoginUserRequest{Email: "staff@dhobighar.in", Password: "wrong"})
	require.ErrorContains(t, err, "invalid email or password")

	id, err := uuid.Parse(user.ID)
	require.NoError(t, err)
	userRepo.users[id].IsApproved = true

	token, err := svc.Login(ctx, LoginUserRequest{Email: "staff@dhobighar.in", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("default_super_secret_key"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, user.ID, claims["sub"])
	require.Equal(t, "staff", claims["role"])
}

func TestApproveUserSettlesNotifications(t *testing.T) {
	svc, userRepo, notifRepo, auditRepo := newTestUserService(t)
	ctx := context.Background()
	user := register(t, svc)
	adminID := uuid.New().String()

	approved, err := svc.ApproveUser(ctx, user.ID, adminID)
	require.NoError(t, err)
	require.True(t, approved.IsApproved)

	id, _ := uuid.Parse(user.ID)
	require.True(t, userRepo.users[id].IsApproved)
	require.Equal(t, model.StatusApproved, notifRepo.notifications[0].Status)

	require.Len(t, auditRepo.entries, 2)
	require.Equal(t, model.ActionApproveUser, auditRepo.entries[1].Action)
}

func TestRejectUser(t *testing.T) {
	svc, _, notifRepo, _ := newTestUserService(t)
	ctx := context.Background()
	user := register(t, svc)

	rejected, err := svc.RejectUser(ctx, user.ID, uuid.New().String())
	require.NoError(t, err)
	require.False(t, rejected.IsApproved)
	require.Equal(t, model.StatusRejected, notifRepo.notifications[0].Status)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "staff@dhobighar.in", Password: "secret123"})
	require.ErrorContains(t, err, "pending approval")
}

func TestApproveUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)

	_, err := svc.ApproveUser(context.Background(), uuid.New().String(), uuid.New().String())
	require.Error(t, err)

	_, err = svc.ApproveUser(context.Background(), "not-a-uuid", uuid.New().String())
	require.ErrorContains(t, err, "invalid user id")
}
