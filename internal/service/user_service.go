package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"dhobighar-backend/internal/model"
	"dhobighar-backend/internal/repository"
	"dhobighar-backend/internal/websocket"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type RegisterUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
	IsApproved  bool   `json:"isApproved"`
	CreatedAt   string `json:"createdAt"`
}

type NotificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// --- Interface ---

// UserService handles registration, the admin approval gate and login.
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	ListNotifications(ctx context.Context, status string, page, limit int) ([]NotificationResponse, int64, error)
	ApproveUser(ctx context.Context, userID, adminID string) (*UserResponse, error)
	RejectUser(ctx context.Context, userID, adminID string) (*UserResponse, error)
}

type userService struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *websocket.Hub
}

func NewUserService(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) UserService {
	return &userService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

// --- Implementation ---

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, errors.New("invalid email format")
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	// New accounts start unapproved; an admin must approve before first login.
	user := &model.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    string(hashedPassword),
		IsAdmin:     false,
		IsApproved:  false,
	}

	var notification model.AdminNotification
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		notification = model.AdminNotification{
			Type:        model.NotificationNewUserRegistration,
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Status:      model.StatusPending,
		}
		if err := s.notifRepo.Create(txCtx, &notification); err != nil {
			return fmt.Errorf("failed to create admin notification: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"email": user.Email})
		audit := model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionRegisterUser,
			EntityID:   user.ID.String(),
			EntityName: user.DisplayName,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.EventNewRegistration, toNotificationResponse(notification))
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	// Application-level gate on top of successful authentication.
	if !user.IsApproved {
		return nil, errors.New("account is pending approval from admin")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"role":  user.Role(),
		"email": user.Email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *toUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) ListNotifications(ctx context.Context, status string, page, limit int) ([]NotificationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.notifRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, toNotificationResponse(n))
	}
	return responses, total, nil
}

func (s *userService) ApproveUser(ctx context.Context, userID, adminID string) (*UserResponse, error) {
	return s.decide(ctx, userID, adminID, true)
}

func (s *userService) RejectUser(ctx context.Context, userID, adminID string) (*UserResponse, error) {
	return s.decide(ctx, userID, adminID, false)
}

// decide flips the approval flag and settles every pending notification for
// the user in one transaction.
func (s *userService) decide(ctx context.Context, userID, adminID string, approved bool) (*UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	admin, err := uuid.Parse(adminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin id: %w", err)
	}

	status := model.StatusApproved
	action := model.ActionApproveUser
	if !approved {
		status = model.StatusRejected
		action = model.ActionRejectUser
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		user, findErr = s.userRepo.GetByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("user not found: %w", findErr)
		}

		user.IsApproved = approved
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if err := s.notifRepo.SetStatusForUser(txCtx, id, status); err != nil {
			return fmt.Errorf("failed to update notifications: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"status": status})
		audit := model.AuditLog{
			UserID:     &admin,
			Action:     action,
			EntityID:   user.ID.String(),
			EntityName: user.DisplayName,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// --- Mapping ---

func toUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		IsApproved:  user.IsApproved,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func toNotificationResponse(n model.AdminNotification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID.String(),
		Type:        n.Type,
		UserID:      n.UserID.String(),
		Email:       n.Email,
		DisplayName: n.DisplayName,
		Status:      n.Status,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}
