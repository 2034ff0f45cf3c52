package repository

import (
	"context"

	"dhobighar-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository stores the admin notifications raised for new
// account registrations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.AdminNotification) error
	List(ctx context.Context, status string, page, limit int) ([]model.AdminNotification, int64, error)
	// SetStatusForUser updates every PENDING notification of the given user,
	// recording the approval decision.
	SetStatusForUser(ctx context.Context, userID uuid.UUID, status string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.AdminNotification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) List(ctx context.Context, status string, page, limit int) ([]model.AdminNotification, int64, error) {
	var notifications []model.AdminNotification
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.AdminNotification{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("created_at desc").Offset(offset).Limit(limit)
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if err := fetch.Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) SetStatusForUser(ctx context.Context, userID uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.AdminNotification{}).
		Where("user_id = ? AND status = ?", userID, model.StatusPending).
		Update("status", status).Error
}
