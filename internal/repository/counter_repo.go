package repository

import (
	"context"
	"errors"

	"dhobighar-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository reads and writes named sequences. Current/Set are meant to
// be called inside a transaction (TransactionManager) so the read-then-increment
// on the invoice counter is atomic.
type CounterRepository interface {
	Current(ctx context.Context, name string) (int64, error)
	Set(ctx context.Context, name string, value int64) error
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Current(ctx context.Context, name string) (int64, error) {
	var counter model.Counter
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&counter, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func (r *counterRepository) Set(ctx context.Context, name string, value int64) error {
	counter := model.Counter{Name: name, Value: value}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&counter).Error
}
