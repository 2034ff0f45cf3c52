package repository

import (
	"context"

	"dhobighar-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceItemRepository manages the flat-rate service catalog.
type ServiceItemRepository interface {
	Create(ctx context.Context, item *model.ServiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceItem, error)
	List(ctx context.Context) ([]model.ServiceItem, error)
	Update(ctx context.Context, item *model.ServiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type serviceItemRepository struct {
	db *gorm.DB
}

func NewServiceItemRepository(db *gorm.DB) ServiceItemRepository {
	return &serviceItemRepository{db: db}
}

func (r *serviceItemRepository) Create(ctx context.Context, item *model.ServiceItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *serviceItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceItem, error) {
	var item model.ServiceItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *serviceItemRepository) List(ctx context.Context) ([]model.ServiceItem, error) {
	var items []model.ServiceItem
	if err := GetDB(ctx, r.db).Order("category, name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *serviceItemRepository) Update(ctx context.Context, item *model.ServiceItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *serviceItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ServiceItem{}).Error
}

// PackageRepository manages weight-based package definitions.
type PackageRepository interface {
	Create(ctx context.Context, pkg *model.PackageDefinition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PackageDefinition, error)
	List(ctx context.Context) ([]model.PackageDefinition, error)
	Update(ctx context.Context, pkg *model.PackageDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type packageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Create(ctx context.Context, pkg *model.PackageDefinition) error {
	return GetDB(ctx, r.db).Create(pkg).Error
}

func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PackageDefinition, error) {
	var pkg model.PackageDefinition
	if err := GetDB(ctx, r.db).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) List(ctx context.Context) ([]model.PackageDefinition, error) {
	var pkgs []model.PackageDefinition
	if err := GetDB(ctx, r.db).Order("package_name").Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *packageRepository) Update(ctx context.Context, pkg *model.PackageDefinition) error {
	return GetDB(ctx, r.db).Save(pkg).Error
}

func (r *packageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PackageDefinition{}).Error
}
