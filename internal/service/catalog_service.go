package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dhobighar-backend/internal/model"
	"dhobighar-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type ServiceItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Category string `json:"category" binding:"required,oneof=Wash WashAndIron DryCleaning"`
}

type ServiceItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

type PackageRequest struct {
	PackageName string `json:"package_name" binding:"required"`
	Rate        string `json:"rate" binding:"required"`
}

type PackageResponse struct {
	ID          string `json:"id"`
	PackageName string `json:"package_name"`
	Rate        string `json:"rate"`
}

// --- Interface ---

// CatalogService manages the reference data consumed by invoice construction:
// flat-rate service items and weight-based package definitions.
type CatalogService interface {
	ListItemsGrouped(ctx context.Context) (map[string][]ServiceItemResponse, error)
	CreateItem(ctx context.Context, req ServiceItemRequest, actorID string) (*ServiceItemResponse, error)
	UpdateItem(ctx context.Context, id string, req ServiceItemRequest, actorID string) (*ServiceItemResponse, error)
	DeleteItem(ctx context.Context, id string, actorID string) error

	ListPackages(ctx context.Context) ([]PackageResponse, error)
	CreatePackage(ctx context.Context, req PackageRequest, actorID string) (*PackageResponse, error)
	UpdatePackage(ctx context.Context, id string, req PackageRequest, actorID string) (*PackageResponse, error)
	DeletePackage(ctx context.Context, id string, actorID string) error
}

type catalogService struct {
	itemRepo  repository.ServiceItemRepository
	pkgRepo   repository.PackageRepository
	auditRepo repository.AuditRepository
}

func NewCatalogService(
	itemRepo repository.ServiceItemRepository,
	pkgRepo repository.PackageRepository,
	auditRepo repository.AuditRepository,
) CatalogService {
	return &catalogService{itemRepo: itemRepo, pkgRepo: pkgRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *catalogService) ListItemsGrouped(ctx context.Context) (map[string][]ServiceItemResponse, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service items: %w", err)
	}

	grouped := make(map[string][]ServiceItemResponse)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], toServiceItemResponse(item))
	}
	return grouped, nil
}

func (s *catalogService) CreateItem(ctx context.Context, req ServiceItemRequest, actorID string) (*ServiceItemResponse, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	item := model.ServiceItem{Name: req.Name, Price: price, Category: req.Category}
	if err := s.itemRepo.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("failed to create service item: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreateServiceItem, item.ID.String(), item.Name, req)
	resp := toServiceItemResponse(item)
	return &resp, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, id string, req ServiceItemRequest, actorID string) (*ServiceItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service item not found: %w", err)
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	item.Name = req.Name
	item.Price = price
	item.Category = req.Category
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update service item: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateServiceItem, item.ID.String(), item.Name, req)
	resp := toServiceItemResponse(*item)
	return &resp, nil
}

func (s *catalogService) DeleteItem(ctx context.Context, id string, actorID string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("service item not found: %w", err)
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete service item: %w", err)
	}

	s.audit(ctx, actorID, model.ActionDeleteServiceItem, id, item.Name, nil)
	return nil
}

func (s *catalogService) ListPackages(ctx context.Context) ([]PackageResponse, error) {
	pkgs, err := s.pkgRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch packages: %w", err)
	}

	responses := make([]PackageResponse, 0, len(pkgs))
	for _, pkg := range pkgs {
		responses = append(responses, toPackageResponse(pkg))
	}
	return responses, nil
}

func (s *catalogService) CreatePackage(ctx context.Context, req PackageRequest, actorID string) (*PackageResponse, error) {
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate: %w", err)
	}

	pkg := model.PackageDefinition{PackageName: req.PackageName, Rate: rate}
	if err := s.pkgRepo.Create(ctx, &pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreatePackage, pkg.ID.String(), pkg.PackageName, req)
	resp := toPackageResponse(pkg)
	return &resp, nil
}

func (s *catalogService) UpdatePackage(ctx context.Context, id string, req PackageRequest, actorID string) (*PackageResponse, error) {
	pkgID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid package id: %w", err)
	}

	pkg, err := s.pkgRepo.FindByID(ctx, pkgID)
	if err != nil {
		return nil, fmt.Errorf("package not found: %w", err)
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate: %w", err)
	}

	pkg.PackageName = req.PackageName
	pkg.Rate = rate
	if err := s.pkgRepo.Update(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdatePackage, pkg.ID.String(), pkg.PackageName, req)
	resp := toPackageResponse(*pkg)
	return &resp, nil
}

func (s *catalogService) DeletePackage(ctx context.Context, id string, actorID string) error {
	pkgID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid package id: %w", err)
	}

	pkg, err := s.pkgRepo.FindByID(ctx, pkgID)
	if err != nil {
		return fmt.Errorf("package not found: %w", err)
	}

	if err := s.pkgRepo.Delete(ctx, pkgID); err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}

	s.audit(ctx, actorID, model.ActionDeletePackage, id, pkg.PackageName, nil)
	return nil
}

// audit records catalog mutations; failures are logged into the entry details
// best-effort and never fail the mutation itself.
func (s *catalogService) audit(ctx context.Context, actorID, action, entityID, entityName string, payload interface{}) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}

	details := "{}"
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			details = string(raw)
		}
	}

	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	_ = s.auditRepo.Log(ctx, &entry)
}

// --- Mapping ---

func toServiceItemResponse(item model.ServiceItem) ServiceItemResponse {
	return ServiceItemResponse{
		ID:       item.ID.String(),
		Name:     item.Name,
		Price:    item.Price.StringFixed(2),
		Category: item.Category,
	}
}

func toPackageResponse(pkg model.PackageDefinition) PackageResponse {
	return PackageResponse{
		ID:          pkg.ID.String(),
		PackageName: pkg.PackageName,
		Rate:        pkg.Rate.StringFixed(2),
	}
}
