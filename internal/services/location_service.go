package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
)

// LocationService manages the storage hierarchy. Path and level are always
// derived from the ancestor chain, never set by callers.
type LocationService interface {
	Create(ctx context.Context, name string, locationType models.LocationType, parentID *uuid.UUID) (*models.Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, id uuid.UUID, name *string, locationType *models.LocationType, isActive *bool) (*models.Location, error)
	// Delete soft-deactivates a location. It refuses while the location still
	// has children or nonzero stock.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeInactive bool) ([]*models.Location, error)
}

type locationService struct {
	locationRepo repositories.LocationRepository
}

func NewLocationService(locationRepo repositories.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// PathSegment normalizes a location name into its path segment.
func PathSegment(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func (s *locationService) Create(ctx context.Context, name string, locationType models.LocationType, parentID *uuid.UUID) (*models.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if !locationType.Valid() {
		return nil, common.NewValidationError("type", "unrecognized location type")
	}

	path := "/" + PathSegment(name)
	level := 0
	if parentID != nil {
		parent, err := s.locationRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, common.NewNotFoundError("parent location")
		}
		path = parent.Path + "/" + PathSegment(name)
		level = parent.Level + 1
	}

	location := &models.Location{
		ID:       uuid.New(),
		Name:     name,
		Type:     locationType,
		ParentID: parentID,
		Path:     path,
		Level:    level,
		IsActive: true,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, common.NewStorageError("create location", err)
	}
	return location, nil
}

func (s *locationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

func (s *locationService) Update(ctx context.Context, id uuid.UUID, name *string, locationType *models.LocationType, isActive *bool) (*models.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, common.NewValidationError("name", "is required")
		}
		location.Name = *name
		// Renaming recomputes the materialized path from the parent chain.
		newPath := "/" + PathSegment(*name)
		if location.ParentID != nil {
			parent, err := s.locationRepo.GetByID(ctx, *location.ParentID)
			if err != nil {
				return nil, common.NewNotFoundError("parent location")
			}
			newPath = parent.Path + "/" + PathSegment(*name)
		}
		location.Path = newPath
	}
	if locationType != nil {
		if !locationType.Valid() {
			return nil, common.NewValidationError("type", "unrecognized location type")
		}
		location.Type = *locationType
	}
	if isActive != nil {
		location.IsActive = *isActive
	}

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, common.NewStorageError("update location", err)
	}
	return location, nil
}

func (s *locationService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.locationRepo.GetByID(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.locationRepo.HasChildren(ctx, id)
	if err != nil {
		return common.NewStorageError("check child locations", err)
	}
	if hasChildren {
		return common.NewConflictError("cannot delete location with sub-locations")
	}

	hasStock, err := s.locationRepo.HasStock(ctx, id)
	if err != nil {
		return common.NewStorageError("check location stock", err)
	}
	if hasStock {
		return common.NewConflictError("cannot delete location with stock on hand")
	}

	if err := s.locationRepo.Deactivate(ctx, id); err != nil {
		return common.NewStorageError("deactivate location", err)
	}
	return nil
}

func (s *locationService) List(ctx context.Context, includeInactive bool) ([]*models.Location, error) {
	return s.locationRepo.List(ctx, includeInactive)
}
