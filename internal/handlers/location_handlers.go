package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/services"
)

// LocationHandlers handles storage hierarchy HTTP requests
type LocationHandlers struct {
	locationService services.LocationService
}

func NewLocationHandlers(locationService services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

// CreateLocationRequest represents a location creation payload.
type CreateLocationRequest struct {
	Name     string              `json:"name"`
	Type     models.LocationType `json:"type"`
	ParentID *uuid.UUID          `json:"parent_id"`
}

// CreateLocation adds a node to the storage hierarchy.
func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	location, err := h.locationService.Create(ctx, req.Name, req.Type, req.ParentID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"location": location,
	})
}

// GetLocation returns one location by id.
func (h *LocationHandlers) GetLocation(c echo.Context) error {
	ctx := c.Request().Context()

	locationID, err := common.ValidateUUID(c.Param("id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	location, err := h.locationService.GetByID(ctx, locationID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"location": location,
	})
}

// UpdateLocationRequest represents a location patch payload.
type UpdateLocationRequest struct {
	Name     *string              `json:"name"`
	Type     *models.LocationType `json:"type"`
	IsActive *bool                `json:"is_active"`
}

// UpdateLocation renames or retypes a location. Renaming recomputes the
// node's path segment.
func (h *LocationHandlers) UpdateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	locationID, err := common.ValidateUUID(c.Param("id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	location, err := h.locationService.Update(ctx, locationID, req.Name, req.Type, req.IsActive)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"location": location,
	})
}

// DeleteLocation deactivates an empty, childless location.
func (h *LocationHandlers) DeleteLocation(c echo.Context) error {
	ctx := c.Request().Context()

	locationID, err := common.ValidateUUID(c.Param("id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.locationService.Delete(ctx, locationID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Location deactivated successfully",
	})
}

// ListLocations returns the hierarchy in path order, so children follow
// their parents.
func (h *LocationHandlers) ListLocations(c echo.Context) error {
	includeInactive := c.QueryParam("include_inactive") == "true"

	locations, err := h.locationService.List(c.Request().Context(), includeInactive)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"locations": locations,
	})
}
