package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"stocktrail/internal/common"
	"stocktrail/internal/importer"
	"stocktrail/internal/services"
)

// ItemHandlers handles item catalog HTTP requests
type ItemHandlers struct {
	itemService services.ItemService
	csvImporter *importer.CSVImporter
}

func NewItemHandlers(itemService services.ItemService, csvImporter *importer.CSVImporter) *ItemHandlers {
	return &ItemHandlers{
		itemService: itemService,
		csvImporter: csvImporter,
	}
}

// CreateItem registers a new catalog item, optionally with opening stock.
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.ItemCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	item, err := h.itemService.Create(ctx, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"item": item,
	})
}

// GetItem returns one item with its stock allocations.
func (h *ItemHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	item, err := h.itemService.GetByID(ctx, itemID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item": item,
	})
}

// UpdateItem patches item fields. Quantity changes in the allocation list are
// recorded as adjustment movements credited to the caller.
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.ItemUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	role, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	item, err := h.itemService.Update(ctx, itemID, &req, userID, role)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item": item,
	})
}

// DeleteItem soft-deactivates an item. History stays queryable.
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.itemService.Deactivate(ctx, itemID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Item deactivated successfully",
	})
}

// ItemListRequest represents query parameters for listing items
type ItemListRequest struct {
	IncludeInactive bool `query:"include_inactive"`
	Limit           int  `query:"limit"`
	Offset          int  `query:"offset"`
}

// ListItems returns the catalog with per-item stock totals.
func (h *ItemHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	var req ItemListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(req.Limit, req.Offset)

	items, err := h.itemService.List(ctx, req.IncludeInactive, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// ListCategories returns the distinct categories of active items.
func (h *ItemHandlers) ListCategories(c echo.Context) error {
	categories, err := h.itemService.Categories(c.Request().Context())
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// ImportCSV bulk-loads items and locations from an uploaded CSV file.
// With preview=true nothing is written; the response reports what would
// happen.
func (h *ItemHandlers) ImportCSV(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "CSV file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}

	preview := c.QueryParam("preview") == "true"
	result, err := h.csvImporter.Import(ctx, string(data), preview)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
