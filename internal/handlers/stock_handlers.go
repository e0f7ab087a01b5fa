package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"stocktrail/internal/common"
	"stocktrail/internal/services"
)

// StockHandlers exposes read-only views over the stock ledger.
type StockHandlers struct {
	stockService services.StockService
}

func NewStockHandlers(stockService services.StockService) *StockHandlers {
	return &StockHandlers{stockService: stockService}
}

// GetQuantity returns the current quantity of an item at a location.
func (h *StockHandlers) GetQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("item_id"), "item id")
	if err != nil {
		return common.SendValidationError(c, "item_id", err.Error())
	}
	locationID, err := common.ValidateUUID(c.Param("location_id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "location_id", err.Error())
	}

	quantity, err := h.stockService.GetQuantity(ctx, itemID, locationID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item_id":     itemID,
		"location_id": locationID,
		"quantity":    quantity,
	})
}

// ItemAllocations returns every location allocation for an item.
func (h *StockHandlers) ItemAllocations(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	allocations, err := h.stockService.AllocationsByItem(ctx, itemID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"allocations": allocations,
	})
}

// LowStock returns allocations at or below their minimum threshold.
func (h *StockHandlers) LowStock(c echo.Context) error {
	allocations, err := h.stockService.LowStock(c.Request().Context())
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"allocations": allocations,
		"count":       len(allocations),
	})
}
