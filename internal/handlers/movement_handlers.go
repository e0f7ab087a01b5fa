package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/services"
)

// MovementHandlers handles stock movement HTTP requests
type MovementHandlers struct {
	movementService   services.MovementService
	attachmentService services.AttachmentService
}

func NewMovementHandlers(movementService services.MovementService, attachmentService services.AttachmentService) *MovementHandlers {
	return &MovementHandlers{
		movementService:   movementService,
		attachmentService: attachmentService,
	}
}

// SubmitMovement handles movement submission. Any authenticated role may
// submit; Staff movements simply queue for review.
func (h *MovementHandlers) SubmitMovement(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.MovementRequest
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
	req.RequestedBy = userID
	req.Role = role

	result, err := h.movementService.Submit(ctx, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if result.TransferReference != nil {
		return c.JSON(http.StatusCreated, map[string]interface{}{
			"movements":          result.Movements,
			"transfer_reference": *result.TransferReference,
		})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"movement": result.Movements[0],
	})
}

// ResolveMovementRequest carries the target terminal status.
type ResolveMovementRequest struct {
	Status models.MovementStatus `json:"status"`
}

// ResolveMovement approves or rejects a pending movement.
func (h *MovementHandlers) ResolveMovement(c echo.Context) error {
	ctx := c.Request().Context()

	movementID, err := common.ValidateUUID(c.Param("id"), "movement id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req ResolveMovementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	movement, err := h.movementService.Resolve(ctx, movementID, req.Status, userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movement": movement,
	})
}

// ListMovements returns movements newest-first with optional filters.
func (h *MovementHandlers) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()

	var filter models.MovementFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	movements, err := h.movementService.List(ctx, &filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"count":     len(movements),
	})
}

// ListPendingMovements returns the FIFO review queue, oldest first.
func (h *MovementHandlers) ListPendingMovements(c echo.Context) error {
	movements, err := h.movementService.ListPending(c.Request().Context())
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
	})
}

// MovementHistoryRequest represents query parameters for item history
type MovementHistoryRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ItemMovementHistory returns the paginated audit trail for one item.
func (h *MovementHandlers) ItemMovementHistory(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req MovementHistoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	movements, total, err := h.movementService.HistoryByItem(ctx, itemID, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
	})
}

// AttachFile uploads a supporting document for a movement.
func (h *MovementHandlers) AttachFile(c echo.Context) error {
	ctx := c.Request().Context()

	movementID, err := common.ValidateUUID(c.Param("id"), "movement id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	objectName, err := h.attachmentService.Attach(ctx, movementID, fileHeader.Filename, file,
		fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"attachment_url": objectName,
	})
}

// AttachmentURL returns a presigned download link for a movement's attachment.
func (h *MovementHandlers) AttachmentURL(c echo.Context) error {
	ctx := c.Request().Context()

	movementID, err := common.ValidateUUID(c.Param("id"), "movement id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.attachmentService.PresignedURL(ctx, movementID, 15*time.Minute)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
	})
}
