package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
)

type MockMovementService struct {
	mock.Mock
}

func (m *MockMovementService) Submit(ctx context.Context, req *models.MovementRequest) (*models.MovementResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MovementResult), args.Error(1)
}

func (m *MockMovementService) Resolve(ctx context.Context, movementID uuid.UUID, decision models.MovementStatus, resolverID uuid.UUID) (*models.StockMovement, error) {
	args := m.Called(ctx, movementID, decision, resolverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockMovement), args.Error(1)
}

func (m *MockMovementService) List(ctx context.Context, filter *models.MovementFilter) ([]*models.StockMovement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.StockMovement), args.Error(1)
}

func (m *MockMovementService) ListPending(ctx context.Context) ([]*models.StockMovement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.StockMovement), args.Error(1)
}

func (m *MockMovementService) HistoryByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error) {
	args := m.Called(ctx, itemID, limit, offset)
	return args.Get(0).([]*models.StockMovement), args.Int(1), args.Error(2)
}

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Attach(ctx context.Context, movementID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, movementID, filename, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentService) PresignedURL(ctx context.Context, movementID uuid.UUID, expiry time.Duration) (string, error) {
	args := m.Called(ctx, movementID, expiry)
	return args.String(0), args.Error(1)
}

func authenticatedContext(t *testing.T, method, path, body string, userID uuid.UUID, role models.Role) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	ctx := context.WithValue(req.Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.RoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSubmitMovement_Created(t *testing.T) {
	mockSvc := &MockMovementService{}
	h := NewMovementHandlers(mockSvc, nil)
	userID := uuid.New()

	movement := &models.StockMovement{ID: uuid.New(), Status: models.MovementApproved}
	mockSvc.On("Submit", mock.Anything, mock.MatchedBy(func(req *models.MovementRequest) bool {
		return req.MovementType == models.MovementReceive &&
			req.Quantity == 50 &&
			req.RequestedBy == userID &&
			req.Role == models.RoleAdmin
	})).Return(&models.MovementResult{Movements: []*models.StockMovement{movement}}, nil)

	body := `{"item_id":"` + uuid.NewString() + `","location_id":"` + uuid.NewString() + `","movement_type":"receive","quantity":50,"reason":"shipment arrival"}`
	c, rec := authenticatedContext(t, http.MethodPost, "/v1/stock-movements", body, userID, models.RoleAdmin)

	err := h.SubmitMovement(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestSubmitMovement_TransferIncludesReference(t *testing.T) {
	mockSvc := &MockMovementService{}
	h := NewMovementHandlers(mockSvc, nil)
	userID := uuid.New()

	ref := "TRF-12345"
	mockSvc.On("Submit", mock.Anything, mock.Anything).Return(&models.MovementResult{
		Movements:         []*models.StockMovement{{}, {}},
		TransferReference: &ref,
	}, nil)

	body := `{"item_id":"` + uuid.NewString() + `","location_id":"` + uuid.NewString() + `","to_location_id":"` + uuid.NewString() + `","movement_type":"transfer_out","quantity":10,"reason":"rebalance"}`
	c, rec := authenticatedContext(t, http.MethodPost, "/v1/stock-movements", body, userID, models.RoleAdmin)

	err := h.SubmitMovement(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "transfer_reference")
}

func TestSubmitMovement_UnauthenticatedRequest(t *testing.T) {
	mockSvc := &MockMovementService{}
	h := NewMovementHandlers(mockSvc, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/stock-movements", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SubmitMovement(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestResolveMovement_ConflictSurfacesAs409(t *testing.T) {
	mockSvc := &MockMovementService{}
	h := NewMovementHandlers(mockSvc, nil)
	userID := uuid.New()
	movementID := uuid.New()

	mockSvc.On("Resolve", mock.Anything, movementID, models.MovementApproved, userID).
		Return(nil, common.NewConflictError("movement is already approved"))

	c, rec := authenticatedContext(t, http.MethodPatch, "/v1/stock-movements/"+movementID.String(),
		`{"status":"approved"}`, userID, models.RoleManager)
	c.SetParamNames("id")
	c.SetParamValues(movementID.String())

	err := h.ResolveMovement(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp common.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, common.KindConflict, resp.Error.Code)
}

func TestResolveMovement_InvalidID(t *testing.T) {
	mockSvc := &MockMovementService{}
	h := NewMovementHandlers(mockSvc, nil)

	c, rec := authenticatedContext(t, http.MethodPatch, "/v1/stock-movements/nope",
		`{"status":"approved"}`, uuid.New(), models.RoleManager)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.ResolveMovement(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListPendingMovements(t *testing.T) {
	mockSvc := &MockMovementService{}
	h := NewMovementHandlers(mockSvc, nil)

	pending := []*models.StockMovement{
		{ID: uuid.New(), Status: models.MovementPending},
		{ID: uuid.New(), Status: models.MovementPending},
	}
	mockSvc.On("ListPending", mock.Anything).Return(pending, nil)

	c, rec := authenticatedContext(t, http.MethodGet, "/v1/stock-movements/pending", "", uuid.New(), models.RoleManager)

	err := h.ListPendingMovements(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Movements []*models.StockMovement `json:"movements"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Movements, 2)
}
