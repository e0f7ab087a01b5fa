package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

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

type ItemServiceTestSuite struct {
	suite.Suite
	mockItems     *MockItemRepository
	mockStock     *MockStockRepository
	mockMovements *MockMovementService
	service       ItemService
	ctx           context.Context
	editorID      uuid.UUID
}

func (suite *ItemServiceTestSuite) SetupTest() {
	suite.mockItems = &MockItemRepository{}
	suite.mockStock = &MockStockRepository{}
	suite.mockMovements = &MockMovementService{}
	suite.service = NewItemService(suite.mockItems, suite.mockStock, suite.mockMovements, nil)
	suite.ctx = context.Background()
	suite.editorID = uuid.New()
}

func (suite *ItemServiceTestSuite) TearDownTest() {
	suite.mockItems.AssertExpectations(suite.T())
	suite.mockStock.AssertExpectations(suite.T())
	suite.mockMovements.AssertExpectations(suite.T())
}

func TestItemServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ItemServiceTestSuite))
}

func (suite *ItemServiceTestSuite) TestCreate_SeedsOpeningAllocation() {
	locationID := uuid.New()
	minThreshold := 5

	suite.mockItems.On("GetBySKU", suite.ctx, "WID-1").Return(nil, common.NewNotFoundError("item"))
	suite.mockItems.On("Create", suite.ctx, mock.AnythingOfType("*models.Item")).Return(nil)
	suite.mockStock.On("UpsertThresholds", suite.ctx, mock.AnythingOfType("uuid.UUID"), locationID, &minThreshold, (*int)(nil)).Return(nil)
	suite.mockStock.On("ApplyDelta", suite.ctx, mock.AnythingOfType("uuid.UUID"), locationID, 25).Return(25, nil)
	suite.mockStock.On("ListByItem", suite.ctx, mock.AnythingOfType("uuid.UUID")).Return([]*models.StockAllocation{
		{LocationID: locationID, Quantity: 25},
	}, nil)

	item, err := suite.service.Create(suite.ctx, &ItemCreate{
		SKU:  "WID-1",
		Name: "Widget",
		Unit: "pcs",
		Allocations: []*models.StockAllocationInput{
			{LocationID: locationID, Quantity: 25, MinThreshold: &minThreshold},
		},
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "WID-1", item.SKU)
	assert.Equal(suite.T(), 25, item.TotalStock)
	suite.mockMovements.AssertNotCalled(suite.T(), "Submit", mock.Anything, mock.Anything)
}

func (suite *ItemServiceTestSuite) TestCreate_RejectsDuplicateSKU() {
	existing := &models.Item{ID: uuid.New(), SKU: "WID-1"}
	suite.mockItems.On("GetBySKU", suite.ctx, "WID-1").Return(existing, nil)

	_, err := suite.service.Create(suite.ctx, &ItemCreate{SKU: "WID-1", Name: "Widget", Unit: "pcs"})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindValidation, common.ErrorKind(err))
}

func (suite *ItemServiceTestSuite) TestCreate_RequiresSKU() {
	_, err := suite.service.Create(suite.ctx, &ItemCreate{Name: "Widget", Unit: "pcs"})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindValidation, common.ErrorKind(err))
}

func (suite *ItemServiceTestSuite) TestUpdate_QuantityIncreaseBecomesAdjustment() {
	item := &models.Item{ID: uuid.New(), SKU: "WID-1", Name: "Widget", Unit: "pcs", IsActive: true}
	locationID := uuid.New()

	suite.mockItems.On("GetByID", suite.ctx, item.ID).Return(item, nil)
	suite.mockItems.On("Update", suite.ctx, item).Return(nil)
	suite.mockStock.On("UpsertThresholds", suite.ctx, item.ID, locationID, (*int)(nil), (*int)(nil)).Return(nil)
	suite.mockStock.On("GetQuantity", suite.ctx, item.ID, locationID).Return(10, nil)
	suite.mockMovements.On("Submit", suite.ctx, mock.MatchedBy(func(req *models.MovementRequest) bool {
		return req.MovementType == models.MovementAdjustmentIncrease &&
			req.Quantity == 8 &&
			req.Reason == "stock correction via item edit" &&
			req.RequestedBy == suite.editorID
	})).Return(&models.MovementResult{}, nil)
	suite.mockStock.On("ListByItem", suite.ctx, item.ID).Return([]*models.StockAllocation{
		{LocationID: locationID, Quantity: 18},
	}, nil)

	updated, err := suite.service.Update(suite.ctx, item.ID, &ItemUpdate{
		Allocations: []*models.StockAllocationInput{{LocationID: locationID, Quantity: 18}},
	}, suite.editorID, models.RoleManager)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 18, updated.TotalStock)
}

func (suite *ItemServiceTestSuite) TestUpdate_QuantityDecreaseBecomesAdjustment() {
	item := &models.Item{ID: uuid.New(), SKU: "WID-1", Name: "Widget", Unit: "pcs", IsActive: true}
	locationID := uuid.New()

	suite.mockItems.On("GetByID", suite.ctx, item.ID).Return(item, nil)
	suite.mockItems.On("Update", suite.ctx, item).Return(nil)
	suite.mockStock.On("UpsertThresholds", suite.ctx, item.ID, locationID, (*int)(nil), (*int)(nil)).Return(nil)
	suite.mockStock.On("GetQuantity", suite.ctx, item.ID, locationID).Return(10, nil)
	suite.mockMovements.On("Submit", suite.ctx, mock.MatchedBy(func(req *models.MovementRequest) bool {
		return req.MovementType == models.MovementAdjustmentDecrease && req.Quantity == 4
	})).Return(&models.MovementResult{}, nil)
	suite.mockStock.On("ListByItem", suite.ctx, item.ID).Return([]*models.StockAllocation{
		{LocationID: locationID, Quantity: 6},
	}, nil)

	_, err := suite.service.Update(suite.ctx, item.ID, &ItemUpdate{
		Allocations: []*models.StockAllocationInput{{LocationID: locationID, Quantity: 6}},
	}, suite.editorID, models.RoleAdmin)

	assert.NoError(suite.T(), err)
}

func (suite *ItemServiceTestSuite) TestUpdate_UnchangedQuantitySkipsMovement() {
	item := &models.Item{ID: uuid.New(), SKU: "WID-1", Name: "Widget", Unit: "pcs", IsActive: true}
	locationID := uuid.New()

	suite.mockItems.On("GetByID", suite.ctx, item.ID).Return(item, nil)
	suite.mockItems.On("Update", suite.ctx, item).Return(nil)
	suite.mockStock.On("UpsertThresholds", suite.ctx, item.ID, locationID, (*int)(nil), (*int)(nil)).Return(nil)
	suite.mockStock.On("GetQuantity", suite.ctx, item.ID, locationID).Return(10, nil)
	suite.mockStock.On("ListByItem", suite.ctx, item.ID).Return([]*models.StockAllocation{
		{LocationID: locationID, Quantity: 10},
	}, nil)

	_, err := suite.service.Update(suite.ctx, item.ID, &ItemUpdate{
		Allocations: []*models.StockAllocationInput{{LocationID: locationID, Quantity: 10}},
	}, suite.editorID, models.RoleAdmin)

	assert.NoError(suite.T(), err)
	suite.mockMovements.AssertNotCalled(suite.T(), "Submit", mock.Anything, mock.Anything)
}

func (suite *ItemServiceTestSuite) TestDeactivate_MissingItem() {
	id := uuid.New()
	suite.mockItems.On("GetByID", suite.ctx, id).Return(nil, common.NewNotFoundError("item"))

	err := suite.service.Deactivate(suite.ctx, id)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindNotFound, common.ErrorKind(err))
}
