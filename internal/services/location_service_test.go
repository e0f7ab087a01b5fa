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

func TestPathSegment(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Main Warehouse", "main-warehouse"},
		{"  Aisle   3  ", "aisle-3"},
		{"bin-07", "bin-07"},
		{"ZONE A", "zone-a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, PathSegment(tt.name))
	}
}

type LocationServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLocationRepository
	service  LocationService
	ctx      context.Context
}

func (suite *LocationServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockLocationRepository{}
	suite.service = NewLocationService(suite.mockRepo)
	suite.ctx = context.Background()
}

func (suite *LocationServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestLocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LocationServiceTestSuite))
}

func (suite *LocationServiceTestSuite) TestCreate_RootLocation() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Location")).Return(nil)

	location, err := suite.service.Create(suite.ctx, "Main Warehouse", models.LocationWarehouse, nil)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "/main-warehouse", location.Path)
	assert.Equal(suite.T(), 0, location.Level)
	assert.Nil(suite.T(), location.ParentID)
	assert.True(suite.T(), location.IsActive)
}

func (suite *LocationServiceTestSuite) TestCreate_ChildInheritsPathAndLevel() {
	parent := &models.Location{
		ID:    uuid.New(),
		Name:  "Main Warehouse",
		Type:  models.LocationWarehouse,
		Path:  "/main-warehouse",
		Level: 0,
	}
	suite.mockRepo.On("GetByID", suite.ctx, parent.ID).Return(parent, nil)
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Location")).Return(nil)

	location, err := suite.service.Create(suite.ctx, "Zone A", models.LocationZone, &parent.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "/main-warehouse/zone-a", location.Path)
	assert.Equal(suite.T(), 1, location.Level)
	assert.Equal(suite.T(), parent.ID, *location.ParentID)
}

func (suite *LocationServiceTestSuite) TestCreate_MissingParent() {
	parentID := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, parentID).Return(nil, common.NewNotFoundError("location"))

	_, err := suite.service.Create(suite.ctx, "Zone A", models.LocationZone, &parentID)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindNotFound, common.ErrorKind(err))
}

func (suite *LocationServiceTestSuite) TestCreate_RejectsUnknownType() {
	_, err := suite.service.Create(suite.ctx, "Somewhere", models.LocationType("attic"), nil)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindValidation, common.ErrorKind(err))
}

func (suite *LocationServiceTestSuite) TestUpdate_RenameRecomputesPath() {
	parent := &models.Location{ID: uuid.New(), Path: "/main-warehouse", Level: 0}
	location := &models.Location{
		ID:       uuid.New(),
		Name:     "Zone A",
		Type:     models.LocationZone,
		ParentID: &parent.ID,
		Path:     "/main-warehouse/zone-a",
		Level:    1,
		IsActive: true,
	}
	suite.mockRepo.On("GetByID", suite.ctx, location.ID).Return(location, nil)
	suite.mockRepo.On("GetByID", suite.ctx, parent.ID).Return(parent, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Location")).Return(nil)

	newName := "Zone B"
	updated, err := suite.service.Update(suite.ctx, location.ID, &newName, nil, nil)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Zone B", updated.Name)
	assert.Equal(suite.T(), "/main-warehouse/zone-b", updated.Path)
	assert.Equal(suite.T(), 1, updated.Level)
}

func (suite *LocationServiceTestSuite) TestDelete_RefusesWithChildren() {
	location := &models.Location{ID: uuid.New(), Name: "Main Warehouse", IsActive: true}
	suite.mockRepo.On("GetByID", suite.ctx, location.ID).Return(location, nil)
	suite.mockRepo.On("HasChildren", suite.ctx, location.ID).Return(true, nil)

	err := suite.service.Delete(suite.ctx, location.ID)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindConflict, common.ErrorKind(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "Deactivate", mock.Anything, mock.Anything)
}

func (suite *LocationServiceTestSuite) TestDelete_RefusesWithStock() {
	location := &models.Location{ID: uuid.New(), Name: "Bin 7", IsActive: true}
	suite.mockRepo.On("GetByID", suite.ctx, location.ID).Return(location, nil)
	suite.mockRepo.On("HasChildren", suite.ctx, location.ID).Return(false, nil)
	suite.mockRepo.On("HasStock", suite.ctx, location.ID).Return(true, nil)

	err := suite.service.Delete(suite.ctx, location.ID)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), common.KindConflict, common.ErrorKind(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "Deactivate", mock.Anything, mock.Anything)
}

func (suite *LocationServiceTestSuite) TestDelete_DeactivatesEmptyLeaf() {
	location := &models.Location{ID: uuid.New(), Name: "Bin 7", IsActive: true}
	suite.mockRepo.On("GetByID", suite.ctx, location.ID).Return(location, nil)
	suite.mockRepo.On("HasChildren", suite.ctx, location.ID).Return(false, nil)
	suite.mockRepo.On("HasStock", suite.ctx, location.ID).Return(false, nil)
	suite.mockRepo.On("Deactivate", suite.ctx, location.ID).Return(nil)

	err := suite.service.Delete(suite.ctx, location.ID)

	assert.NoError(suite.T(), err)
}
