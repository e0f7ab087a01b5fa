package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stocktrail/internal/models"
)

func TestApprovalPolicy_Decide(t *testing.T) {
	policy := NewApprovalPolicy()

	tests := []struct {
		name            string
		role            models.Role
		movementType    models.MovementType
		quantity        int
		currentQuantity int
		expected        models.MovementStatus
	}{
		{
			name:            "staff receive always queues",
			role:            models.RoleStaff,
			movementType:    models.MovementReceive,
			quantity:        50,
			currentQuantity: 0,
			expected:        models.MovementPending,
		},
		{
			name:            "staff adjustment always queues",
			role:            models.RoleStaff,
			movementType:    models.MovementAdjustmentIncrease,
			quantity:        1,
			currentQuantity: 1000,
			expected:        models.MovementPending,
		},
		{
			name:            "admin receive approves immediately",
			role:            models.RoleAdmin,
			movementType:    models.MovementReceive,
			quantity:        50,
			currentQuantity: 0,
			expected:        models.MovementApproved,
		},
		{
			name:            "manager sale approves immediately",
			role:            models.RoleManager,
			movementType:    models.MovementSale,
			quantity:        10,
			currentQuantity: 100,
			expected:        models.MovementApproved,
		},
		{
			name:            "manager adjustment above threshold queues",
			role:            models.RoleManager,
			movementType:    models.MovementAdjustmentIncrease,
			quantity:        30,
			currentQuantity: 100,
			expected:        models.MovementPending,
		},
		{
			name:            "manager adjustment below threshold approves",
			role:            models.RoleManager,
			movementType:    models.MovementAdjustmentDecrease,
			quantity:        15,
			currentQuantity: 100,
			expected:        models.MovementApproved,
		},
		{
			name:            "adjustment at exactly 20 percent approves",
			role:            models.RoleAdmin,
			movementType:    models.MovementAdjustmentIncrease,
			quantity:        20,
			currentQuantity: 100,
			expected:        models.MovementApproved,
		},
		{
			name:            "adjustment just above 20 percent queues",
			role:            models.RoleAdmin,
			movementType:    models.MovementAdjustmentIncrease,
			quantity:        21,
			currentQuantity: 100,
			expected:        models.MovementPending,
		},
		{
			name:            "adjustment against zero baseline queues",
			role:            models.RoleAdmin,
			movementType:    models.MovementAdjustmentIncrease,
			quantity:        5,
			currentQuantity: 0,
			expected:        models.MovementPending,
		},
		{
			name:            "admin disposal approves immediately",
			role:            models.RoleAdmin,
			movementType:    models.MovementDisposal,
			quantity:        500,
			currentQuantity: 10,
			expected:        models.MovementApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Decide(tt.role, tt.movementType, tt.quantity, tt.currentQuantity)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMovementType_Sign(t *testing.T) {
	inbound := []models.MovementType{
		models.MovementReceive,
		models.MovementProduction,
		models.MovementReturnFromCustomer,
		models.MovementTransferIn,
		models.MovementAdjustmentIncrease,
	}
	outbound := []models.MovementType{
		models.MovementSale,
		models.MovementTransferOut,
		models.MovementDisposal,
		models.MovementReturnToSupplier,
		models.MovementAdjustmentDecrease,
	}

	for _, mt := range inbound {
		assert.Equal(t, +1, mt.Sign(), "expected %s to be inbound", mt)
		assert.True(t, mt.Valid())
	}
	for _, mt := range outbound {
		assert.Equal(t, -1, mt.Sign(), "expected %s to be outbound", mt)
		assert.True(t, mt.Valid())
	}

	assert.False(t, models.MovementType("teleport").Valid())
}
