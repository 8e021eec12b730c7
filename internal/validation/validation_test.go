package validation_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskup/internal/model"
	"taskup/internal/validation"
)

type request struct {
	Status     model.TaskStatus       `validate:"omitempty,task_status"`
	Priority   model.TaskPriority     `validate:"omitempty,task_priority"`
	Difficulty model.Difficulty       `validate:"omitempty,difficulty"`
	Goal       model.GoalStatus       `validate:"omitempty,goal_status"`
	Redemption model.RedemptionStatus `validate:"omitempty,redemption_status"`
}

func TestRegisterOn(t *testing.T) {
	v := validator.New()
	require.NoError(t, validation.RegisterOn(v))

	tests := []struct {
		name  string
		req   request
		valid bool
	}{
		{"empty fields are skipped", request{}, true},
		{"all known values", request{
			Status:     model.StatusInReview,
			Priority:   model.PriorityUrgent,
			Difficulty: model.DifficultyHard,
			Goal:       model.GoalCompleted,
			Redemption: model.RedemptionCancelled,
		}, true},
		{"unknown status", request{Status: "archived"}, false},
		{"unknown priority", request{Priority: "critical"}, false},
		{"unknown difficulty", request{Difficulty: "extreme"}, false},
		{"unknown goal status", request{Goal: "paused"}, false},
		{"unknown redemption status", request{Redemption: "refunded"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegister_GinEngine(t *testing.T) {
	assert.NoError(t, validation.Register())
}
