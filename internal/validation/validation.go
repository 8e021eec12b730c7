package validation

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskup/internal/model"
)

// Register adds the enum validators used in request binding tags.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"task_status": func(fl validator.FieldLevel) bool {
			return model.TaskStatus(fl.Field().String()).Valid()
		},
		"task_priority": func(fl validator.FieldLevel) bool {
			return model.TaskPriority(fl.Field().String()).Valid()
		},
		"difficulty": func(fl validator.FieldLevel) bool {
			return model.Difficulty(fl.Field().String()).Valid()
		},
		"goal_status": func(fl validator.FieldLevel) bool {
			return model.GoalStatus(fl.Field().String()).Valid()
		},
		"redemption_status": func(fl validator.FieldLevel) bool {
			return model.RedemptionStatus(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}
