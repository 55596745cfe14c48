package handler

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

var (
	registerOnce sync.Once
	registerErr  error

	validatorEngine = binding.Validator.Engine
)

// RegisterValidators installs the catalog validators on gin's binding engine.
// Registration runs once; every call reports its outcome.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = register(validatorEngine())
	})
	return registerErr
}

func register(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", engine)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validators := map[string]validator.Func{
		"sport": func(fl validator.FieldLevel) bool {
			_, ok := domain.CanonicalSport(fl.Field().String())
			return ok
		},
		"gym_level": func(fl validator.FieldLevel) bool {
			_, err := domain.ParseGymLevel(fl.Field().String())
			return err == nil
		},
		"workout_goal": func(fl validator.FieldLevel) bool {
			_, ok := domain.CanonicalWorkoutGoal(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
