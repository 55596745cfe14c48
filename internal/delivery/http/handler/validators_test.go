package handler

import (
	"sync"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRegistration(t *testing.T, engine func() any) {
	t.Helper()
	registerOnce = sync.Once{}
	registerErr = nil
	validatorEngine = engine
	t.Cleanup(func() {
		registerOnce = sync.Once{}
		registerErr = nil
		validatorEngine = binding.Validator.Engine
	})
}

func TestRegisterValidatorsReportsFailureOnEveryCall(t *testing.T) {
	resetRegistration(t, func() any { return "not a validator" })

	err := RegisterValidators()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected binding validator engine string")
	assert.Equal(t, err, RegisterValidators())
}

func TestRegisterValidatorsIsIdempotent(t *testing.T) {
	resetRegistration(t, binding.Validator.Engine)

	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	v := binding.Validator.Engine().(*validator.Validate)
	type body struct {
		Sports *[]string `json:"sports" binding:"required,dive,sport"`
	}
	assert.NoError(t, v.Struct(body{Sports: &[]string{"tennis"}}))
	assert.NoError(t, v.Struct(body{Sports: &[]string{}}))
	assert.Error(t, v.Struct(body{Sports: &[]string{"Quidditch"}}))
	assert.Error(t, v.Struct(body{}))
}
