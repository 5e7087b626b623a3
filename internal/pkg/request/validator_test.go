package request

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sampleDto struct {
	OwnerID string   `validate:"required"`
	Tags    []string `validate:"dive,min=2"`
}

func (sampleDto) GetMessages() ValidatorMessages {
	return ValidatorMessages{
		"OwnerID.required": "ownerId is required",
		"Tags.*.min":       "tag too short",
	}
}

type plainDto struct {
	OwnerID string `validate:"required"`
}

func TestGetError(t *testing.T) {
	v := validator.New()

	err := GetError(sampleDto{}, v.Struct(sampleDto{}))
	assert.Equal(t, "ownerId is required", err.ErrorDesc())

	err = GetError(sampleDto{}, v.Struct(sampleDto{OwnerID: "o", Tags: []string{"ok", "x"}}))
	assert.Equal(t, "tag too short", err.ErrorDesc())

	err = GetError(plainDto{}, v.Struct(plainDto{}))
	assert.Contains(t, err.ErrorDesc(), "OwnerID")

	err = GetError(plainDto{}, errors.New("not a validation error"))
	assert.Equal(t, "Parameter error", err.ErrorDesc())
}
