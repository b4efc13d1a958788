package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
	Name   string `json:"full_name" validate:"omitempty,min=2"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(sampleRequest{Email: "a@b.io", Rating: 3}))

	errs := ValidateStruct(sampleRequest{Email: "nope", Rating: 9, Name: "x"})
	assert.Equal(t, "must be a valid email", errs["email"])
	assert.Equal(t, "must be less than or equal to 5", errs["rating"])
	assert.Equal(t, "must be at least 2", errs["full_name"])
}
