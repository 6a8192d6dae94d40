package sessions

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type createRequest struct {
	Sample   bool            `json:"sample"`
	Document json.RawMessage `json:"document,omitempty"`
}

type fieldUpdateRequest struct {
	Field string  `json:"field" validate:"required,max=64"`
	Value *string `json:"value" validate:"required,max=20000"`
}

type skillUpdateRequest struct {
	Value *string `json:"value" validate:"required,max=200"`
}

// Validate validates the fieldUpdateRequest using the validator.
func (r fieldUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the skillUpdateRequest using the validator.
func (r skillUpdateRequest) Validate() error {
	return validate.Struct(r)
}
