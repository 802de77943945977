package hh

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode unmarshals body into T and validates the required fields.
func decode[T any](body json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := validate.Struct(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &v, nil
}

// decodeLenient unmarshals body into T without validation.
func decodeLenient[T any](body json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &v, nil
}

// isEmptyList reports whether body is an empty JSON array.
func isEmptyList(body json.RawMessage) bool {
	var l []json.RawMessage
	return json.Unmarshal(body, &l) == nil && l != nil && len(l) == 0
}

// isEmptyObject reports whether body is an empty JSON object.
func isEmptyObject(body json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(body, &m) == nil && m != nil && len(m) == 0
}
