package utils

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Size and nesting limits for protocol payloads
const (
	MaxRequestSize   = 1 * 1024 * 1024 // 1MB - one JSON-RPC request body
	MaxArgumentsSize = 16 * 1024       // 16KB - tool arguments object
	MaxArgumentDepth = 8
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the request size limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxRequestSize)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	size := len(data)
	if size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateArguments bounds the size and nesting of a tool arguments object
func ValidateArguments(args map[string]interface{}) error {
	if err := ValidateJSONDepth(args, MaxArgumentDepth); err != nil {
		return fmt.Errorf("arguments: %w", err)
	}

	data, err := sonic.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := NewJSONSizeValidator(MaxArgumentsSize).ValidateSize(data); err != nil {
		return fmt.Errorf("arguments: %w", err)
	}
	return nil
}
