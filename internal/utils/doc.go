// Package utils provides payload limits shared by the transport and the
// protocol dispatcher.
//
// Validation:
//   - JSON size limits for request bodies and tool arguments
//   - JSON nesting depth limits
//
// Example Usage:
//
//	validator := utils.DefaultJSONValidator()
//	err := validator.ValidateSize(body)
package utils
