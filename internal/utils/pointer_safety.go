// Package utils holds small generic helpers shared across packages.
package utils

// Value dereferences v, substituting the zero value when v is nil. Response
// payloads use pointer fields to tell "absent" from "zero"; Value reads them
// without a nil check at every site.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v, so optional fields can be filled inline.
func Ptr[T any](v T) *T {
	return &v
}
