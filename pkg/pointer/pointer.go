package pointer

// To returns a pointer to a copy of value
func To[T any](value T) *T {
	return &value
}

// Copy returns a pointer to a copy of the value pointed at, or nil
func Copy[T any](value *T) *T {
	if value == nil {
		return nil
	}
	return To(*value)
}

// IfValid returns a pointer to value when valid is true, otherwise nil. It's
// useful for mapping nullable SQL columns.
func IfValid[T any](valid bool, value T) *T {
	if !valid {
		return nil
	}
	return &value
}

// OrDefault returns value, unless it's nil, in which case a pointer to
// defaultValue is returned
func OrDefault[T any](value *T, defaultValue T) *T {
	if value != nil {
		return value
	}
	return &defaultValue
}
