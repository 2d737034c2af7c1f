package api

import (
	"fmt"
	"strconv"
)

// Order is a customer order record. The server defines the shape, not us,
// so fields are kept as an open map and read defensively.
type Order map[string]any

// Text returns the string value under key, or "N/A" when absent or empty.
func (o Order) Text(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return "N/A"
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return "N/A"
	}
	return s
}

// Money returns the value under key formatted with two decimals,
// or "0.00" when absent or not numeric.
func (o Order) Money(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return "0.00"
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', 2, 64)
	case int:
		return strconv.FormatFloat(float64(n), 'f', 2, 64)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
	}
	return "0.00"
}

// Has reports whether key is present with a non-nil value.
func (o Order) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}
