package shop

import (
	"fmt"
	"math"
)

// requireFloat64 extracts a float64 from args by key. Returns a clear error distinguishing
// "missing" from "wrong type", and never panics on nil values.
func requireFloat64(args map[string]any, key string) (float64, error) {
	v, exists := args[key]
	if !exists || v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
	return f, nil
}

// requireProductID extracts a positive whole-number product id.
func requireProductID(args map[string]any, key string) (int, error) {
	f, err := requireFloat64(args, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a positive integer, got %v", key, f)
	}
	return int(f), nil
}
