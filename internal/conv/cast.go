package conv

import (
	"fmt"
	"math"
)

// IntToInt32 converts int to int32 safely.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// Indexable reports an error when n items cannot all be addressed by an int32 index.
func Indexable(n int) error {
	if _, err := IntToInt32(n); err != nil {
		return fmt.Errorf("%d items exceed the int32 index range: %w", n, err)
	}
	return nil
}
