package reviewing

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
)

// CreateFromValues is Create for callers holding untyped input, like a decoded
// JSON body. Each value has to already be of the right kind: the string "2020"
// is not a year. JSON numbers need to be decoded with UseNumber.
func (r *Repository) CreateFromValues(ctx context.Context, year, summary, employeeID any) (*Review, error) {
	y, ok := asInteger(year)
	if !ok {
		return nil, &InvalidArgumentError{Field: "year", Reason: "must be an integer"}
	}
	if y < minYear {
		return nil, &InvalidArgumentError{Field: "year", Reason: "must be greater than or equal to " + strconv.Itoa(minYear)}
	}
	if y > maxYear {
		return nil, &InvalidArgumentError{Field: "year", Reason: "must be less than or equal to " + strconv.Itoa(maxYear)}
	}

	s, ok := summary.(string)
	if !ok || s == "" {
		return nil, &InvalidArgumentError{Field: "summary", Reason: "must not be empty"}
	}

	e, ok := asInteger(employeeID)
	if !ok {
		return nil, &InvalidArgumentError{Field: "employee_id", Reason: "must be an integer"}
	}

	return r.Create(ctx, int(y), s, e)
}

const (
	minYear = 2000
	// The year column is a 32 bit INT.
	maxYear = math.MaxInt32
)

func asInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func uintToInt(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}

	return int64(n), true
}
