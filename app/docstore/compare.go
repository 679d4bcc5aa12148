package docstore

import (
	"cmp"
	"strings"
	"time"
)

// Values of different types order by type rank first:
// null < bool < number < timestamp < string.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int64, float64:
		return 2
	case Timestamp, *Timestamp, time.Time:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

func asTimestamp(v any) Timestamp {
	switch x := v.(type) {
	case Timestamp:
		return x
	case *Timestamp:
		if x != nil {
			return *x
		}
	case time.Time:
		return NewTimestamp(x)
	}
	return Timestamp{}
}

// compareValues returns -1, 0 or 1.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 0:
		return 0
	case 1:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		return cmp.Compare(asFloat(a), asFloat(b))
	case 3:
		ta, tb := asTimestamp(a), asTimestamp(b)
		if c := cmp.Compare(ta.Seconds, tb.Seconds); c != 0 {
			return c
		}
		return cmp.Compare(ta.Nanos, tb.Nanos)
	case 4:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}
