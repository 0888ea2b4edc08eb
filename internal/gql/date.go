package gql

import (
	"fmt"
	"strconv"
	"time"
)

// Date is the GraphQL Date scalar. It travels as milliseconds since the Unix epoch.
type Date struct {
	time.Time
}

func (Date) ImplementsGraphQLType(name string) bool {
	return name == "Date"
}

// UnmarshalGraphQL accepts epoch milliseconds as a literal or variable, or an RFC 3339 string.
func (d *Date) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case int32:
		d.Time = time.UnixMilli(int64(v)).UTC()
	case int64:
		d.Time = time.UnixMilli(v).UTC()
	case int:
		d.Time = time.UnixMilli(int64(v)).UTC()
	case float64:
		d.Time = time.UnixMilli(int64(v)).UTC()
	case string:
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			d.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid Date %q: %w", v, err)
		}
		d.Time = t.UTC()
	default:
		return fmt.Errorf("wrong type for Date: %T", input)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, d.UnixMilli(), 10), nil
}

func newDate(t time.Time) Date {
	return Date{Time: t}
}
