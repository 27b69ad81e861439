package types

import (
	"fmt"
	"strings"
	"time"
)

// ISO8601 is the timestamp layout used on the wire by both dialects.
const ISO8601 = "2006-01-02T15:04:05.000Z"

// DateTime wraps a time.Time struct, allowing for improved dateTime JSON compatibility.
type DateTime struct {
	time.Time
}

// NewDateTime Creates a new DateTime struct, embedding a time.Time struct.
func NewDateTime(time time.Time) *DateTime {
	return &DateTime{Time: time}
}

func (dt *DateTime) UnmarshalJSON(input []byte) error {
	strInput := strings.Trim(string(input), `"`)
	if strInput == "" || strInput == "null" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, strInput)
	if err != nil {
		parsed, err = time.Parse(ISO8601, strInput)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q", strInput)
		}
	}
	dt.Time = parsed
	return nil
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.UTC().Format(ISO8601) + `"`), nil
}

func (dt *DateTime) FormatTimestamp() string {
	return dt.UTC().Format(ISO8601)
}
