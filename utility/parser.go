package utility

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
)

func ParseJson(b []byte) ([]interface{}, error) {
	var array []interface{}
	err := json.Unmarshal(b, &array)
	return array, err
}

// ToWh converts a sampled register value to integer watt-hours.
// Stations report the energy register either as "15000" or "15000.0".
func ToWh(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// WhAsKwh renders watt-hours with three decimal digits, e.g. 15500 -> "15.500".
func WhAsKwh(wh int64) string {
	whole := wh / 1000
	milli := wh % 1000
	if milli < 0 {
		milli = -milli
	}
	return strconv.FormatInt(whole, 10) + "." + pad3(milli)
}

func pad3(v int64) string {
	s := strconv.FormatInt(v, 10)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// IntAsPrice converts minor currency units to a string like 10234 to 102.34
func IntAsPrice(i int64) string {
	floatValue := float64(i) / 100.0
	return strconv.FormatFloat(floatValue, 'f', 2, 64)
}

func NewUUID() string {
	return uuid.New().String()
}
