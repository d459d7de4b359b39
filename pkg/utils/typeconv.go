package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/models"
)

// decimalTypes are the SQL Server types the driver hands back as text.
var decimalTypes = map[string]bool{
	"DECIMAL":    true,
	"NUMERIC":    true,
	"MONEY":      true,
	"SMALLMONEY": true,
}

// ConvertToHubDBType coerces a warehouse value into a scalar HubDB accepts.
// fieldType forces a conversion; with models.TypeAuto the value's Go type and
// the column's database type decide.
func ConvertToHubDBType(val interface{}, fieldType string, dbType string) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch fieldType {
	case models.TypeAuto:
		return autoConvert(val, dbType)
	case models.TypeString:
		return ConvertToString(val), nil
	case models.TypeNumber:
		return ConvertToNumber(val)
	case models.TypeInt:
		return ConvertToInt(val)
	case models.TypeBool:
		return ConvertToBool(val)
	case models.TypeDate:
		t, err := ConvertDateTime(val)
		if err != nil {
			return nil, err
		}
		return DateMillis(t), nil
	case models.TypeDateTime:
		t, err := ConvertDateTime(val)
		if err != nil {
			return nil, err
		}
		return t.UnixMilli(), nil
	default:
		return nil, fmt.Errorf("unknown field type %q", fieldType)
	}
}

func autoConvert(val interface{}, dbType string) (interface{}, error) {
	switch v := val.(type) {
	case time.Time:
		if strings.EqualFold(dbType, "DATE") {
			return DateMillis(v), nil
		}
		return v.UnixMilli(), nil
	case []byte:
		return autoConvert(string(v), dbType)
	case string:
		if decimalTypes[strings.ToUpper(dbType)] {
			return ConvertToNumber(v)
		}
		return v, nil
	default:
		return val, nil
	}
}

// DateMillis returns midnight UTC of t's calendar date in Unix milliseconds.
func DateMillis(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

func ConvertToString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func ConvertToNumber(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case []byte:
		return ConvertToNumber(string(v))
	default:
		return 0, fmt.Errorf("cannot convert %T to number", val)
	}
}

// ConvertToInt accepts integers and integral numbers such as 3.0 or the
// DECIMAL text "12.00". A fractional value is an error, never truncated.
func ConvertToInt(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
	case []byte:
		return ConvertToInt(string(v))
	}

	f, err := ConvertToNumber(val)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %v to int: %w", val, err)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("cannot convert %v to int without losing precision", val)
	}
	return int64(f), nil
}

func ConvertToBool(val interface{}) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case []byte:
		return ConvertToBool(string(v))
	default:
		n, err := ConvertToInt(val)
		if err != nil {
			return false, fmt.Errorf("cannot convert %T to bool", val)
		}
		return n != 0, nil
	}
}

func ConvertDateTime(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string:
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, f := range formats {
			if t, err := time.Parse(f, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse datetime: %s", v)
	case []byte:
		return ConvertDateTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to datetime", val)
	}
}
