// Package values validates raw source values against their declared target
// value types and coerces them into canonical form. Validation is pure:
// callers decide how to report rejected values.
package values

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate checks raw against the declared value type, or against the option
// set when one is present, and returns the canonical value. An empty raw
// value is rejected with errors.ErrEmptyValue; anything else that fails
// validation is rejected with an error wrapping errors.ErrInvalidInput.
// Unrecognized value types accept anything unchanged.
func Validate(valueType types.ValueType, raw string, set *types.OptionSet) (string, error) {
	if raw == "" {
		return "", errors.ErrEmptyValue
	}

	if set != nil {
		for _, o := range set.Options {
			if raw == o.Code || raw == o.Value {
				return o.Code, nil
			}
		}
		return "", fmt.Errorf("value %q not in option set, expected one of %s: %w",
			raw, strings.Join(set.Codes(), ","), errors.ErrInvalidInput)
	}

	switch valueType {
	case types.ValueTypeText, types.ValueTypeLongText:
		return raw, nil

	case types.ValueTypeNumber:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeEmail:
		if !emailPattern.MatchString(raw) {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "false":
			return strings.ToLower(raw), nil
		}
		return "", invalid(raw, valueType)

	case types.ValueTypeTrueOnly:
		if strings.ToLower(raw) != "true" {
			return "", invalid(raw, valueType)
		}
		return "true", nil

	case types.ValueTypePercentage:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 100 {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeUnitInterval:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 1 {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeInteger:
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeIntegerNegative, types.ValueTypeNegativeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n >= 0 {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeIntegerZeroOrPositive, types.ValueTypeAge:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return "", invalid(raw, valueType)
		}
		return raw, nil

	case types.ValueTypeDate:
		t, ok := parseCalendar(raw)
		if !ok {
			return "", invalid(raw, valueType)
		}
		return t.Format(isoDate), nil

	case types.ValueTypeDateTime:
		t, ok := parseCalendar(raw)
		if !ok {
			return "", invalid(raw, valueType)
		}
		return t.Format(isoDateTime), nil

	case types.ValueTypeTime:
		t, ok := parseClock(raw)
		if !ok {
			return "", invalid(raw, valueType)
		}
		return t.Format(isoTime), nil

	default:
		return raw, nil
	}
}

func invalid(raw string, valueType types.ValueType) error {
	return fmt.Errorf("value %q is not a valid %s: %w", raw, valueType, errors.ErrInvalidInput)
}
