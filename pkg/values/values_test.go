package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

func TestValidateByType(t *testing.T) {
	tests := []struct {
		name      string
		valueType types.ValueType
		raw       string
		want      string
		wantErr   bool
	}{
		{name: "text passes through", valueType: types.ValueTypeText, raw: "hello", want: "hello"},
		{name: "number accepts decimals", valueType: types.ValueTypeNumber, raw: "42.5", want: "42.5"},
		{name: "number rejects words", valueType: types.ValueTypeNumber, raw: "abc", wantErr: true},
		{name: "integer accepts", valueType: types.ValueTypeInteger, raw: "42", want: "42"},
		{name: "integer rejects decimals", valueType: types.ValueTypeInteger, raw: "42.5", wantErr: true},
		{name: "email accepts", valueType: types.ValueTypeEmail, raw: "jan@example.org", want: "jan@example.org"},
		{name: "email rejects missing domain", valueType: types.ValueTypeEmail, raw: "jan@", wantErr: true},
		{name: "boolean accepts false", valueType: types.ValueTypeBoolean, raw: "false", want: "false"},
		{name: "boolean rejects yes", valueType: types.ValueTypeBoolean, raw: "yes", wantErr: true},
		{name: "true only accepts true", valueType: types.ValueTypeTrueOnly, raw: "true", want: "true"},
		{name: "true only rejects false", valueType: types.ValueTypeTrueOnly, raw: "false", wantErr: true},
		{name: "percentage bounds", valueType: types.ValueTypePercentage, raw: "100", want: "100"},
		{name: "percentage above bounds", valueType: types.ValueTypePercentage, raw: "101", wantErr: true},
		{name: "unit interval bounds", valueType: types.ValueTypeUnitInterval, raw: "0.5", want: "0.5"},
		{name: "unit interval above bounds", valueType: types.ValueTypeUnitInterval, raw: "1.5", wantErr: true},
		{name: "negative integer accepts", valueType: types.ValueTypeIntegerNegative, raw: "-3", want: "-3"},
		{name: "negative integer rejects zero", valueType: types.ValueTypeIntegerNegative, raw: "0", wantErr: true},
		{name: "negative integer rejects positive", valueType: types.ValueTypeNegativeInteger, raw: "3", wantErr: true},
		{name: "zero or positive accepts zero", valueType: types.ValueTypeIntegerZeroOrPositive, raw: "0", want: "0"},
		{name: "age rejects negative", valueType: types.ValueTypeAge, raw: "-1", wantErr: true},
		{name: "date canonicalizes", valueType: types.ValueTypeDate, raw: "2024/03/05", want: "2024-03-05"},
		{name: "date rejects garbage", valueType: types.ValueTypeDate, raw: "not a date", wantErr: true},
		{name: "datetime canonicalizes", valueType: types.ValueTypeDateTime, raw: "2024-03-05 13:45:00", want: "2024-03-05T13:45:00"},
		{name: "time canonicalizes", valueType: types.ValueTypeTime, raw: "13:45", want: "13:45:00"},
		{name: "unknown type accepts anything", valueType: "FILE_RESOURCE", raw: "whatever", want: "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.valueType, tt.raw, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateEmptyIsDistinctFromInvalid(t *testing.T) {
	_, err := Validate(types.ValueTypeNumber, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyValue)
	assert.NotErrorIs(t, err, errors.ErrInvalidInput)

	_, err = Validate(types.ValueTypeNumber, "abc", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.NotErrorIs(t, err, errors.ErrEmptyValue)
}

func TestValidateOptionSet(t *testing.T) {
	set := &types.OptionSet{Options: []types.Option{
		{Code: "M", Value: "Male"},
		{Code: "F", Value: "Female"},
	}}

	got, err := Validate(types.ValueTypeText, "M", set)
	require.NoError(t, err)
	assert.Equal(t, "M", got)

	// Matching the display value coerces to the code.
	got, err = Validate(types.ValueTypeText, "Female", set)
	require.NoError(t, err)
	assert.Equal(t, "F", got)

	_, err = Validate(types.ValueTypeText, "X", set)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2024-03-05", DateOnly("2024-03-05T00:00:00.000"))
	assert.Equal(t, "2024-03-05", DateOnly("2024-03-05"))
	assert.Equal(t, "garbage", DateOnly("garbage"))
}
