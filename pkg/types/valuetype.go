package types

// ValueType enumerates the target value types a data element or tracked
// entity attribute may declare. Unrecognized types are passed through
// validation unchanged.
type ValueType string

// Value types understood by the validator.
const (
	ValueTypeText                  ValueType = "TEXT"
	ValueTypeLongText              ValueType = "LONG_TEXT"
	ValueTypeNumber                ValueType = "NUMBER"
	ValueTypeEmail                 ValueType = "EMAIL"
	ValueTypeBoolean               ValueType = "BOOLEAN"
	ValueTypeTrueOnly              ValueType = "TRUE_ONLY"
	ValueTypePercentage            ValueType = "PERCENTAGE"
	ValueTypeInteger               ValueType = "INTEGER"
	ValueTypeDate                  ValueType = "DATE"
	ValueTypeDateTime              ValueType = "DATETIME"
	ValueTypeTime                  ValueType = "TIME"
	ValueTypeUnitInterval          ValueType = "UNIT_INTERVAL"
	ValueTypeIntegerNegative       ValueType = "INTEGER_NEGATIVE"
	ValueTypeNegativeInteger       ValueType = "NEGATIVE_INTEGER"
	ValueTypeIntegerZeroOrPositive ValueType = "INTEGER_ZERO_OR_POSITIVE"
	ValueTypeAge                   ValueType = "AGE"
)

// Option is a single allowed entry in an option set.
type Option struct {
	Code  string `json:"code" yaml:"code"`
	Value string `json:"value" yaml:"value"`
}

// OptionSet restricts a field to a fixed list of coded options.
type OptionSet struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Options []Option `json:"options" yaml:"options"`
}

// Codes returns the codes of all options, used in diagnostics.
func (s *OptionSet) Codes() []string {
	codes := make([]string, 0, len(s.Options))
	for _, o := range s.Options {
		codes = append(codes, o.Code)
	}
	return codes
}
