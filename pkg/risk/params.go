package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parameter names accepted on a submission.
const (
	FieldSerumCreatinine = "serum_creatinine"
	FieldGFR             = "gfr"
	FieldBUN             = "bun"
	FieldSerumCalcium    = "serum_calcium"
	FieldBloodPressure   = "blood_pressure"
	FieldWaterIntake     = "water_intake"

	FieldFamilyHistory    = "family_history"
	FieldWeightChanges    = "weight_changes"
	FieldStressLevel      = "stress_level"
	FieldSmoking          = "smoking"
	FieldAlcohol          = "alcohol"
	FieldPainkillerUsage  = "painkiller_usage"
	FieldDiet             = "diet"
	FieldPhysicalActivity = "physical_activity"
)

var NumericFields = []string{
	FieldSerumCreatinine,
	FieldGFR,
	FieldBUN,
	FieldSerumCalcium,
	FieldBloodPressure,
	FieldWaterIntake,
}

var CategoricalFields = []string{
	FieldFamilyHistory,
	FieldWeightChanges,
	FieldStressLevel,
	FieldSmoking,
	FieldAlcohol,
	FieldPainkillerUsage,
	FieldDiet,
	FieldPhysicalActivity,
}

var (
	errNotNumeric = errors.New("value is not numeric")
	errNotFinite  = errors.New("value is not a finite number")
)

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ConversionError reports a numeric parameter whose value cannot be read as a number.
type ConversionError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert %s value %v to float: %v", e.Field, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}

// Parameters is a decoded submission body keyed by field name.
type Parameters map[string]interface{}

// Float returns the numeric value of field, or nil when the field is absent.
// Null, "", false and a numeric zero count as absent.
func (p Parameters) Float(field string) (*float64, error) {
	raw, ok := p[field]
	if !ok || raw == nil {
		return nil, nil
	}

	var (
		value float64
		err   error
	)
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case json.Number:
		value, err = v.Float64()
		if err != nil {
			return nil, &ConversionError{Field: field, Value: raw, Err: err}
		}
	case bool:
		if !v {
			return nil, nil
		}
		return nil, &ConversionError{Field: field, Value: raw, Err: errNotNumeric}
	case string:
		if v == "" {
			return nil, nil
		}
		value, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &ConversionError{Field: field, Value: raw, Err: err}
		}
		if !isFinite(value) {
			return nil, &ConversionError{Field: field, Value: raw, Err: errNotFinite}
		}
		// "0" is present, unlike a numeric zero
		return &value, nil
	default:
		return nil, &ConversionError{Field: field, Value: raw, Err: fmt.Errorf("unsupported type %T", raw)}
	}

	if !isFinite(value) {
		return nil, &ConversionError{Field: field, Value: raw, Err: errNotFinite}
	}
	if value == 0 {
		return nil, nil
	}
	return &value, nil
}

// Category returns the categorical value of field verbatim. Missing and null values
// are empty; other scalars keep their JSON text form.
func (p Parameters) Category(field string) string {
	raw, ok := p[field]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

// is reports an exact string match; non-string values never match.
func (p Parameters) is(field, want string) bool {
	v, ok := p[field].(string)
	return ok && v == want
}
