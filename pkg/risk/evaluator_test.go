package risk

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEmptyIsNormal(t *testing.T) {
	got, err := NewEvaluator().Evaluate(Parameters{})
	require.NoError(t, err)

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, LevelNormal, got.Level)
	assert.Empty(t, got.Factors)
	assert.NotNil(t, got.Factors)
	assert.Equal(t, "NORMAL: No significant risk factors detected.", got.Message)
}

func TestEvaluateExamples(t *testing.T) {
	tests := []struct {
		name    string
		params  Parameters
		score   int
		level   Level
		factors []string
	}{
		{
			name:    "low gfr and smoking",
			params:  Parameters{"gfr": 55.0, "smoking": "Yes"},
			score:   4,
			level:   LevelModerate,
			factors: []string{"Low GFR", "Smoking"},
		},
		{
			name: "all conditions",
			params: Parameters{
				"serum_creatinine": 1.5,
				"gfr":              50.0,
				"bun":              25.0,
				"family_history":   "Yes",
				"smoking":          "Yes",
			},
			score:   8,
			level:   LevelHigh,
			factors: []string{"High creatinine", "Low GFR", "High BUN", "Family history", "Smoking"},
		},
		{
			name:    "creatinine and family history",
			params:  Parameters{"family_history": "Yes", "serum_creatinine": "2.1"},
			score:   3,
			level:   LevelModerate,
			factors: []string{"High creatinine", "Family history"},
		},
		{
			name:    "bun only",
			params:  Parameters{"bun": json.Number("21")},
			score:   1,
			level:   LevelLow,
			factors: []string{"High BUN"},
		},
		{
			name:    "creatinine gfr",
			params:  Parameters{"serum_creatinine": 1.4, "gfr": 30},
			score:   5,
			level:   LevelHigh,
			factors: []string{"High creatinine", "Low GFR"},
		},
		{
			name:    "lifestyle only fields",
			params:  Parameters{"diet": "Poor", "alcohol": "Yes", "stress_level": "High", "serum_calcium": 12.0},
			score:   0,
			level:   LevelNormal,
			factors: []string{},
		},
	}

	ev := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.factors, got.Factors)
		})
	}
}

func TestEvaluateBoundaries(t *testing.T) {
	tests := []struct {
		field   string
		value   interface{}
		trigger bool
	}{
		{FieldGFR, 60.0, false},
		{FieldGFR, 59.999, true},
		{FieldSerumCreatinine, 1.3, false},
		{FieldSerumCreatinine, 1.31, true},
		{FieldBUN, 20.0, false},
		{FieldBUN, 20.01, true},
		{FieldGFR, "60", false},
		{FieldGFR, " 59.5 ", true},
	}

	ev := NewEvaluator()
	for _, tt := range tests {
		got, err := ev.Evaluate(Parameters{tt.field: tt.value})
		require.NoError(t, err)
		if tt.trigger {
			assert.Len(t, got.Factors, 1, "%s=%v", tt.field, tt.value)
		} else {
			assert.Empty(t, got.Factors, "%s=%v", tt.field, tt.value)
		}
	}
}

func TestEvaluateExactYesMatch(t *testing.T) {
	ev := NewEvaluator()
	for _, v := range []interface{}{"yes", "YES", " Yes", true, 1, json.Number("1"), nil} {
		got, err := ev.Evaluate(Parameters{"family_history": v, "smoking": v})
		require.NoError(t, err)
		assert.Equal(t, 0, got.Score, "value %#v", v)
	}
}

func TestEvaluateAbsentValues(t *testing.T) {
	ev := NewEvaluator()
	for _, v := range []interface{}{nil, "", false, 0.0, json.Number("0")} {
		got, err := ev.Evaluate(Parameters{"gfr": v})
		require.NoError(t, err)
		assert.Equal(t, LevelNormal, got.Level, "value %#v", v)
	}
}

func TestEvaluateNonNumericIsConversionError(t *testing.T) {
	ev := NewEvaluator()
	for _, params := range []Parameters{
		{"serum_creatinine": "abc"},
		{"gfr": true},
		{"bun": []interface{}{1.0}},
	} {
		_, err := ev.Evaluate(params)
		require.Error(t, err)
		assert.True(t, IsConversionError(err), "params %v", params)
	}
}

func TestScoreIsAdditiveAcrossSubsets(t *testing.T) {
	type cond struct {
		field  string
		value  interface{}
		weight int
	}
	conds := []cond{
		{FieldSerumCreatinine, 2.0, 2},
		{FieldGFR, 40.0, 3},
		{FieldBUN, 30.0, 1},
		{FieldFamilyHistory, "Yes", 1},
		{FieldSmoking, "Yes", 1},
	}

	ev := NewEvaluator()
	for mask := 0; mask < 1<<len(conds); mask++ {
		params := Parameters{}
		want := 0
		for i, c := range conds {
			if mask&(1<<i) != 0 {
				params[c.field] = c.value
				want += c.weight
			}
		}
		got, err := ev.Evaluate(params)
		require.NoError(t, err)
		assert.Equal(t, want, got.Score)

		level, message := ev.Classify(want)
		assert.Equal(t, level, got.Level)
		assert.Equal(t, message, got.Message)
	}
}

func TestClassify(t *testing.T) {
	ev := NewEvaluator()
	cases := map[int]Level{0: LevelNormal, 1: LevelLow, 2: LevelLow, 3: LevelModerate, 4: LevelModerate, 5: LevelHigh, 8: LevelHigh}
	for score, want := range cases {
		got, _ := ev.Classify(score)
		assert.Equal(t, want, got, "score %d", score)
	}
}

func TestParametersCategory(t *testing.T) {
	p := Parameters{"diet": "Balanced", "alcohol": true, "stress_level": json.Number("3"), "smoking": nil}

	assert.Equal(t, "Balanced", p.Category(FieldDiet))
	assert.Equal(t, "true", p.Category(FieldAlcohol))
	assert.Equal(t, "3", p.Category(FieldStressLevel))
	assert.Equal(t, "", p.Category(FieldSmoking))
	assert.Equal(t, "", p.Category(FieldPhysicalActivity))
}

func TestFloatRejectsNonFinite(t *testing.T) {
	for _, v := range []interface{}{"inf", "-Inf", "Infinity", "NaN", " nan "} {
		_, err := Parameters{FieldWaterIntake: v}.Float(FieldWaterIntake)
		require.Error(t, err, "value %#v", v)
		assert.True(t, IsConversionError(err))
		assert.True(t, errors.Is(err, errNotFinite), "value %#v: %v", v, err)
	}

	_, err := NewEvaluator().Evaluate(Parameters{FieldGFR: "NaN"})
	assert.True(t, IsConversionError(err))
}

func TestFloatKeepsParseError(t *testing.T) {
	for _, v := range []interface{}{"1e400", json.Number("1e400")} {
		_, err := Parameters{FieldBUN: v}.Float(FieldBUN)
		require.Error(t, err)
		assert.True(t, errors.Is(err, strconv.ErrRange), "value %#v: %v", v, err)
	}

	_, err := Parameters{FieldBUN: "abc"}.Float(FieldBUN)
	assert.True(t, errors.Is(err, strconv.ErrSyntax), "%v", err)
}
