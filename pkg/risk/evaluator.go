package risk

type Level string

const (
	LevelNormal   Level = "normal"
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

var Levels = []Level{LevelNormal, LevelLow, LevelModerate, LevelHigh}

// Assessment is the outcome of scoring one submission.
type Assessment struct {
	Score   int      `json:"risk_factor_count"`
	Factors []string `json:"risk_factors"`
	Message string   `json:"prediction"`
	Level   Level    `json:"risk_level"`
}

// Rule is a single weighted condition. Rules are applied in table order, which fixes
// the order of Assessment.Factors.
type Rule struct {
	Label  string
	Weight int
	Match  func(Parameters) (bool, error)
}

type Threshold struct {
	MinScore int
	Level    Level
	Message  string
}

func DefaultRules() []Rule {
	return []Rule{
		{Label: "High creatinine", Weight: 2, Match: above(FieldSerumCreatinine, 1.3)},
		{Label: "Low GFR", Weight: 3, Match: below(FieldGFR, 60)},
		{Label: "High BUN", Weight: 1, Match: above(FieldBUN, 20)},
		{Label: "Family history", Weight: 1, Match: equals(FieldFamilyHistory, "Yes")},
		{Label: "Smoking", Weight: 1, Match: equals(FieldSmoking, "Yes")},
	}
}

// DefaultThresholds is ordered from the highest minimum score down; the first match wins.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{MinScore: 5, Level: LevelHigh, Message: "HIGH RISK: Possible CKD detected. Consult a nephrologist."},
		{MinScore: 3, Level: LevelModerate, Message: "MODERATE RISK: Early signs detected. Regular monitoring needed."},
		{MinScore: 1, Level: LevelLow, Message: "LOW RISK: Some risk factors present."},
	}
}

const normalMessage = "NORMAL: No significant risk factors detected."

type Evaluator struct {
	rules      []Rule
	thresholds []Threshold
}

func NewEvaluator() *Evaluator {
	return &Evaluator{rules: DefaultRules(), thresholds: DefaultThresholds()}
}

// Evaluate scores params. It fails only when a numeric parameter the rules inspect
// cannot be converted.
func (e *Evaluator) Evaluate(params Parameters) (Assessment, error) {
	score := 0
	factors := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		matched, err := rule.Match(params)
		if err != nil {
			return Assessment{}, err
		}
		if matched {
			score += rule.Weight
			factors = append(factors, rule.Label)
		}
	}

	level, message := e.Classify(score)
	return Assessment{
		Score:   score,
		Factors: factors,
		Message: message,
		Level:   level,
	}, nil
}

func (e *Evaluator) Classify(score int) (Level, string) {
	for _, t := range e.thresholds {
		if score >= t.MinScore {
			return t.Level, t.Message
		}
	}
	return LevelNormal, normalMessage
}

func above(field string, limit float64) func(Parameters) (bool, error) {
	return func(p Parameters) (bool, error) {
		v, err := p.Float(field)
		if err != nil || v == nil {
			return false, err
		}
		return *v > limit, nil
	}
}

func below(field string, limit float64) func(Parameters) (bool, error) {
	return func(p Parameters) (bool, error) {
		v, err := p.Float(field)
		if err != nil || v == nil {
			return false, err
		}
		return *v < limit, nil
	}
}

func equals(field, want string) func(Parameters) (bool, error) {
	return func(p Parameters) (bool, error) {
		return p.is(field, want), nil
	}
}
