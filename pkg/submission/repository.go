package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/synaptica-ai/ckd-screening/pkg/risk"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("submission not found")
	ErrPersistence = errors.New("persisting submission")
)

const defaultRecentLimit = 50

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Record{})
}

// Record builds the row for params and a, appends it and returns the assigned id.
// Conversion failures are returned before anything is written.
func (r *Repository) Record(ctx context.Context, params risk.Parameters, a risk.Assessment) (uint, error) {
	rec, err := NewRecord(params, a)
	if err != nil {
		return 0, err
	}
	rec.CreatedAt = r.now().UTC()

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return rec.ID, nil
}

// NewRecord converts params into an unsaved Record.
func NewRecord(params risk.Parameters, a risk.Assessment) (*Record, error) {
	numeric := make(map[string]*float64, len(risk.NumericFields))
	for _, field := range risk.NumericFields {
		v, err := params.Float(field)
		if err != nil {
			return nil, err
		}
		numeric[field] = v
	}

	factors := a.Factors
	if factors == nil {
		factors = []string{}
	}

	return &Record{
		SerumCreatinine: numeric[risk.FieldSerumCreatinine],
		GFR:             numeric[risk.FieldGFR],
		BUN:             numeric[risk.FieldBUN],
		SerumCalcium:    numeric[risk.FieldSerumCalcium],
		BloodPressure:   numeric[risk.FieldBloodPressure],
		WaterIntake:     numeric[risk.FieldWaterIntake],

		FamilyHistory:    params.Category(risk.FieldFamilyHistory),
		WeightChanges:    params.Category(risk.FieldWeightChanges),
		StressLevel:      params.Category(risk.FieldStressLevel),
		Smoking:          params.Category(risk.FieldSmoking),
		Alcohol:          params.Category(risk.FieldAlcohol),
		PainkillerUsage:  params.Category(risk.FieldPainkillerUsage),
		Diet:             params.Category(risk.FieldDiet),
		PhysicalActivity: params.Category(risk.FieldPhysicalActivity),

		PredictionResult: a.Message,
		RiskLevel:        string(a.Level),
		RiskScore:        a.Score,
		RiskFactors:      datatypes.JSONSlice[string](factors),
		Payload:          datatypes.JSONMap(params),
	}, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (*Record, error) {
	var rec Record
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &rec, nil
}

// Recent returns the newest submissions first, up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	var recs []Record
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// CountByRiskLevel returns the number of stored submissions per risk level.
// Every known level is present in the result, zero or not.
func (r *Repository) CountByRiskLevel(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		RiskLevel string
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Select("risk_level, COUNT(*) AS total").
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(risk.Levels))
	for _, level := range risk.Levels {
		counts[string(level)] = 0
	}
	for _, row := range rows {
		counts[row.RiskLevel] = row.Total
	}
	return counts, nil
}
