package submission

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrImmutable = errors.New("patient submissions are immutable")

// Record is one evaluated submission: the inputs as received and the verdict.
type Record struct {
	ID uint `json:"id" gorm:"primaryKey;autoIncrement;column:id"`

	SerumCreatinine *float64 `json:"serum_creatinine" gorm:"column:serum_creatinine"`
	GFR             *float64 `json:"gfr" gorm:"column:gfr"`
	BUN             *float64 `json:"bun" gorm:"column:bun"`
	SerumCalcium    *float64 `json:"serum_calcium" gorm:"column:serum_calcium"`
	BloodPressure   *float64 `json:"blood_pressure" gorm:"column:blood_pressure"`
	WaterIntake     *float64 `json:"water_intake" gorm:"column:water_intake"`

	FamilyHistory    string `json:"family_history" gorm:"column:family_history;type:text"`
	WeightChanges    string `json:"weight_changes" gorm:"column:weight_changes;type:text"`
	StressLevel      string `json:"stress_level" gorm:"column:stress_level;type:text"`
	Smoking          string `json:"smoking" gorm:"column:smoking;type:text"`
	Alcohol          string `json:"alcohol" gorm:"column:alcohol;type:text"`
	PainkillerUsage  string `json:"painkiller_usage" gorm:"column:painkiller_usage;type:text"`
	Diet             string `json:"diet" gorm:"column:diet;type:text"`
	PhysicalActivity string `json:"physical_activity" gorm:"column:physical_activity;type:text"`

	PredictionResult string                     `json:"prediction_result" gorm:"column:prediction_result;size:500"`
	RiskLevel        string                     `json:"risk_level" gorm:"column:risk_level;size:50;index"`
	RiskScore        int                        `json:"risk_score" gorm:"column:risk_score"`
	RiskFactors      datatypes.JSONSlice[string] `json:"risk_factors" gorm:"column:risk_factors"`
	Payload          datatypes.JSONMap          `json:"payload,omitempty" gorm:"column:payload"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime:false"`
}

func (Record) TableName() string {
	return "patient_submissions"
}

func (r *Record) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}

func (r *Record) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutable
}
