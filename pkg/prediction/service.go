package prediction

import (
	"context"
	"strconv"
	"time"

	"github.com/synaptica-ai/ckd-screening/pkg/common/logger"
	"github.com/synaptica-ai/ckd-screening/pkg/risk"
	"github.com/synaptica-ai/ckd-screening/pkg/submission"
	"github.com/synaptica-ai/ckd-screening/pkg/terminology"
)

const (
	EventPredictionRecorded = "prediction.recorded"
	eventSource             = "ckd-api"
)

type Store interface {
	Record(ctx context.Context, params risk.Parameters, a risk.Assessment) (uint, error)
	Get(ctx context.Context, id uint) (*submission.Record, error)
	Recent(ctx context.Context, limit int) ([]submission.Record, error)
	CountByRiskLevel(ctx context.Context) (map[string]int64, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, eventType, source, key string, data map[string]interface{}) error
}

type Tally interface {
	Increment(ctx context.Context, level string) error
	Today(ctx context.Context) (map[string]int64, error)
}

type Observer interface {
	ObservePrediction(level string, factors []string, took time.Duration)
	ObserveFailure(kind string)
}

// Result is a persisted assessment.
type Result struct {
	RecordID   uint
	Assessment risk.Assessment
}

type Service struct {
	evaluator *risk.Evaluator
	store     Store
	catalog   terminology.Catalog
	publisher Publisher
	tally     Tally
	observer  Observer
}

// NewService wires the evaluator to the store. publisher, tally and observer may be nil.
func NewService(evaluator *risk.Evaluator, store Store, catalog terminology.Catalog, publisher Publisher, tally Tally, observer Observer) *Service {
	return &Service{
		evaluator: evaluator,
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		tally:     tally,
		observer:  observer,
	}
}

// Predict evaluates params and persists the submission. Either both happen or the
// returned error says why neither did.
func (s *Service) Predict(ctx context.Context, params risk.Parameters) (*Result, error) {
	start := time.Now()
	if params == nil {
		params = risk.Parameters{}
	}

	assessment, err := s.evaluator.Evaluate(params)
	if err != nil {
		return nil, s.fail(err)
	}

	id, err := s.store.Record(ctx, params, assessment)
	if err != nil {
		return nil, s.fail(err)
	}

	if s.observer != nil {
		s.observer.ObservePrediction(string(assessment.Level), assessment.Factors, time.Since(start))
	}
	s.fanOut(ctx, id, params, assessment)

	logger.Log.WithFields(map[string]interface{}{
		"record_id":  id,
		"risk_level": assessment.Level,
		"risk_score": assessment.Score,
	}).Info("Prediction recorded")

	return &Result{RecordID: id, Assessment: assessment}, nil
}

func (s *Service) fail(err error) error {
	err = classify(err)
	if s.observer != nil {
		s.observer.ObserveFailure(string(KindOf(err)))
	}
	return err
}

// fanOut notifies the side channels. Their failures are logged and never fail the request.
func (s *Service) fanOut(ctx context.Context, id uint, params risk.Parameters, a risk.Assessment) {
	if s.tally != nil {
		if err := s.tally.Increment(ctx, string(a.Level)); err != nil {
			logger.Log.WithError(err).WithField("record_id", id).Warn("failed to update risk tally")
		}
	}

	if s.publisher == nil {
		return
	}
	values := make(map[string]*float64, len(risk.NumericFields))
	for _, field := range risk.NumericFields {
		// already validated by the store
		v, _ := params.Float(field)
		values[field] = v
	}
	data := map[string]interface{}{
		"record_id":    id,
		"risk_level":   a.Level,
		"risk_score":   a.Score,
		"risk_factors": a.Factors,
		"prediction":   a.Message,
		"observations": s.catalog.Annotate(risk.NumericFields, values),
	}
	if err := s.publisher.PublishEvent(ctx, EventPredictionRecorded, eventSource, strconv.FormatUint(uint64(id), 10), data); err != nil {
		logger.Log.WithError(err).WithField("record_id", id).Warn("failed to publish prediction event")
	}
}

func (s *Service) Get(ctx context.Context, id uint) (*submission.Record, error) {
	rec, err := s.store.Get(ctx, id)
	return rec, classify(err)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]submission.Record, error) {
	recs, err := s.store.Recent(ctx, limit)
	return recs, classify(err)
}

// Stats returns stored totals per risk level and, when tallies are enabled, today's counts.
func (s *Service) Stats(ctx context.Context) (totals, today map[string]int64, err error) {
	totals, err = s.store.CountByRiskLevel(ctx)
	if err != nil {
		return nil, nil, classify(err)
	}
	if s.tally != nil {
		today, err = s.tally.Today(ctx)
		if err != nil {
			logger.Log.WithError(err).Warn("failed to read risk tally")
			today = nil
		}
	}
	return totals, today, nil
}
