package prediction

import (
	"errors"

	"github.com/synaptica-ai/ckd-screening/pkg/risk"
	"github.com/synaptica-ai/ckd-screening/pkg/submission"
)

type Kind string

const (
	KindInput       Kind = "input"
	KindPersistence Kind = "persistence"
	KindNotFound    Kind = "not_found"
	KindInternal    Kind = "internal"
)

// Error tags a failure with its kind. The message is the underlying error's.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case risk.IsConversionError(err):
		return KindInput
	case errors.Is(err, submission.ErrNotFound):
		return KindNotFound
	case errors.Is(err, submission.ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Err: err}
}
