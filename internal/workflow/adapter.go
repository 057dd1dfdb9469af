// Package workflow implements the authorization engine for record
// lifecycles: transition resolution, per-signature eligibility, custom rule
// evaluation, and board view projection, all driven by a methodology model.
//
// The engine is deliberately stateless across calls. It never aggregates
// quorum counts; that belongs to the caller, which sees a record's full
// signature set.
package workflow

import (
	"log"
	"sync"

	"govline/internal/domain"
	"govline/internal/methodology"
)

// ValidationContext carries the entity data one evaluation call may need.
// It is built fresh per call by the caller and owned by that call only; not
// every operation requires every field.
type ValidationContext struct {
	Task         *domain.Task
	Actor        *domain.Actor
	Signatures   []domain.Signature
	TransitionTo string
	Feedbacks    []domain.Feedback
	Cycles       []domain.Cycle
}

// Adapter evaluates workflow policy against one methodology. Construct it
// with FromModel, FromPreset, or WithProjectOverride. Once the model is
// resolved the adapter is safe for concurrent use without locking.
type Adapter struct {
	model  *methodology.Model
	source methodology.Source
	once   sync.Once

	logger     *log.Logger
	validators map[string]RuleValidator
}

// FromModel uses a fully formed model as-is; no I/O ever happens.
func FromModel(m *methodology.Model) *Adapter {
	return &Adapter{model: m, validators: map[string]RuleValidator{}}
}

// FromPreset resolves a named built-in methodology.
func FromPreset(name string) (*Adapter, error) {
	m, err := methodology.Preset(name)
	if err != nil {
		return nil, err
	}
	return FromModel(m), nil
}

// WithProjectOverride defers model resolution to the first call that needs
// it. The source is consulted exactly once; on any failure (not found, parse
// error) the adapter degrades to the built-in default. Availability wins
// over strictness here, matching the storage components around it.
func WithProjectOverride(src methodology.Source) *Adapter {
	return &Adapter{source: src, validators: map[string]RuleValidator{}}
}

// SetLogger replaces the diagnostic sink. Must be called before concurrent
// use.
func (a *Adapter) SetLogger(l *log.Logger) { a.logger = l }

func (a *Adapter) log() *log.Logger {
	if a.logger != nil {
		return a.logger
	}
	return log.Default()
}

// Model returns the resolved methodology, loading it on first use. Concurrent
// first calls single-flight through sync.Once: one caller loads, the rest
// wait, and every caller observes the same model for the adapter's lifetime.
func (a *Adapter) Model() *methodology.Model {
	a.once.Do(func() {
		if a.model != nil {
			return
		}
		if a.source != nil {
			m, err := a.source.Load()
			if err == nil {
				a.model = m
				return
			}
			if err != methodology.ErrNotFound {
				a.log().Printf("methodology load failed, falling back to default: %v", err)
			}
		}
		a.model = methodology.Default()
	})
	return a.model
}
