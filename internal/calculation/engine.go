package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/fincast/fincast/internal/domain"
)

// seedFunc returns a pseudo-random seed (override for deterministic Monte
// Carlo tests).
var seedFunc = defaultSeedFunc

func defaultSeedFunc() int64 { return time.Now().UnixNano() }

// SetSeedFunc replaces the seed source. A nil argument restores the
// time-based default.
func SetSeedFunc(f func() int64) {
	if f == nil {
		seedFunc = defaultSeedFunc
		return
	}
	seedFunc = f
}

// Engine drives the deterministic projector and the Monte Carlo layer over
// one immutable scenario at a time. It holds no per-run state and is safe
// to reuse across runs.
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the engine logger. A nil logger restores the no-op.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// RunScenario produces the single deterministic trajectory for a scenario:
// one snapshot per calendar year from start to end, inclusive. The
// scenario is validated up front and never mutated; running twice on the
// same input yields identical projections.
func (e *Engine) RunScenario(ctx context.Context, s *domain.Scenario) (*domain.Projection, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.Logger.Debugf("projecting scenario %q over %d-%d", s.Name, s.Assumptions.StartYear, s.Assumptions.EndYear)
	snapshots := trajectory(s, nil)

	return &domain.Projection{
		ScenarioName: s.Name,
		Snapshots:    snapshots,
		Metrics:      computeMetrics(s, snapshots),
	}, nil
}
