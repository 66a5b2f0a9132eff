package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/opencua/gateway/internal/domain/action"
	"github.com/opencua/gateway/internal/infrastructure/logging"
	"github.com/opencua/gateway/internal/infrastructure/monitoring"
	"github.com/opencua/gateway/internal/providers/scrapybara"
	"github.com/opencua/gateway/internal/shared/errdefs"
	"github.com/opencua/gateway/internal/shared/types"
)

// DefaultMaxTurns bounds auto-execution when no explicit limit is
// configured.
const DefaultMaxTurns = 10

// Conversation is the slice of a session the loop needs: the live
// instance, the computer type for action validation, and the
// append-only history.
type Conversation interface {
	Instance() scrapybara.Instance
	ComputerType() types.ComputerType
	History() []types.Item
	Append(items ...types.Item)
}

// Stepper produces the model's next response items given the
// conversation so far and the current screenshot. User input is part of
// the history by the time Step is called.
type Stepper interface {
	Step(ctx context.Context, history []types.Item, screenshot string) ([]types.Item, error)
}

// RunResult is the outcome of one interaction turn: every item the
// model produced during the run plus the final visual state.
type RunResult struct {
	Items      []types.Item `json:"items"`
	Screenshot string       `json:"screenshot"`
	CurrentURL string       `json:"current_url,omitempty"`
}

// Loop runs a Stepper to completion against a session, executing each
// requested action in order and feeding the resulting screenshot back
// into the next step.
type Loop struct {
	stepper  Stepper
	maxTurns int
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewLoop creates an agent loop. A non-positive maxTurns falls back to
// DefaultMaxTurns.
func NewLoop(stepper Stepper, maxTurns int) *Loop {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Loop{
		stepper:  stepper,
		maxTurns: maxTurns,
		logger:   logging.NewNop(),
	}
}

// WithLogger attaches a logger.
func (l *Loop) WithLogger(logger *logging.Logger) *Loop {
	l.logger = logger
	return l
}

// WithMetrics attaches metrics collection.
func (l *Loop) WithMetrics(metrics *monitoring.Metrics) *Loop {
	l.metrics = metrics
	return l
}

// Run appends the user input to the conversation and steps the model
// until it stops requesting actions or the turn budget is exceeded. All
// items produced during the run are appended to the conversation as
// they arrive, so a failed run still leaves the partial transcript in
// the session history.
func (l *Loop) Run(ctx context.Context, conv Conversation, input string) (*RunResult, error) {
	conv.Append(types.UserMessage(input))

	inst := conv.Instance()
	screenshot, err := inst.Screenshot(ctx)
	if err != nil {
		return nil, err
	}

	var produced []types.Item
	turns := 0
	for {
		if turns >= l.maxTurns {
			l.logger.Warn("Agent turn limit exceeded", zap.Int("limit", l.maxTurns))
			return nil, &errdefs.TurnLimitError{Limit: l.maxTurns}
		}
		turns++

		items, err := l.stepper.Step(ctx, conv.History(), screenshot)
		if err != nil {
			return nil, err
		}
		if l.metrics != nil {
			l.metrics.AgentSteps.Inc()
		}
		conv.Append(items...)
		produced = append(produced, items...)

		pending := actionItems(items)
		if len(pending) == 0 {
			break
		}

		for _, item := range pending {
			a, err := action.Parse(item.Action)
			if err != nil {
				return nil, err
			}
			l.logger.Debug("Executing model action", zap.String("type", string(a.Type)), zap.Int("turn", turns))
			res, err := action.Dispatch(ctx, inst, conv.ComputerType(), a)
			if err != nil {
				return nil, err
			}
			screenshot = res.Screenshot
		}
	}

	if l.metrics != nil {
		l.metrics.AgentTurns.Observe(float64(turns))
	}

	final, err := inst.Screenshot(ctx)
	if err != nil {
		return nil, err
	}
	result := &RunResult{Items: produced, Screenshot: final}
	if conv.ComputerType().IsBrowser() {
		if url, err := inst.CurrentURL(ctx); err == nil {
			result.CurrentURL = url
		} else {
			l.logger.Debug("Current URL unavailable", zap.Error(err))
		}
	}
	return result, nil
}

func actionItems(items []types.Item) []types.Item {
	var out []types.Item
	for _, item := range items {
		if item.IsAction() {
			out = append(out, item)
		}
	}
	return out
}
