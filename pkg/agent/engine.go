package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	// defaultMaxSteps bounds the stage loop. The default routing table needs
	// at most three stage invocations, so hitting this bound means the table
	// is misconfigured.
	defaultMaxSteps = 10

	// defaultStageTimeout caps one stage invocation.
	defaultStageTimeout = 60 * time.Second
)

// degradedResponse is the canned answer when the respond stage itself fails
// and no text could be produced at all.
const degradedResponse = "I'm sorry, I couldn't generate a response right now. Please try again in a moment."

// EmitFunc receives one streamed response delta. A nil EmitFunc disables
// streaming; only the respond stage consults it.
type EmitFunc func(delta string)

// Stage is one node of the workflow. Run reads the state and returns a
// partial update; it must not mutate the state directly.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *RequestState, emit EmitFunc) StageResult
}

// EngineOption tweaks engine construction.
type EngineOption func(*Engine)

func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) { e.maxSteps = n }
}

func WithStageTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.stageTimeout = d }
}

// Engine drives a request through the stage graph: resolve the next stage,
// run it under a per-stage timeout, merge the result, repeat until terminal.
// A stage failure is recorded and routed to respond so the user still gets
// an answer; only a cycle overrun or an unresolvable route abort the run.
type Engine struct {
	stages       map[string]Stage
	router       *Router
	maxSteps     int
	stageTimeout time.Duration
	logger       *log.Logger
}

func NewEngine(router *Router, logger *log.Logger, stages []Stage, opts ...EngineOption) *Engine {
	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		byName[s.Name()] = s
	}

	e := &Engine{
		stages:       byName,
		router:       router,
		maxSteps:     defaultMaxSteps,
		stageTimeout: defaultStageTimeout,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the workflow to completion, mutating st in place. The
// returned error is nil even for degraded runs; it is non-nil only for
// structural failures (cycle overrun, unresolvable route, cancelled ctx).
func (e *Engine) Execute(ctx context.Context, st *RequestState, emit EmitFunc) error {
	current := StageEntry
	forced := ""
	started := time.Now()

	// Mirror everything handed to the consumer so degraded runs can keep the
	// final text equal to the stream even after a mid-stream failure.
	var streamed strings.Builder
	trackedEmit := emit
	if emit != nil {
		trackedEmit = func(delta string) {
			streamed.WriteString(delta)
			emit(delta)
		}
	}

	for steps := 0; ; steps++ {
		if steps >= e.maxSteps {
			e.logger.Printf("[ENGINE] Step bound %d hit at stage %q, trace: %v", e.maxSteps, current, st.Trace)
			return fmt.Errorf("%w: %d steps, trace %v", ErrWorkflowCycleExceeded, steps, st.Trace)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		next := forced
		forced = ""
		if next == "" {
			resolved, err := e.router.Next(current, st)
			if err != nil {
				return err
			}
			next = resolved
		}
		if next == StageTerminal {
			break
		}

		stage, ok := e.stages[next]
		if !ok {
			return fmt.Errorf("%w: stage %q not registered", ErrNoRoute, next)
		}

		st.Trace = append(st.Trace, next)
		result := e.runStage(ctx, stage, st, trackedEmit)

		if result.Failure != nil {
			// A cancelled caller is not a stage problem. Abort instead of
			// degrading.
			if err := ctx.Err(); err != nil {
				return err
			}

			e.logger.Printf("[ENGINE] Stage %q failed (%s): %s", next, result.Failure.Kind, result.Failure.Message)
			st.Failure = result.Failure

			if next == StageRespond {
				// Nothing left to fall back to. If part of the answer already
				// reached the consumer, adopt it as the final text; otherwise
				// hand out the canned answer as a single delta. Either way the
				// stream stays equal to the final text.
				if streamed.Len() > 0 {
					st.ResponseText = streamed.String()
				} else {
					st.ResponseText = degradedResponse
					if emit != nil {
						emit(degradedResponse)
					}
				}
				break
			}

			// Degrade: skip straight to respond so the user still gets an
			// answer built from whatever state accumulated so far.
			forced = StageRespond
			current = next
			continue
		}

		st.merge(result)
		current = next
	}

	e.logger.Printf("[ENGINE] Run finished in %s, trace: %v, degraded=%t", time.Since(started), st.Trace, st.Failure != nil)
	return nil
}

// runStage invokes one stage under the per-stage timeout.
func (e *Engine) runStage(ctx context.Context, stage Stage, st *RequestState, emit EmitFunc) StageResult {
	stageCtx, cancel := context.WithTimeout(ctx, e.stageTimeout)
	defer cancel()

	if stage.Name() != StageRespond {
		emit = nil
	}
	return stage.Run(stageCtx, st, emit)
}
