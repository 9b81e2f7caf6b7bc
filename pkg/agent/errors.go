package agent

import "errors"

var (
	// ErrEmptyQuery rejects a request before it enters the workflow.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrWorkflowCycleExceeded indicates the routing table is misconfigured:
	// the stage loop ran past the configured step bound. This is an engine
	// defect, not a user-input problem.
	ErrWorkflowCycleExceeded = errors.New("workflow cycle exceeded")

	// ErrNoRoute indicates the router could not resolve a next stage.
	ErrNoRoute = errors.New("no route resolved for stage")
)
