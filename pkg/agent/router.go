package agent

import "fmt"

// RouteFunc picks the next stage for the current state. It must be pure:
// no side effects, no mutation of the state.
type RouteFunc func(st *RequestState) string

// Router maps the current stage to the next one via a routing table.
// Keeping the table separate from stage execution makes the decision
// logic independently testable.
type Router struct {
	table map[string]RouteFunc
}

// NewRouter builds the default routing table:
//
//	entry    -> classify
//	classify -> search            (intent == web_search)
//	classify -> retrieve          (code intent AND project scope present)
//	classify -> respond           (otherwise)
//	search   -> respond
//	retrieve -> respond
//	respond  -> terminal
func NewRouter() *Router {
	return NewRouterFromTable(map[string]RouteFunc{
		StageEntry: func(st *RequestState) string {
			return StageClassify
		},
		StageClassify: func(st *RequestState) string {
			switch {
			case st.Intent == IntentWebSearch:
				return StageSearch
			case (st.Intent == IntentCodeExplanation || st.Intent == IntentCodeDebug) && st.ProjectId != nil:
				return StageRetrieve
			default:
				// Covers code_generation, general_chat and defaulted intents.
				return StageRespond
			}
		},
		StageSearch: func(st *RequestState) string {
			return StageRespond
		},
		StageRetrieve: func(st *RequestState) string {
			return StageRespond
		},
		StageRespond: func(st *RequestState) string {
			return StageTerminal
		},
	})
}

// NewRouterFromTable builds a router over a custom table. Used by tests to
// exercise misconfigured routing.
func NewRouterFromTable(table map[string]RouteFunc) *Router {
	return &Router{table: table}
}

// Next resolves the stage that follows current. An unresolvable route is a
// structural engine failure.
func (r *Router) Next(current string, st *RequestState) (string, error) {
	route, ok := r.table[current]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoRoute, current)
	}
	next := route(st)
	if next == "" {
		return "", fmt.Errorf("%w: %q returned empty route", ErrNoRoute, current)
	}
	return next, nil
}
