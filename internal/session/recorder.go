package session

import (
	"context"
	"sync"
)

// Op is a single recorded session operation.
type Op struct {
	Kind string // "evaluate", "query_selector", "query_selector_all"
	Arg  string
}

// Recorder is an in-memory Session that records every operation.
// It backs tests and the CLI's dry-run mode, where no live page exists.
type Recorder struct {
	mu  sync.Mutex
	ops []Op

	// EvaluateFn, when set, supplies the result of Evaluate calls.
	// When nil, Evaluate records the expression and returns nil.
	EvaluateFn func(expression string) (any, error)

	// Elements maps selectors to canned query results.
	Elements map[string][]any
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Elements: make(map[string][]any)}
}

// Evaluate records the expression and returns the canned result, if any.
func (r *Recorder) Evaluate(ctx context.Context, expression string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.ops = append(r.ops, Op{Kind: "evaluate", Arg: expression})
	fn := r.EvaluateFn
	r.mu.Unlock()

	if fn != nil {
		return fn(expression)
	}
	return nil, nil
}

// QuerySelector returns the first canned element for the selector, or nil.
func (r *Recorder) QuerySelector(ctx context.Context, selector string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, Op{Kind: "query_selector", Arg: selector})
	if els := r.Elements[selector]; len(els) > 0 {
		return els[0], nil
	}
	return nil, nil
}

// QuerySelectorAll returns all canned elements for the selector.
func (r *Recorder) QuerySelectorAll(ctx context.Context, selector string) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = append(r.ops, Op{Kind: "query_selector_all", Arg: selector})
	return append([]any{}, r.Elements[selector]...), nil
}

// Ops returns a snapshot of all recorded operations.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op{}, r.ops...)
}

// Evaluated returns the expressions passed to Evaluate, in call order.
func (r *Recorder) Evaluated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, op := range r.ops {
		if op.Kind == "evaluate" {
			out = append(out, op.Arg)
		}
	}
	return out
}
