package research

import (
	"context"

	"github.com/jitmemory/jitmemory/types"
)

// Stream is the streaming research entry point: it runs the bounded
// Plan/Search/Integrate/Reflect loop and emits one ResearchStep per
// phase. The returned error channel carries at most one error and is
// closed alongside steps; a value there means the loop aborted and the
// last CurrentContext seen on steps must be discarded.
func (l *Loop) Stream(ctx context.Context, owner, queryText string, opts types.ResearchOptions) (<-chan types.ResearchStep, <-chan error) {
	steps := make(chan types.ResearchStep)
	errs := make(chan error, 1)

	rc := types.NewResearchContext(owner, queryText, opts)
	rc.QueryEmbedding = nil

	go func() {
		defer close(steps)
		defer close(errs)
		if err := l.run(ctx, rc, steps); err != nil {
			errs <- err
		}
	}()

	return steps, errs
}

// Run is the non-streaming research entry point (C6's Research
// operation): it drains Stream and returns the CurrentContext attached
// to the last emitted step, or types.Empty if none was emitted.
func (l *Loop) Run(ctx context.Context, owner, queryText string, opts types.ResearchOptions) (types.MemoryContext, error) {
	steps, errs := l.Stream(ctx, owner, queryText, opts)

	last := types.Empty
	seen := false
	for step := range steps {
		last = step.CurrentContext
		seen = true
	}

	if err := <-errs; err != nil {
		return types.MemoryContext{}, err
	}
	if !seen {
		return types.Empty, nil
	}
	return last, nil
}
