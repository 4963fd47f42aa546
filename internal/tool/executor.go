package tool

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/errors"
)

// Observer receives one call per finished run.
type Observer interface {
	ObserveRun(tool string, outcome string, inputs int, elapsed time.Duration)
}

// Result is the outcome of a successful run: exactly one of Artifact or Bundle.
type Result struct {
	Tool        string
	Artifact    *artifact.Artifact
	Bundle      *artifact.Bundle
	ArchiveName string
}

// Download returns the single artifact, or the bundle packaged as a ZIP.
func (r *Result) Download() (*artifact.Artifact, error) {
	if r.Artifact != nil {
		return r.Artifact, nil
	}
	return r.Bundle.Archive(r.ArchiveName)
}

// Executor validates and runs transformations.
type Executor struct {
	logger   *slog.Logger
	observer Observer
}

// NewExecutor creates an executor. Both arguments may be nil.
func NewExecutor(logger *slog.Logger, observer Observer) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{logger: logger, observer: observer}
}

// Run validates inputs and configuration against desc, then invokes the
// transformation. Nothing is invoked unless every check passes.
func (e *Executor) Run(ctx context.Context, desc *Descriptor, inputs []*artifact.Artifact, config map[string]any) (*Result, error) {
	start := time.Now()
	res, err := e.run(ctx, desc, inputs, config)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "internal"
		if me := errors.As(err); me != nil {
			outcome = strings.ToLower(string(me.Code))
		}
		e.logger.Warn("transform failed", "tool", desc.ID, "inputs", len(inputs), "duration", elapsed, "outcome", outcome, "err", err)
	} else {
		e.logger.Info("transform finished", "tool", desc.ID, "inputs", len(inputs), "duration", elapsed)
	}
	if e.observer != nil {
		e.observer.ObserveRun(desc.ID, outcome, len(inputs), elapsed)
	}
	return res, err
}

func (e *Executor) run(ctx context.Context, desc *Descriptor, inputs []*artifact.Artifact, config map[string]any) (*Result, error) {
	if len(inputs) == 0 || (!desc.Multiple && len(inputs) > 1) {
		return nil, errors.NewArityMismatch(desc.ID, desc.Multiple, len(inputs))
	}
	for _, in := range inputs {
		if !desc.AcceptsKind(in.Kind()) {
			accepted := make([]string, len(desc.Accepts))
			for i, k := range desc.Accepts {
				accepted[i] = string(k)
			}
			return nil, errors.NewKindMismatch(desc.ID, in.Name(), string(in.Kind()), accepted)
		}
	}
	opts, err := ValidateOptions(desc.Options, config)
	if err != nil {
		return nil, err
	}
	if err := desc.Available(); err != nil {
		if errors.Is(err, errors.ErrDependencyUnavailable) {
			return nil, err
		}
		return nil, errors.NewDependencyUnavailable(desc.ID, err)
	}

	out, err := e.invoke(ctx, desc, Input{Artifacts: inputs, Options: opts})
	if err != nil {
		return nil, classify(desc.ID, err)
	}

	switch {
	case out == nil || (out.Artifact == nil) == (out.Bundle == nil):
		return nil, errors.NewTransformationFailed(desc.ID, stderrors.New("transformation must return exactly one artifact or bundle"))
	case out.Bundle != nil && out.Bundle.Len() == 0:
		return nil, errors.NewTransformationFailed(desc.ID, stderrors.New("transformation produced no output"))
	}

	res := &Result{Tool: desc.ID, Artifact: out.Artifact, Bundle: out.Bundle, ArchiveName: out.ArchiveName}
	if res.Bundle != nil && res.ArchiveName == "" {
		res.ArchiveName = desc.ID + ".zip"
	}
	return res, nil
}

func (e *Executor) invoke(ctx context.Context, desc *Descriptor, in Input) (out *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("transform panicked", "tool", desc.ID, "panic", r, "stack", string(debug.Stack()))
			out = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return desc.Execute(ctx, in)
}

// classify keeps backend errors that already carry a caller-facing meaning
// and wraps everything else.
func classify(toolID string, err error) error {
	if me := errors.As(err); me != nil {
		switch me.Code {
		case errors.ErrIndexOutOfRange, errors.ErrInvalidConfig, errors.ErrDependencyUnavailable, errors.ErrTransformationFailed:
			return me
		}
	}
	return errors.NewTransformationFailed(toolID, err)
}
