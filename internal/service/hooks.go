package service

import (
	"context"

	"github.com/quillcms/quill/internal/domain"
)

// HookRunner folds a collection's hooks for one phase over the
// accumulator. Hooks run strictly in declared order, never
// concurrently; each hook sees the previous hook's output and a nil
// return keeps the current accumulator.
type HookRunner struct{}

func NewHookRunner() *HookRunner {
	return &HookRunner{}
}

func (r *HookRunner) Run(ctx context.Context, phase domain.HookPhase, hc *domain.HookContext) (map[string]any, error) {
	acc := hc.Data
	if phase == domain.HookAfterOperation {
		acc = hc.Result
	}

	for _, hook := range hc.Collection.Hooks.Phase(phase) {
		hc.Phase = phase
		if phase == domain.HookAfterOperation {
			hc.Result = acc
		} else {
			hc.Data = acc
		}

		out, err := hook(ctx, hc)
		if err != nil {
			return nil, err
		}
		if out != nil {
			acc = out
		}
	}

	return acc, nil
}
