// Package imaging implements the preprocessor: resize-to-canonical-width
// followed by CLAHE contrast normalization, structured as a composable
// ProcessingStep chain so new steps can be inserted without touching
// Preprocessor.Process itself.
package imaging

import (
	"context"
	"fmt"

	"github.com/irislab/irisgo/internal/opencv/safe"
)

// Step is a single stage in a Chain. Params is a per-call map shared by the
// chain's steps (the resize step writes its scale factor into it); tunables
// such as the CLAHE clip limit are fixed when a step is constructed, which
// is how C1 and the re-applied CLAHE in C5 share one step type.
type Step interface {
	Apply(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error)
	Name() string
}

// Chain runs a fixed sequence of Steps, closing every intermediate Mat so
// only the final result and the original input stay alive.
type Chain struct {
	steps []Step
}

func NewChain(steps ...Step) *Chain {
	return &Chain{steps: steps}
}

func (c *Chain) Execute(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	current := input
	owned := false

	for _, step := range c.steps {
		select {
		case <-ctx.Done():
			if owned {
				current.Close()
			}
			return nil, ctx.Err()
		default:
		}

		result, err := step.Apply(ctx, current, params)
		if err != nil {
			if owned {
				current.Close()
			}
			return nil, fmt.Errorf("imaging: step %s: %w", step.Name(), err)
		}

		if owned {
			current.Close()
		}
		current = result
		owned = true
	}

	if !owned {
		return current.Clone()
	}
	return current, nil
}
