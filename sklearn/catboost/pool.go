package catboost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// Pool is a feature matrix with optional binary labels, the unit of data
// handed to Fit and to evaluation. Test pools carry no labels.
type Pool struct {
	Name  string
	X     mat.Matrix
	Label []float64
}

// NewPool validates that label (if any) has one binary entry per row.
func NewPool(X mat.Matrix, label []float64) (*Pool, error) {
	if X == nil {
		return nil, errors.NewValueError("NewPool", "nil feature matrix")
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError("NewPool", "empty feature matrix")
	}
	if label != nil {
		if len(label) != rows {
			return nil, errors.NewDimensionError("NewPool", rows, len(label), 0)
		}
		for _, v := range label {
			if v != 0 && v != 1 {
				return nil, errors.NewValueError("NewPool", "labels must be binary (0 or 1)")
			}
		}
	}
	return &Pool{X: X, Label: label}, nil
}

// Named sets the name used for this pool in evaluation results.
func (p *Pool) Named(name string) *Pool {
	p.Name = name
	return p
}

// Dims returns the number of rows and features.
func (p *Pool) Dims() (rows, cols int) {
	return p.X.Dims()
}

// HasLabel reports whether the pool can be evaluated.
func (p *Pool) HasLabel() bool {
	return p.Label != nil
}
