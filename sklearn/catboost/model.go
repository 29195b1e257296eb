package catboost

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/core/parallel"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// Model is a trained ensemble of oblivious trees. The raw score of a row is
// InitScore plus the sum of its leaf values; PredictProba applies the sigmoid.
type Model struct {
	Trees       []ObliviousTree `json:"trees"`
	InitScore   float64         `json:"init_score"`
	NumFeatures int             `json:"num_features"`
	Params      TrainingParams  `json:"params"`

	// BestIteration is the 0-based iteration with the best score on the
	// monitored evaluation set, or -1 without one.
	BestIteration int                `json:"best_iteration"`
	BestScore     map[string]float64 `json:"best_score,omitempty"`
}

// NumTrees returns the number of trees in the ensemble.
func (m *Model) NumTrees() int {
	return len(m.Trees)
}

// PredictRaw returns the raw score (log-odds) of every row of X.
func (m *Model) PredictRaw(X mat.Matrix, workers int) ([]float64, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, errors.NewDimensionError("Model.PredictRaw", m.NumFeatures, cols, 1)
	}

	out := make([]float64, rows)
	parallel.ParallelizeWithThreshold(rows, 256, workers, func(start, end int) {
		row := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			score := m.InitScore
			for t := range m.Trees {
				score += m.Trees[t].PredictRow(row)
			}
			out[i] = score
		}
	})

	if err := errors.CheckNumericalStability("prediction", out, -1); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictProba returns the positive-class probability of every row of X.
func (m *Model) PredictProba(X mat.Matrix, workers int) ([]float64, error) {
	raw, err := m.PredictRaw(X, workers)
	if err != nil {
		return nil, err
	}
	for i, r := range raw {
		raw[i] = errors.Sigmoid(r)
	}
	return raw, nil
}

// FeatureImportance returns the split gain accumulated per feature,
// normalized to sum to 100. Features never split on get 0.
func (m *Model) FeatureImportance() []float64 {
	importance := make([]float64, m.NumFeatures)
	for _, tree := range m.Trees {
		for _, s := range tree.Splits {
			importance[s.Feature] += s.Gain
		}
	}

	total := 0.0
	for _, v := range importance {
		total += v
	}
	if total > 0 {
		for i := range importance {
			importance[i] = 100 * importance[i] / total
		}
	}
	return importance
}

// SaveToJSON writes the model to path, creating parent directories.
func (m *Model) SaveToJSON(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewIOError("write", path, err)
	}
	return nil
}

// LoadModelFromJSON reads a model written by SaveToJSON.
func LoadModelFromJSON(path string) (*Model, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse model %s", path)
	}
	for i, tree := range m.Trees {
		if len(tree.LeafValues) != 1<<tree.Depth() {
			return nil, errors.NewValueError("LoadModelFromJSON",
				fmt.Sprintf("tree %d has %d leaves for depth %d", i, len(tree.LeafValues), tree.Depth()))
		}
		for _, s := range tree.Splits {
			if s.Feature < 0 || s.Feature >= m.NumFeatures {
				return nil, errors.NewValueError("LoadModelFromJSON",
					fmt.Sprintf("tree %d splits on unknown feature %d", i, s.Feature))
			}
		}
	}
	return &m, nil
}
