// Package model_selection provides cross-validation splitters.
package model_selection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
)

// Splitter partitions n labelled rows into validation folds.
type Splitter interface {
	Split(y []float64) ([]Fold, error)
	GetNSplits() int
}

// Fold holds the row indices of one cross-validation fold, both sorted
// ascending. Every row is in exactly one fold's ValidIndices.
type Fold struct {
	Index        int
	TrainIndices []int
	ValidIndices []int
}

// KFold implements shuffled k-fold cross-validation without stratification.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split assigns len(y) rows to folds. The first n % NSplits folds get one
// extra row.
func (kf *KFold) Split(y []float64) ([]Fold, error) {
	nSamples := len(y)
	if err := checkSplits(kf.NSplits, nSamples); err != nil {
		return nil, err
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := newRand(kf.RandomSeed)
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	assignment := make([]int, nSamples)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits
	current := 0
	for f := 0; f < kf.NSplits; f++ {
		size := foldSize
		if f < remainder {
			size++
		}
		for _, idx := range indices[current : current+size] {
			assignment[idx] = f
		}
		current += size
	}
	return buildFolds(assignment, kf.NSplits), nil
}

// StratifiedKFold implements stratified k-fold cross-validation: every fold
// receives floor or ceil of n_c / NSplits rows of each class c.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int

	// Logger receives a warning for classes smaller than NSplits.
	Logger log.Logger
}

// NewStratifiedKFold creates a new stratified k-fold splitter
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int) *StratifiedKFold {
	return &StratifiedKFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
		Logger:     log.GetLoggerWithName("model_selection"),
	}
}

// GetNSplits returns the number of splits
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split generates stratified folds. Classes are processed in ascending label
// order and shuffled with one generator seeded by RandomSeed, so the same
// labels and seed always give the same folds. The remainder rows of each
// class continue on the fold after the previous class's remainder, which
// keeps fold sizes within one row of each other.
func (skf *StratifiedKFold) Split(y []float64) ([]Fold, error) {
	nSamples := len(y)
	if err := checkSplits(skf.NSplits, nSamples); err != nil {
		return nil, err
	}

	classIndices := make(map[float64][]int)
	for i, label := range y {
		if math.IsNaN(label) {
			return nil, errors.NewValueError("StratifiedKFold.Split", "labels contain NaN")
		}
		classIndices[label] = append(classIndices[label], i)
	}
	labels := make([]float64, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	var r *rand.Rand
	if skf.Shuffle {
		r = newRand(skf.RandomSeed)
	}

	assignment := make([]int, nSamples)
	offset := 0
	for _, label := range labels {
		indices := classIndices[label]
		nClass := len(indices)
		if nClass < skf.NSplits && skf.Logger != nil {
			skf.Logger.Warn("The least populated class has fewer members than n_splits",
				"class", label,
				"members", nClass,
				log.NumFoldsKey, skf.NSplits,
			)
		}
		if r != nil {
			r.Shuffle(nClass, func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits
		current := 0
		for f := 0; f < skf.NSplits; f++ {
			size := foldSize
			if (f-offset+skf.NSplits)%skf.NSplits < remainder {
				size++
			}
			for _, idx := range indices[current : current+size] {
				assignment[idx] = f
			}
			current += size
		}
		offset = (offset + remainder) % skf.NSplits
	}
	return buildFolds(assignment, skf.NSplits), nil
}

func checkSplits(nSplits, nSamples int) error {
	if nSplits < 2 {
		return errors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	if nSplits > nSamples {
		return errors.NewValidationError("n_splits", "cannot be greater than the number of samples", nSplits)
	}
	return nil
}

func newRand(seed int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// buildFolds turns a row -> fold assignment into folds with sorted indices.
func buildFolds(assignment []int, nSplits int) []Fold {
	folds := make([]Fold, nSplits)
	for f := range folds {
		folds[f].Index = f
	}
	for row, f := range assignment {
		folds[f].ValidIndices = append(folds[f].ValidIndices, row)
	}
	for f := range folds {
		folds[f].TrainIndices = make([]int, 0, len(assignment)-len(folds[f].ValidIndices))
		for row, g := range assignment {
			if g != f {
				folds[f].TrainIndices = append(folds[f].TrainIndices, row)
			}
		}
	}
	return folds
}

// TakeRows copies the given rows of X, in the given order, into a new matrix.
func TakeRows(X mat.Matrix, indices []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	row := make([]float64, cols)
	for i, idx := range indices {
		mat.Row(row, idx, X)
		out.SetRow(i, row)
	}
	return out
}

// TakeValues returns v[indices[i]] for every i.
func TakeValues(v []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = v[idx]
	}
	return out
}
