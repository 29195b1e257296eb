package catboost

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/core/parallel"
)

// Borders holds the sorted split candidates of every feature. A value v
// falls into bin k when exactly k borders are strictly below v, so the
// condition "v > borders[f][k]" is equivalent to "bin > k". NaN sorts
// before every border and always lands in bin 0.
type Borders [][]float64

// computeBorders picks up to maxBorders split candidates per feature from
// the training matrix: midpoints between adjacent distinct values when there
// are few of them, otherwise midpoints at equal-frequency quantile cuts.
func computeBorders(X mat.Matrix, maxBorders, workers int) Borders {
	rows, cols := X.Dims()
	borders := make(Borders, cols)

	parallel.Parallelize(cols, workers, func(start, end int) {
		values := make([]float64, 0, rows)
		for j := start; j < end; j++ {
			values = values[:0]
			for i := 0; i < rows; i++ {
				if v := X.At(i, j); !math.IsNaN(v) {
					values = append(values, v)
				}
			}
			borders[j] = featureBorders(values, maxBorders)
		}
	})
	return borders
}

func featureBorders(values []float64, maxBorders int) []float64 {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	unique := values[:1:1]
	for _, v := range values[1:] {
		if v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}

	if len(unique)-1 <= maxBorders {
		out := make([]float64, 0, len(unique)-1)
		for i := 1; i < len(unique); i++ {
			out = append(out, midpoint(unique[i-1], unique[i]))
		}
		return out
	}

	n := len(values)
	out := make([]float64, 0, maxBorders)
	for k := 1; k <= maxBorders; k++ {
		idx := k * n / (maxBorders + 1)
		// move the cut forward to the next change of value
		for idx > 0 && idx < n && values[idx-1] == values[idx] {
			idx++
		}
		if idx <= 0 || idx >= n {
			continue
		}
		b := midpoint(values[idx-1], values[idx])
		if len(out) == 0 || b > out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out
}

func midpoint(a, b float64) float64 {
	m := a + (b-a)/2
	if m >= b {
		return a
	}
	return m
}

// binOf returns the bin index of v given sorted borders.
func binOf(borders []float64, v float64) uint16 {
	if math.IsNaN(v) {
		return 0
	}
	return uint16(sort.SearchFloat64s(borders, v))
}

// quantizedPool stores bin indices column-major: bins[feature][row].
type quantizedPool struct {
	rows int
	bins [][]uint16
}

func quantize(X mat.Matrix, borders Borders, workers int) *quantizedPool {
	rows, cols := X.Dims()
	q := &quantizedPool{rows: rows, bins: make([][]uint16, cols)}

	parallel.Parallelize(cols, workers, func(start, end int) {
		for j := start; j < end; j++ {
			col := make([]uint16, rows)
			for i := 0; i < rows; i++ {
				col[i] = binOf(borders[j], X.At(i, j))
			}
			q.bins[j] = col
		}
	})
	return q
}
