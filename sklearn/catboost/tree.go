package catboost

// Split is one level of an oblivious tree. Every node on the level tests the
// same condition: value > Threshold, i.e. bin > BorderIndex.
type Split struct {
	Feature     int     `json:"feature"`
	BorderIndex int     `json:"border_index"`
	Threshold   float64 `json:"threshold"`
	Gain        float64 `json:"gain"`
}

// ObliviousTree is a symmetric tree of depth len(Splits). The leaf of a row is
// the bit pattern of its split outcomes, level l contributing bit l, so
// LeafValues has 1<<depth entries.
type ObliviousTree struct {
	Splits      []Split   `json:"splits"`
	LeafValues  []float64 `json:"leaf_values"`
	LeafWeights []float64 `json:"leaf_weights"`
}

// Depth returns the number of levels.
func (t *ObliviousTree) Depth() int {
	return len(t.Splits)
}

// LeafIndex returns the leaf reached by a raw feature row. NaN compares false
// and goes to the left branch like bin 0.
func (t *ObliviousTree) LeafIndex(row []float64) int {
	idx := 0
	for l, s := range t.Splits {
		if row[s.Feature] > s.Threshold {
			idx |= 1 << l
		}
	}
	return idx
}

// PredictRow returns the leaf value for a raw feature row.
func (t *ObliviousTree) PredictRow(row []float64) float64 {
	return t.LeafValues[t.LeafIndex(row)]
}

// leafIndexBinned returns the leaf of row i of a pool quantized with the
// training borders.
func (t *ObliviousTree) leafIndexBinned(q *quantizedPool, i int) int {
	idx := 0
	for l, s := range t.Splits {
		if int(q.bins[s.Feature][i]) > s.BorderIndex {
			idx |= 1 << l
		}
	}
	return idx
}
