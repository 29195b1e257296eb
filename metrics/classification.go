package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// logLossEps はlog(0)を避けるためのクリッピング幅
const logLossEps = 1e-15

// AUC はROC曲線下面積（Area Under the ROC Curve）を計算する
// 同順位のスコアは平均順位として扱う。正例または負例しか存在しない場合は0.5を返す
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	t, s, err := vecPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	return AUCScore(t, s)
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（先頭列を使用）
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	if yTrue == nil || yScore == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yScore.Dims()
	if rTrue == 0 || cTrue == 0 || cPred == 0 {
		return 0, errors.NewValueError("AUCMatrix", "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AUCMatrix", rTrue, rPred, 0)
	}

	t := make([]float64, rTrue)
	s := make([]float64, rTrue)
	for i := 0; i < rTrue; i++ {
		t[i] = yTrue.At(i, 0)
		s[i] = yScore.At(i, 0)
	}
	return AUCScore(t, s)
}

// AUCScore はスライス入力版のAUC
// Mann-Whitney U統計量から計算するため O(n log n)
func AUCScore(yTrue, yScore []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if len(yScore) != n {
		return 0, errors.NewDimensionError("AUC", n, len(yScore), 0)
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return yScore[order[a]] < yScore[order[b]]
	})

	// 同順位グループに平均順位（1始まり）を割り当てながら正例の順位和を求める
	var rankSumPos float64
	var nPos int
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore[order[j+1]] == yScore[order[i]] {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue[order[k]] == 1 {
				rankSumPos += avgRank
				nPos++
			}
		}
		i = j + 1
	}

	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0.5, nil
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// BinaryLogLoss は二値分類の対数損失を計算する
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	t, p, err := vecPair("BinaryLogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	return LogLossScore(t, p)
}

// LogLossScore はスライス入力版の対数損失
func LogLossScore(yTrue, yProb []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if len(yProb) != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, len(yProb), 0)
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var loss float64
	for i := 0; i < n; i++ {
		p := errors.ClipProbability(yProb[i], logLossEps)
		if yTrue[i] == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(n), nil
}

// ROCPoint はROC曲線上の1点
type ROCPoint struct {
	FPR       float64
	TPR       float64
	Threshold float64
}

// ROCCurve はスコアの降順にしきい値を動かしたときのROC曲線を返す
// 先頭は必ず (0, 0)、末尾は (1, 1)
func ROCCurve(yTrue, yScore []float64) ([]ROCPoint, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, errors.NewValueError("ROCCurve", "empty vector")
	}
	if len(yScore) != n {
		return nil, errors.NewDimensionError("ROCCurve", n, len(yScore), 0)
	}
	if err := checkBinary("ROCCurve", yTrue); err != nil {
		return nil, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return yScore[order[a]] > yScore[order[b]]
	})

	var nPos, nNeg float64
	for _, y := range yTrue {
		if y == 1 {
			nPos++
		} else {
			nNeg++
		}
	}

	points := []ROCPoint{{FPR: 0, TPR: 0, Threshold: math.Inf(1)}}
	var tp, fp float64
	for i := 0; i < n; i++ {
		if yTrue[order[i]] == 1 {
			tp++
		} else {
			fp++
		}
		// 同じスコアが続く間は点を追加しない
		if i+1 < n && yScore[order[i+1]] == yScore[order[i]] {
			continue
		}
		points = append(points, ROCPoint{
			FPR:       errors.SafeRatio(fp, nNeg),
			TPR:       errors.SafeRatio(tp, nPos),
			Threshold: yScore[order[i]],
		})
	}
	return points, nil
}

func vecPair(op string, a, b *mat.VecDense) ([]float64, []float64, error) {
	if a == nil || b == nil || a.IsEmpty() || b.IsEmpty() {
		return nil, nil, errors.NewValueError(op, "empty vector")
	}
	if a.Len() != b.Len() {
		return nil, nil, errors.NewDimensionError(op, a.Len(), b.Len(), 0)
	}
	return mat.Col(nil, 0, a), mat.Col(nil, 0, b), nil
}

func checkBinary(op string, y []float64) error {
	for _, v := range y {
		if v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
	}
	return nil
}
