package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// ProbaPredictor は正例クラスの確率を行ごとに返すモデルのインターフェース
type ProbaPredictor interface {
	PredictProba(X mat.Matrix) ([]float64, error)
}

// RawPredictor は変換前の生スコア（対数オッズ）を返すモデルのインターフェース
type RawPredictor interface {
	PredictRaw(X mat.Matrix) ([]float64, error)
}

// EvalFitter は学習データと評価用データを受け取って学習するモデルのインターフェース
// evalX/evalY は同じ長さで、最後の組がearly stoppingの監視対象となる
type EvalFitter interface {
	FitEval(ctx context.Context, X mat.Matrix, y []float64, evalX []mat.Matrix, evalY [][]float64) error
}

// Releaser は学習済みの状態を解放するモデルのインターフェース
// 解放後のモデルは再度学習するまで予測できない
type Releaser interface {
	Close() error
}

// BinaryClassifier はfold単位で構築・学習・予測・破棄される分類器の契約
type BinaryClassifier interface {
	EvalFitter
	ProbaPredictor
	Releaser
}
