package catboost

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/foldboost/core/parallel"
	"github.com/YuminosukeSato/foldboost/metrics"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
)

// Trainer implements gradient boosting of oblivious trees on quantized
// features. A Trainer is single-use: call Fit once.
type Trainer struct {
	params    TrainingParams
	objective ObjectiveFunction
	workers   int
	logger    log.Logger

	// Data
	borders Borders
	train   *quantizedPool
	label   []float64
	evals   []*evalSet

	// Cached raw scores, updated incrementally after every tree
	trainRaw []float64

	// Per-iteration buffers
	weights   []float64
	gradients []float64
	hessians  []float64
	leafOf    []uint32

	trees     []ObliviousTree
	initScore float64
	boot      bootstrapper
	early     *EarlyStopping

	callbacks []Callback
	history   map[string][]float64
}

// evalSet is an evaluation pool quantized with the training borders.
type evalSet struct {
	name  string
	pool  *quantizedPool
	label []float64
	raw   []float64
}

// NewTrainer creates a trainer for validated params.
func NewTrainer(params TrainingParams) *Trainer {
	workers := params.ThreadCount
	if workers <= 0 {
		workers = parallel.NumWorkers()
	}
	return &Trainer{
		params:  params,
		workers: workers,
		logger:  log.GetLoggerWithName("catboost.trainer"),
		history: make(map[string][]float64),
	}
}

// WithCallbacks adds callbacks run after every iteration.
func (t *Trainer) WithCallbacks(callbacks ...Callback) *Trainer {
	t.callbacks = append(t.callbacks, callbacks...)
	return t
}

// WithLogger replaces the trainer's logger.
func (t *Trainer) WithLogger(logger log.Logger) *Trainer {
	t.logger = logger
	return t
}

// EvalHistory returns the per-iteration evaluation results keyed by
// "<pool name>:<metric>".
func (t *Trainer) EvalHistory() map[string][]float64 {
	return t.history
}

// Fit trains on train and evaluates on every labelled eval pool after each
// iteration. The last eval pool drives early stopping. ctx is checked once
// per iteration.
func (t *Trainer) Fit(ctx context.Context, train *Pool, evalPools ...*Pool) (*Model, error) {
	if err := t.params.Validate(); err != nil {
		return nil, err
	}
	if train == nil || !train.HasLabel() {
		return nil, errors.NewValueError("Trainer.Fit", "training pool must have labels")
	}
	if err := t.initialize(train, evalPools); err != nil {
		return nil, err
	}

	monitored := t.monitoredEval()
	if t.params.EarlyStoppingRounds > 0 && monitored == nil {
		t.logger.Warn("Early stopping requested without a labelled eval set; training all iterations",
			log.IterationsKey, t.params.Iterations)
	}

	cbs := append([]Callback{RecordEvaluation(&t.history)}, t.callbacks...)
	if t.params.VerboseEval > 0 {
		cbs = append(cbs, PrintEvaluation(t.params.VerboseEval, t.logger))
	}
	callbacks := NewCallbackList(t.params.Iterations, cbs...)

	start := time.Now()
	for iter := 0; iter < t.params.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "training interrupted at iteration %d", iter)
		}

		tree, err := t.boostOnce(ctx, iter)
		if err != nil {
			return nil, err
		}
		t.trees = append(t.trees, tree)

		results := t.evaluate()
		stop := false
		if monitored != nil {
			score := results[monitored.name+":"+t.params.EvalMetric]
			stop = t.early.Update(iter, score)
		}

		if err := callbacks.AfterIteration(iter, t.early.GetBestIteration(), results, stop); err != nil {
			return nil, errors.Wrap(err, "callback failed")
		}
		if stop {
			t.logger.Info("Early stopping",
				log.IterationKey, iter,
				log.BestIterationKey, t.early.BestIteration,
				log.ScoreKey, t.early.BestScore,
			)
			break
		}
		if callbacks.ShouldStop() {
			t.logger.Info("Training stopped by callback", log.IterationKey, iter)
			break
		}
	}

	model := t.buildModel(monitored)
	t.logger.Debug("Training finished",
		log.TreesKey, model.NumTrees(),
		log.BestIterationKey, model.BestIteration,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return model, nil
}

func (t *Trainer) initialize(train *Pool, evalPools []*Pool) error {
	objective, err := CreateObjectiveFunction(t.params.Objective)
	if err != nil {
		return err
	}
	t.objective = objective

	rows, cols := train.Dims()
	t.borders = computeBorders(train.X, t.params.BorderCount, t.workers)
	t.train = quantize(train.X, t.borders, t.workers)
	t.label = train.Label

	if t.params.BoostFromAverage {
		t.initScore = t.objective.GetInitScore(t.label)
	}
	t.trainRaw = filled(rows, t.initScore)

	t.weights = make([]float64, rows)
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.leafOf = make([]uint32, rows)
	t.boot = newBootstrapper(t.params)
	t.early = NewEarlyStopping(t.params.EarlyStoppingRounds, t.params.EvalMetric)

	for i, p := range evalPools {
		if p == nil {
			return errors.NewValueError("Trainer.Fit", fmt.Sprintf("eval pool %d is nil", i))
		}
		r, c := p.Dims()
		if c != cols {
			return errors.NewInputShapeError("validation", []int{-1, cols}, []int{-1, c})
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("validation_%d", i)
		}
		t.evals = append(t.evals, &evalSet{
			name:  name,
			pool:  quantize(p.X, t.borders, t.workers),
			label: p.Label,
			raw:   filled(r, t.initScore),
		})
	}
	return nil
}

// monitoredEval returns the last labelled eval set, the one early stopping
// and the best iteration are based on.
func (t *Trainer) monitoredEval() *evalSet {
	for i := len(t.evals) - 1; i >= 0; i-- {
		if t.evals[i].label != nil {
			return t.evals[i]
		}
	}
	return nil
}

// boostOnce samples weights, computes weighted gradients, grows one tree and
// adds it to the cached raw scores.
func (t *Trainer) boostOnce(ctx context.Context, iter int) (ObliviousTree, error) {
	t.boot.Sample(t.weights)

	parallel.ParallelizeWithThreshold(len(t.label), 4096, t.workers, func(start, end int) {
		for i := start; i < end; i++ {
			w := t.weights[i]
			t.gradients[i] = w * t.objective.CalculateGradient(t.trainRaw[i], t.label[i])
			t.hessians[i] = w * t.objective.CalculateHessian(t.trainRaw[i], t.label[i])
		}
	})
	if err := errors.CheckNumericalStability("gradient", t.gradients, iter); err != nil {
		return ObliviousTree{}, err
	}

	tree, err := t.growTree(ctx)
	if err != nil {
		return ObliviousTree{}, err
	}
	if err := errors.CheckNumericalStability("leaf_value", tree.LeafValues, iter); err != nil {
		return ObliviousTree{}, err
	}

	parallel.ParallelizeWithThreshold(len(t.trainRaw), 4096, t.workers, func(start, end int) {
		for i := start; i < end; i++ {
			t.trainRaw[i] += tree.LeafValues[t.leafOf[i]]
		}
	})
	for _, es := range t.evals {
		parallel.ParallelizeWithThreshold(len(es.raw), 4096, t.workers, func(start, end int) {
			for i := start; i < end; i++ {
				es.raw[i] += tree.LeafValues[tree.leafIndexBinned(es.pool, i)]
			}
		})
	}
	return tree, nil
}

// levelSplit is the best candidate condition found for one feature.
type levelSplit struct {
	feature int
	border  int
	score   float64
}

// growTree grows an oblivious tree level by level. On each level every
// feature is scanned concurrently and the condition maximizing the summed
// L2 score G^2/(H+lambda) over all current leaves is applied to all of them.
// Growth stops early when no feature has a usable border.
func (t *Trainer) growTree(ctx context.Context) (ObliviousTree, error) {
	lambda := t.params.L2LeafReg
	for i := range t.leafOf {
		t.leafOf[i] = 0
	}

	var splits []Split
	for level := 0; level < t.params.MaxDepth; level++ {
		nLeaves := 1 << level
		best := make([]levelSplit, len(t.borders))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(t.workers)
		for f := range t.borders {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				best[f] = t.bestSplitForFeature(f, nLeaves, lambda)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return ObliviousTree{}, errors.Wrap(err, "split search interrupted")
		}

		chosen := levelSplit{feature: -1, score: math.Inf(-1)}
		for _, cand := range best {
			// strict comparison keeps the lowest feature index on ties
			if cand.feature >= 0 && cand.score > chosen.score {
				chosen = cand
			}
		}
		if chosen.feature < 0 {
			break
		}

		parentScore := t.leafScore(nLeaves, lambda)
		splits = append(splits, Split{
			Feature:     chosen.feature,
			BorderIndex: chosen.border,
			Threshold:   t.borders[chosen.feature][chosen.border],
			Gain:        math.Max(chosen.score-parentScore, 0),
		})

		bins := t.train.bins[chosen.feature]
		bit := uint32(1) << level
		for i := range t.leafOf {
			if int(bins[i]) > chosen.border {
				t.leafOf[i] |= bit
			}
		}
	}

	return t.leafValues(splits, lambda), nil
}

// bestSplitForFeature builds the (leaf, bin) gradient histogram of feature f
// and returns its best border. feature is -1 when f has no border.
func (t *Trainer) bestSplitForFeature(f, nLeaves int, lambda float64) levelSplit {
	nBorders := len(t.borders[f])
	if nBorders == 0 {
		return levelSplit{feature: -1}
	}
	nBins := nBorders + 1

	sumG := make([]float64, nLeaves*nBins)
	sumH := make([]float64, nLeaves*nBins)
	bins := t.train.bins[f]
	for i, b := range bins {
		idx := int(t.leafOf[i])*nBins + int(b)
		sumG[idx] += t.gradients[i]
		sumH[idx] += t.hessians[i]
	}

	totalG := make([]float64, nLeaves)
	totalH := make([]float64, nLeaves)
	for leaf := 0; leaf < nLeaves; leaf++ {
		for b := 0; b < nBins; b++ {
			totalG[leaf] += sumG[leaf*nBins+b]
			totalH[leaf] += sumH[leaf*nBins+b]
		}
	}

	leftG := make([]float64, nLeaves)
	leftH := make([]float64, nLeaves)
	best := levelSplit{feature: -1, score: math.Inf(-1)}
	for k := 0; k < nBorders; k++ {
		score := 0.0
		for leaf := 0; leaf < nLeaves; leaf++ {
			leftG[leaf] += sumG[leaf*nBins+k]
			leftH[leaf] += sumH[leaf*nBins+k]
			rightG := totalG[leaf] - leftG[leaf]
			rightH := totalH[leaf] - leftH[leaf]
			score += l2Score(leftG[leaf], leftH[leaf], lambda) + l2Score(rightG, rightH, lambda)
		}
		if score > best.score {
			best = levelSplit{feature: f, border: k, score: score}
		}
	}
	return best
}

// leafScore is the L2 score of the current partition before the next split.
func (t *Trainer) leafScore(nLeaves int, lambda float64) float64 {
	g := make([]float64, nLeaves)
	h := make([]float64, nLeaves)
	for i, leaf := range t.leafOf {
		g[leaf] += t.gradients[i]
		h[leaf] += t.hessians[i]
	}
	score := 0.0
	for leaf := range g {
		score += l2Score(g[leaf], h[leaf], lambda)
	}
	return score
}

// leafValues computes shrunk Newton steps -G/(H+lambda) for every leaf.
func (t *Trainer) leafValues(splits []Split, lambda float64) ObliviousTree {
	nLeaves := 1 << len(splits)
	g := make([]float64, nLeaves)
	h := make([]float64, nLeaves)
	for i, leaf := range t.leafOf {
		g[leaf] += t.gradients[i]
		h[leaf] += t.hessians[i]
	}

	values := make([]float64, nLeaves)
	for leaf := range values {
		if h[leaf]+lambda > 0 {
			values[leaf] = -t.params.LearningRate * g[leaf] / (h[leaf] + lambda)
		}
	}
	return ObliviousTree{Splits: splits, LeafValues: values, LeafWeights: h}
}

func l2Score(g, h, lambda float64) float64 {
	if h+lambda <= 0 {
		return 0
	}
	return g * g / (h + lambda)
}

// evaluate computes the eval metric on every labelled eval set.
func (t *Trainer) evaluate() map[string]float64 {
	results := make(map[string]float64, len(t.evals))
	for _, es := range t.evals {
		if es.label == nil {
			continue
		}
		results[es.name+":"+t.params.EvalMetric] = evalMetric(t.params.EvalMetric, es.label, es.raw)
	}
	return results
}

// evalMetric scores raw predictions. AUC is rank-based, so raw scores are
// used as is; Logloss is computed on probabilities.
func evalMetric(metric string, label, raw []float64) float64 {
	switch metric {
	case MetricAUC:
		auc, err := metrics.AUCScore(label, raw)
		if err != nil {
			return math.NaN()
		}
		return auc
	default:
		probs := make([]float64, len(raw))
		for i, r := range raw {
			probs[i] = errors.Sigmoid(r)
		}
		loss, err := metrics.LogLossScore(label, probs)
		if err != nil {
			return math.NaN()
		}
		return loss
	}
}

// buildModel assembles the model, truncated to the best iteration when
// UseBestModel is set and a monitored eval set exists.
func (t *Trainer) buildModel(monitored *evalSet) *Model {
	trees := t.trees
	model := &Model{
		InitScore:     t.initScore,
		NumFeatures:   len(t.borders),
		Params:        t.params,
		BestIteration: -1,
	}

	if monitored != nil && t.early.GetBestIteration() >= 0 {
		best := t.early.GetBestIteration()
		model.BestIteration = best
		model.BestScore = make(map[string]float64)
		for key, values := range t.history {
			if best < len(values) {
				model.BestScore[key] = values[best]
			}
		}
		if t.params.UseBestModel {
			trees = trees[:best+1]
		}
	}

	model.Trees = append([]ObliviousTree(nil), trees...)
	return model
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

