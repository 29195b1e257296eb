// Standard attribute keys. Keys follow a dotted naming convention
// ("model.name", "data.samples") so runs can be filtered after the fact.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "CatBoostClassifier".
	ModelNameKey = "model.name"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase, one of the Phase* values below.
	PhaseKey = "ml.phase"

	// RunIDKey is the unique identifier of one experiment run.
	RunIDKey = "run.id"
)

// Data Shape
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	PathKey     = "data.path"

	// PositiveRateKey is the share of rows labelled 1.
	PositiveRateKey = "data.positive_rate"
)

// Cross-validation and training progress
const (
	FoldKey          = "cv.fold"
	NumFoldsKey      = "cv.num_folds"
	FoldStateKey     = "cv.fold_state"
	IterationKey     = "training.iteration"
	BestIterationKey = "training.best_iteration"
	TreesKey         = "training.trees"
)

// Performance Metrics
const (
	DurationMsKey      = "perf.duration_ms"
	DurationSecondsKey = "perf.duration_seconds"
	LossKey            = "metrics.loss"
	AUCKey             = "metrics.auc"
	ScoreKey           = "metrics.score"
	TrainScoreKey      = "metrics.train_score"
	ValidScoreKey      = "metrics.valid_score"
)

// Error Context
const (
	ErrorKey      = "error"
	StacktraceKey = "error.stacktrace"
	ErrorTypeKey  = "error.type"
)

// Hyperparameters and Configuration
const (
	LearningRateKey = "hyperparams.learning_rate"
	MaxDepthKey     = "hyperparams.max_depth"
	IterationsKey   = "hyperparams.iterations"
	RandomSeedKey   = "config.random_seed"
	ThreadCountKey  = "config.thread_count"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"
)
