package errors

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "tree building failed",
			err:     fmt.Errorf("test error"),
			wantMsg: "foldboost: Fit: tree building failed: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "empty ensemble",
			err:     nil,
			wantMsg: "foldboost: Predict: empty ensemble",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("WriteSubmission", 10, 9, 0)

	want := "foldboost: WriteSubmission: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 10 || dimErr.Got != 9 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("Classifier", "PredictProba")

	want := "foldboost: Classifier: this model is not fitted yet. Call Fit() before using PredictProba()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFitted *NotFittedError
	if !As(err, &notFitted) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewIOError(t *testing.T) {
	err := NewIOError("open", "/no/such/train.csv", os.ErrNotExist)

	if !strings.Contains(err.Error(), "/no/such/train.csv") {
		t.Errorf("Error() = %v, want path in message", err.Error())
	}
	if !Is(err, os.ErrNotExist) {
		t.Error("IOError should unwrap to the underlying error")
	}
	if Stacktrace(err) == "" {
		t.Error("Expected stack trace details")
	}
}

func TestNewInputShapeError(t *testing.T) {
	err := NewMissingFeatureError("projection", "var_7", 200, 199)
	if !strings.Contains(err.Error(), "var_7") {
		t.Errorf("Error() = %v, want feature name", err.Error())
	}

	err = NewInputShapeError("prediction", []int{10, 3}, []int{10, 2})
	want := "foldboost: input shape mismatch in prediction phase. Expected shape [10 3], got [10 2]"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNumericalInstabilityErrorMessage(t *testing.T) {
	values := []float64{math.NaN(), math.Inf(1), 1, 2, 3, 4, 5}
	err := NewNumericalInstabilityError("gradient", values, 12)

	msg := err.Error()
	if !strings.Contains(msg, "gradient") || !strings.Contains(msg, "iteration 12") {
		t.Errorf("unexpected message: %s", msg)
	}
	if !strings.Contains(msg, "...") {
		t.Errorf("long value lists should be truncated: %s", msg)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("ok", []float64{0, 1, -1}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("leaf_value", []float64{1, math.NaN()}, 3)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 1 || numErr.Iteration != 3 {
		t.Errorf("unexpected fields: %+v", numErr)
	}

	if err := CheckScalar("loss", math.Inf(-1), 1); err == nil {
		t.Error("expected error for -Inf")
	}
}

func TestSigmoid(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0.5},
		{1000, 1},
		{-1000, 0},
		{math.Log(3), 0.75},
	}
	for _, tt := range tests {
		got := Sigmoid(tt.x)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestWrapAndIs(t *testing.T) {
	base := New("base")
	wrapped := Wrapf(Wrap(base, "layer one"), "fold %d", 3)

	if !Is(wrapped, base) {
		t.Error("wrapped error should match base")
	}
	if !strings.Contains(wrapped.Error(), "fold 3: layer one: base") {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}
