package learning

import "strings"

import "github.com/pkg/errors"

// Mode selects when pair updates reach the weights
type Mode int

const (
	// Immediate adds every pair update to the weights right away
	Immediate Mode = iota
	// PerCoordinate sums the updates of a sentence and applies them with a per-feature rate
	PerCoordinate
	// Batch sums the updates of a whole epoch and applies them in EndEpoch
	Batch
)

// Coordinate is the per-coordinate learning rate rule
type Coordinate int

const (
	// Simple divides the update by the number of earlier updates of the feature
	Simple Coordinate = iota
	// Adagrad scales the update by the sum of squared earlier updates of the feature
	Adagrad
)

// Regularization is the l1 regularization applied once per sentence
type Regularization int

const (
	L1None Regularization = iota
	// L1Naive decays the weight and subtracts the strength
	L1Naive
	// L1Clip moves the weight towards zero by the strength without crossing it
	L1Clip
	// L1Cumulative applies the cumulative penalty of Tsuruoka et al. (2009)
	L1Cumulative
)

// ErrParameter is returned for invalid hyper-parameters
var ErrParameter = errors.New("invalid hyper-parameter")

// ParseCoordinate parses the per-coordinate rule "no", "simple" or "adagrad".
// ok is false for "no".
func ParseCoordinate(s string) (c Coordinate, ok bool, err error) {
	switch strings.ToLower(s) {
	case "", "no", "none":
		return Simple, false, nil
	case "simple":
		return Simple, true, nil
	case "adagrad":
		return Adagrad, true, nil
	}
	return Simple, false, errors.Wrapf(ErrParameter, "pclr %q", s)
}

// ParseRegularization parses "none", "naive", "clip" or "cumul"
func ParseRegularization(s string) (Regularization, error) {
	switch strings.ToLower(s) {
	case "", "none", "no":
		return L1None, nil
	case "naive":
		return L1Naive, nil
	case "clip":
		return L1Clip, nil
	case "cumul", "cumulative":
		return L1Cumulative, nil
	}
	return L1None, errors.Wrapf(ErrParameter, "l1_reg %q", s)
}

type HyperParameters struct {
	Eta    float64 // learning rate
	Gamma  float64 // SVM regularization, 0 for the perceptron
	Margin float64 // correctly ranked pairs closer than this are updated too

	Mode       Mode
	Coordinate Coordinate // rule used in PerCoordinate mode

	L1         Regularization
	L1Strength float64

	Repeat  int  // passes over the pairs of one sentence, at least 1
	Rescale bool // scale pair features and the weights to unit length

	Rates *Rates // per-feature learning rate multipliers, nil means 1 everywhere
}

// Validate checks the hyper-parameters for consistency
func (h *HyperParameters) Validate() error {
	if h.Eta <= 0 {
		return errors.Wrapf(ErrParameter, "learning rate %v", h.Eta)
	}
	if h.Gamma < 0 || h.Margin < 0 || h.L1Strength < 0 {
		return errors.Wrap(ErrParameter, "gamma, margin and l1 strength must be >= 0")
	}
	if h.L1 != L1None && h.L1Strength == 0 {
		return errors.Wrap(ErrParameter, "l1 regularization without strength")
	}
	if h.Repeat < 0 {
		return errors.Wrapf(ErrParameter, "repeat %d", h.Repeat)
	}
	return nil
}

// FasterPerceptron reports whether only misranked pairs need to be sampled:
// without margin and SVM term correctly ranked pairs never cause an update.
func (h *HyperParameters) FasterPerceptron() bool {
	return h.Gamma == 0 && h.Margin == 0
}
