package irt

import (
	"fmt"
	"math"
)

// CategoryProbs computes the probability of each ordered response category
// 0..m for one observation under the generalized rating scale model.
//
// loc is the person's effective location (ability plus any latent regression
// adjustment), beta the item difficulty, alpha the item discrimination, and
// steps the m shared step difficulties, last entry already derived so the
// full set sums to zero (see CompleteSteps).
//
// Category k accumulates the terms alpha*(loc-beta-steps[s]) for s <= k;
// the result is the softmax of those cumulative sums, with category 0 the
// empty-sum reference. The sums are shifted by their max before
// exponentiating so extreme locations cannot overflow; the shift cancels in
// the normalization. Category 0 flows through the same cumulative-sum path
// as every other category.
//
// An empty steps slice is the degenerate single-category item: the result
// is always [1].
func CategoryProbs(loc, beta, alpha float64, steps []float64) ([]float64, error) {
	if err := checkInputs(loc, beta, alpha, steps); err != nil {
		return nil, err
	}

	c := cumulative(loc, beta, alpha, steps)

	shift := c[0]
	for _, v := range c[1:] {
		if v > shift {
			shift = v
		}
	}

	p := make([]float64, len(c))
	var sum float64
	for k, v := range c {
		p[k] = math.Exp(v - shift)
		sum += p[k]
	}
	for k := range p {
		p[k] /= sum
	}
	return p, nil
}

// RatingScaleProbs is the plain rating scale model: the generalized model
// with every discrimination fixed at 1. It delegates to CategoryProbs so the
// two variants cannot drift apart.
func RatingScaleProbs(loc, beta float64, steps []float64) ([]float64, error) {
	return CategoryProbs(loc, beta, 1, steps)
}

// LogCategoryProb returns ln P(Y = y) for response category y in 0..m,
// computed entirely in the log domain: C_y - logSumExp(C). Useful as a
// pointwise log-likelihood term without round-tripping through the
// probability vector.
func LogCategoryProb(loc, beta, alpha float64, steps []float64, y int) (float64, error) {
	if err := checkInputs(loc, beta, alpha, steps); err != nil {
		return 0, err
	}
	if y < 0 || y > len(steps) {
		return 0, fmt.Errorf("%w: category %d with %d steps", ErrBadResponse, y, len(steps))
	}
	c := cumulative(loc, beta, alpha, steps)
	return c[y] - logSumExp(c), nil
}

// cumulative builds the cumulative sums C_0..C_m over the unsummed term
// array: C_0 = 0, C_k = C_{k-1} + alpha*(loc - beta - steps[k-1]).
func cumulative(loc, beta, alpha float64, steps []float64) []float64 {
	c := make([]float64, len(steps)+1)
	for k, kappa := range steps {
		c[k+1] = c[k] + alpha*(loc-beta-kappa)
	}
	return c
}

func logSumExp(x []float64) float64 {
	shift := x[0]
	for _, v := range x[1:] {
		if v > shift {
			shift = v
		}
	}
	var sum float64
	for _, v := range x {
		sum += math.Exp(v - shift)
	}
	return shift + math.Log(sum)
}

func checkInputs(loc, beta, alpha float64, steps []float64) error {
	if !finite(loc) {
		return fmt.Errorf("%w: location %v", ErrInvalidParameter, loc)
	}
	if !finite(beta) {
		return fmt.Errorf("%w: difficulty %v", ErrInvalidParameter, beta)
	}
	if !finite(alpha) || alpha <= 0 {
		return fmt.Errorf("%w: discrimination %v, must be a positive finite value", ErrInvalidParameter, alpha)
	}
	for i, k := range steps {
		if !finite(k) {
			return fmt.Errorf("%w: step %d is %v", ErrInvalidParameter, i, k)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
