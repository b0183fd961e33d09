package irt

import "fmt"

// CompleteDifficulties derives the full item difficulty vector from the
// I-1 free values: the returned slice appends the negated sum of the free
// values, so the full set sums to zero. The input is not modified.
func CompleteDifficulties(free []float64) []float64 {
	return completeSumToZero(free)
}

// CompleteSteps derives the full step difficulty vector from the m-1 free
// values, same sum-to-zero rule as CompleteDifficulties.
func CompleteSteps(free []float64) []float64 {
	return completeSumToZero(free)
}

func completeSumToZero(free []float64) []float64 {
	full := make([]float64, len(free)+1)
	var sum float64
	for i, v := range free {
		full[i] = v
		sum += v
	}
	full[len(free)] = -sum
	return full
}

// Adjustment computes the latent regression adjustment w'λ for one person.
// Both slices empty (or nil) means no covariates and a zero adjustment.
func Adjustment(w, lambda []float64) (float64, error) {
	if len(w) != len(lambda) {
		return 0, fmt.Errorf("%w: %d covariates with %d coefficients", ErrInvalidParameter, len(w), len(lambda))
	}
	var adj float64
	for i, v := range w {
		adj += v * lambda[i]
	}
	return adj, nil
}
