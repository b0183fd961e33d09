package diag

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary is the posterior report for one parameter: mean, central 95%
// interval, and the split potential-scale-reduction diagnostic.
type Summary struct {
	Parameter string  `json:"parameter"`
	Mean      float64 `json:"mean"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Rhat      float64 `json:"rhat"`
}

// Summarize reports every parameter across one or more chains. All chains
// must share the same parameter header and carry at least four iterations
// (each chain is split in half for the R-hat computation).
func Summarize(chains []*Chain) ([]Summary, error) {
	if len(chains) == 0 {
		return nil, errors.New("no chains given")
	}
	params := chains[0].Parameters
	for n, c := range chains {
		if len(c.Parameters) != len(params) {
			return nil, fmt.Errorf("chain %d has %d parameters, chain 0 has %d", n, len(c.Parameters), len(params))
		}
		for i, p := range c.Parameters {
			if p != params[i] {
				return nil, fmt.Errorf("chain %d parameter %d is %q, chain 0 has %q", n, i, p, params[i])
			}
		}
		if len(c.Draws) < 4 {
			return nil, fmt.Errorf("chain %d has %d iterations, need at least 4", n, len(c.Draws))
		}
	}

	out := make([]Summary, len(params))
	for i, name := range params {
		pooled := make([]float64, 0)
		split := make([][]float64, 0, 2*len(chains))
		for _, c := range chains {
			col := c.column(i)
			pooled = append(pooled, col...)
			half := len(col) / 2
			// Odd iteration counts drop the middle draw so both halves match.
			split = append(split, col[:half], col[len(col)-half:])
		}

		sort.Float64s(pooled)
		out[i] = Summary{
			Parameter: name,
			Mean:      stat.Mean(pooled, nil),
			Lower:     stat.Quantile(0.025, stat.Empirical, pooled, nil),
			Upper:     stat.Quantile(0.975, stat.Empirical, pooled, nil),
			Rhat:      splitRhat(split),
		}
	}
	return out, nil
}

// splitRhat computes the classic potential-scale-reduction statistic over
// the half-chains: sqrt(((n-1)/n*W + B/n) / W) with W the mean within-chain
// variance and B the between-chain variance of the half-chain means.
func splitRhat(split [][]float64) float64 {
	n := len(split[0])
	if n < 2 {
		return math.NaN()
	}

	means := make([]float64, len(split))
	var w float64
	for c, half := range split {
		means[c] = stat.Mean(half, nil)
		w += stat.Variance(half, nil)
	}
	w /= float64(len(split))
	b := float64(n) * stat.Variance(means, nil)

	if w == 0 {
		if b == 0 {
			return 1
		}
		return math.Inf(1)
	}
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}
