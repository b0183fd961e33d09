package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestReadChain(t *testing.T) {
	in := `# sampler metadata
theta,beta
0.1,-0.5
# checkpoint comment
0.3,-0.4
0.2,-0.6
`
	c, err := ReadChain(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"theta", "beta"}, c.Parameters)
	require.Len(t, c.Draws, 3)
	assert.Equal(t, []float64{0.1, -0.5}, c.Draws[0])
	assert.Equal(t, []float64{0.2, -0.6}, c.Draws[2])
}

func TestReadChain_Errors(t *testing.T) {
	_, err := ReadChain(strings.NewReader("theta\n"))
	assert.Error(t, err)

	_, err = ReadChain(strings.NewReader("theta\nnot-a-number\n"))
	assert.Error(t, err)
}

func TestReadChainFile_Missing(t *testing.T) {
	_, err := ReadChainFile("testdata/does-not-exist.csv")
	assert.Error(t, err)
}

// syntheticChain draws n iterations for each parameter from Normal(mu, 1)
// using a seeded stream, so the test is deterministic.
func syntheticChain(seed uint64, n int, mus ...float64) *Chain {
	rng := rand.New(rand.NewSource(seed))
	c := &Chain{Parameters: make([]string, len(mus))}
	for i := range mus {
		c.Parameters[i] = "p" + string(rune('0'+i))
	}
	for it := 0; it < n; it++ {
		row := make([]float64, len(mus))
		for i, mu := range mus {
			row[i] = mu + rng.NormFloat64()
		}
		c.Draws = append(c.Draws, row)
	}
	return c
}

func TestSummarize_WellMixed(t *testing.T) {
	chains := []*Chain{
		syntheticChain(1, 2000, 0, 5),
		syntheticChain(2, 2000, 0, 5),
	}

	sums, err := Summarize(chains)
	require.NoError(t, err)
	require.Len(t, sums, 2)

	assert.Equal(t, "p0", sums[0].Parameter)
	assert.InDelta(t, 0, sums[0].Mean, 0.1)
	assert.InDelta(t, 5, sums[1].Mean, 0.1)

	for _, s := range sums {
		assert.Less(t, s.Lower, s.Mean)
		assert.Greater(t, s.Upper, s.Mean)
		// Central 95% interval of a unit normal.
		assert.InDelta(t, s.Mean-1.96, s.Lower, 0.25)
		assert.InDelta(t, s.Mean+1.96, s.Upper, 0.25)
		assert.InDelta(t, 1.0, s.Rhat, 0.05)
	}
}

func TestSummarize_Divergent(t *testing.T) {
	// Two chains exploring different regions: R-hat must flag it.
	chains := []*Chain{
		syntheticChain(1, 500, 0),
		syntheticChain(2, 500, 10),
	}
	sums, err := Summarize(chains)
	require.NoError(t, err)
	assert.Greater(t, sums[0].Rhat, 1.5)
}

func TestSummarize_ConstantDraws(t *testing.T) {
	c := &Chain{
		Parameters: []string{"fixed"},
		Draws:      [][]float64{{2}, {2}, {2}, {2}},
	}
	sums, err := Summarize([]*Chain{c})
	require.NoError(t, err)
	assert.Equal(t, 2.0, sums[0].Mean)
	assert.Equal(t, 1.0, sums[0].Rhat)
}

func TestSummarize_Errors(t *testing.T) {
	_, err := Summarize(nil)
	assert.Error(t, err)

	short := &Chain{Parameters: []string{"a"}, Draws: [][]float64{{1}, {2}}}
	_, err = Summarize([]*Chain{short})
	assert.Error(t, err)

	a := syntheticChain(1, 10, 0)
	b := syntheticChain(1, 10, 0, 1)
	_, err = Summarize([]*Chain{a, b})
	assert.Error(t, err)

	renamed := syntheticChain(1, 10, 0)
	renamed.Parameters[0] = "other"
	_, err = Summarize([]*Chain{a, renamed})
	assert.Error(t, err)
}
