package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/psymetrics/irtsim/pkg/irt"
)

func testScenario() Scenario {
	return Scenario{
		Name:       "unit",
		Items:      5,
		Persons:    40,
		Categories: 4,
		Sigma:      1,
		Seed:       42,
	}
}

func TestScenarioValidate(t *testing.T) {
	s := testScenario()
	require.NoError(t, s.Validate())

	cases := []struct {
		name string
		mod  func(s *Scenario)
	}{
		{"too few items", func(s *Scenario) { s.Items = 1 }},
		{"no persons", func(s *Scenario) { s.Persons = 0 }},
		{"one category", func(s *Scenario) { s.Categories = 1 }},
		{"zero sigma", func(s *Scenario) { s.Sigma = 0 }},
		{"negative covariates", func(s *Scenario) { s.Covariates = -1 }},
		{"lambda length", func(s *Scenario) { s.Covariates = 2; s.Lambda = []float64{0.1} }},
		{"covariates without lambda", func(s *Scenario) { s.Covariates = 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testScenario()
			tc.mod(&s)
			assert.ErrorIs(t, s.Validate(), irt.ErrInvalidParameter)
		})
	}
}

func TestGenerate(t *testing.T) {
	s := testScenario()
	study, err := Generate(context.Background(), s)
	require.NoError(t, err)

	assert.Len(t, study.Thetas, s.Persons)
	assert.Len(t, study.Obs, s.Items*s.Persons)
	assert.Nil(t, study.Covariates)
	require.NoError(t, study.Model.Validate())
	assert.Equal(t, s.Items, study.Model.NumItems())
	assert.Equal(t, s.Categories, study.Model.NumCategories())

	for _, o := range study.Obs {
		assert.GreaterOrEqual(t, o.Y, 0)
		assert.Less(t, o.Y, s.Categories)
		assert.GreaterOrEqual(t, o.Person, 0)
		assert.Less(t, o.Person, s.Persons)
		assert.Less(t, o.Item, s.Items)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	s := testScenario()
	a, err := Generate(context.Background(), s)
	require.NoError(t, err)
	b, err := Generate(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, a.Model, b.Model)
	assert.Equal(t, a.Thetas, b.Thetas)
	assert.Equal(t, a.Obs, b.Obs)

	s.Seed = 43
	c, err := Generate(context.Background(), s)
	require.NoError(t, err)
	assert.NotEqual(t, a.Obs, c.Obs)
}

func TestGenerate_Generalized(t *testing.T) {
	s := testScenario()
	s.Generalized = true
	study, err := Generate(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, study.Model.Discriminations, s.Items)
	for i, a := range study.Model.Discriminations {
		assert.Greater(t, a, 0.0, "item %d", i)
	}
}

func TestGenerate_WithCovariates(t *testing.T) {
	s := testScenario()
	s.Covariates = 2
	s.Lambda = []float64{0.5, -0.3, 0.2}

	study, err := Generate(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, study.Covariates, s.Persons)
	for _, row := range study.Covariates {
		require.Len(t, row, 3)
		assert.Equal(t, 1.0, row[0]) // intercept column
	}
	assert.Equal(t, s.Lambda, study.Model.Coefficients)

	// The generated data must be scoreable under its own truth.
	ll, err := study.Model.TotalLogLikelihood(study.Thetas, study.Covariates, study.Obs)
	require.NoError(t, err)
	assert.Less(t, ll, 0.0)
	assert.False(t, math.IsInf(ll, 0))
}

func TestGenerate_SumToZeroTruth(t *testing.T) {
	study, err := Generate(context.Background(), testScenario())
	require.NoError(t, err)

	var sum float64
	for _, b := range study.Model.Difficulties {
		sum += b
	}
	assert.InDelta(t, 0, sum, 1e-9)

	sum = 0
	for _, k := range study.Model.Steps {
		sum += k
	}
	assert.InDelta(t, 0, sum, 1e-9)
}

func TestSampleCategory_Bounds(t *testing.T) {
	// Degenerate single-category vector always yields category 0.
	p := []float64{1}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, sampleCategory(rng, p))
	}
}
