package irt

import (
	"fmt"
	"math"
)

// sumTol is the tolerance for the sum-to-zero identifiability checks.
const sumTol = 1e-6

// Model is a complete parameter set for the rating scale model or its
// generalized variant. All slices are read-only to the model's methods; a
// Model carries no state between likelihood evaluations.
type Model struct {
	// Difficulties holds one beta per item. The set must sum to zero
	// (identifiability); build it from free values with CompleteDifficulties.
	Difficulties []float64 `json:"difficulties" yaml:"difficulties"`

	// Steps holds the m shared step difficulties, also summing to zero.
	// Items have m+1 response categories 0..m.
	Steps []float64 `json:"steps" yaml:"steps"`

	// Discriminations holds one positive alpha per item in the generalized
	// model. Nil means the plain rating scale model (all alphas 1).
	Discriminations []float64 `json:"discriminations,omitempty" yaml:"discriminations,omitempty"`

	// Coefficients holds the latent regression coefficients lambda. Nil
	// means no covariate adjustment.
	Coefficients []float64 `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
}

// Observation is one long-format response row: person answered item with
// category y in 0..m. Indices are 0-based.
type Observation struct {
	Person int `json:"person"`
	Item   int `json:"item"`
	Y      int `json:"y"`
}

// Validate checks the model invariants: at least one item, finite values,
// sum-to-zero difficulties and steps, positive discriminations matching the
// item count.
func (m *Model) Validate() error {
	if len(m.Difficulties) == 0 {
		return fmt.Errorf("%w: no item difficulties", ErrInvalidParameter)
	}
	var sum float64
	for i, b := range m.Difficulties {
		if !finite(b) {
			return fmt.Errorf("%w: difficulty %d is %v", ErrInvalidParameter, i, b)
		}
		sum += b
	}
	if math.Abs(sum) > sumTol {
		return fmt.Errorf("%w: item difficulties sum to %v, want 0", ErrInvalidParameter, sum)
	}

	sum = 0
	for i, k := range m.Steps {
		if !finite(k) {
			return fmt.Errorf("%w: step %d is %v", ErrInvalidParameter, i, k)
		}
		sum += k
	}
	if len(m.Steps) > 0 && math.Abs(sum) > sumTol {
		return fmt.Errorf("%w: steps sum to %v, want 0", ErrInvalidParameter, sum)
	}

	if m.Discriminations != nil {
		if len(m.Discriminations) != len(m.Difficulties) {
			return fmt.Errorf("%w: %d discriminations for %d items",
				ErrInvalidParameter, len(m.Discriminations), len(m.Difficulties))
		}
		for i, a := range m.Discriminations {
			if !finite(a) || a <= 0 {
				return fmt.Errorf("%w: discrimination %d is %v", ErrInvalidParameter, i, a)
			}
		}
	}

	for i, l := range m.Coefficients {
		if !finite(l) {
			return fmt.Errorf("%w: coefficient %d is %v", ErrInvalidParameter, i, l)
		}
	}
	return nil
}

// NumItems returns the item count I.
func (m *Model) NumItems() int { return len(m.Difficulties) }

// NumCategories returns the response category count m+1.
func (m *Model) NumCategories() int { return len(m.Steps) + 1 }

// Generalized reports whether the model carries free discriminations.
func (m *Model) Generalized() bool { return m.Discriminations != nil }

func (m *Model) discrimination(item int) float64 {
	if m.Discriminations == nil {
		return 1
	}
	return m.Discriminations[item]
}

func (m *Model) checkItem(item int) error {
	if item < 0 || item >= len(m.Difficulties) {
		return fmt.Errorf("%w: item %d of %d", ErrInvalidParameter, item, len(m.Difficulties))
	}
	return nil
}

// Probs returns the category probability vector for one person-item pair.
// loc is the person's effective location, ability plus any regression
// adjustment already applied by the caller.
func (m *Model) Probs(loc float64, item int) ([]float64, error) {
	if err := m.checkItem(item); err != nil {
		return nil, err
	}
	return CategoryProbs(loc, m.Difficulties[item], m.discrimination(item), m.Steps)
}

// LogLikelihood returns the pointwise log-likelihood ln P(Y = y) for one
// observed response.
func (m *Model) LogLikelihood(loc float64, item, y int) (float64, error) {
	if err := m.checkItem(item); err != nil {
		return 0, err
	}
	return LogCategoryProb(loc, m.Difficulties[item], m.discrimination(item), m.Steps, y)
}

// TotalLogLikelihood sums the pointwise log-likelihood over a long-format
// dataset. thetas holds one ability per person; covariates (one row per
// person, same length as Coefficients) may be nil when the model has no
// regression part. The effective location for person j is
// thetas[j] + covariates[j]'Coefficients.
func (m *Model) TotalLogLikelihood(thetas []float64, covariates [][]float64, obs []Observation) (float64, error) {
	if m.Coefficients != nil && covariates == nil {
		return 0, fmt.Errorf("%w: model has %d coefficients but no covariates given",
			ErrInvalidParameter, len(m.Coefficients))
	}

	var total float64
	for n, o := range obs {
		if o.Person < 0 || o.Person >= len(thetas) {
			return 0, fmt.Errorf("%w: row %d references person %d of %d",
				ErrInvalidParameter, n, o.Person, len(thetas))
		}
		loc := thetas[o.Person]
		if m.Coefficients != nil {
			adj, err := Adjustment(covariates[o.Person], m.Coefficients)
			if err != nil {
				return 0, fmt.Errorf("row %d: %w", n, err)
			}
			loc += adj
		}
		ll, err := m.LogLikelihood(loc, o.Item, o.Y)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", n, err)
		}
		total += ll
	}
	return total, nil
}
