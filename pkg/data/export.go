package data

import (
	"database/sql"
	"fmt"
)

// StanData is the input block the external probabilistic engine consumes:
// counts, 1-based item/person indices per observation row, the observed
// category in 0..m, and the person covariate matrix with its intercept
// column first. Only the indices are 1-based; response categories keep
// their natural 0..m numbering, matching the engine contract.
type StanData struct {
	I  int         `json:"I"`
	J  int         `json:"J"`
	N  int         `json:"N"`
	II []int       `json:"ii"`
	JJ []int       `json:"jj"`
	Y  []int       `json:"y"`
	K  int         `json:"K"`
	W  [][]float64 `json:"W"`
}

// ExportStanData assembles the sampler input for one stored study. Studies
// without covariates export the conventional intercept-only design matrix
// (K=1, every row [1]).
func ExportStanData(db *sql.DB, studyID int64) (*StanData, error) {
	st, err := GetStudy(db, studyID)
	if err != nil {
		return nil, err
	}

	w := st.Covariates
	if w == nil {
		w = make([][]float64, len(st.Thetas))
		for j := range w {
			w[j] = []float64{1}
		}
	}
	if len(w) == 0 {
		return nil, fmt.Errorf("study %d has no persons", studyID)
	}

	d := &StanData{
		I:  st.Model.NumItems(),
		J:  len(st.Thetas),
		N:  len(st.Obs),
		II: make([]int, len(st.Obs)),
		JJ: make([]int, len(st.Obs)),
		Y:  make([]int, len(st.Obs)),
		K:  len(w[0]),
		W:  w,
	}
	for n, o := range st.Obs {
		d.II[n] = o.Item + 1
		d.JJ[n] = o.Person + 1
		d.Y[n] = o.Y
	}
	return d, nil
}
