package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/psymetrics/irtsim/pkg/irt"
	"github.com/psymetrics/irtsim/pkg/sim"
)

const (
	insertStudySQL = `INSERT INTO study (
			name, created, items, persons, categories, generalized, coefficients, scenario
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertItemSQL = `INSERT INTO item (study_id, idx, difficulty, discrimination)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (study_id, idx) DO NOTHING
	`

	insertStepSQL = `INSERT INTO step (study_id, idx, value)
		VALUES (?, ?, ?)
		ON CONFLICT (study_id, idx) DO NOTHING
	`

	insertPersonSQL = `INSERT INTO person (study_id, idx, theta, covariates)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (study_id, idx) DO NOTHING
	`

	insertResponseSQL = `INSERT INTO response (study_id, person, item, y)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (study_id, person, item) DO NOTHING
	`

	selectStudySQL = `SELECT id, name, created, items, persons, categories, generalized, coefficients, scenario
		FROM study WHERE id = ?
	`

	listStudiesSQL = `SELECT id, name, created, items, persons, categories, generalized
		FROM study ORDER BY id
	`

	selectItemsSQL     = `SELECT difficulty, discrimination FROM item WHERE study_id = ? ORDER BY idx`
	selectStepsSQL     = `SELECT value FROM step WHERE study_id = ? ORDER BY idx`
	selectPersonsSQL   = `SELECT theta, covariates FROM person WHERE study_id = ? ORDER BY idx`
	selectResponsesSQL = `SELECT person, item, y FROM response WHERE study_id = ? ORDER BY person, item`
)

// ErrStudyNotFound indicates the study id has no stored row.
var ErrStudyNotFound = errors.New("study not found")

// StudyInfo is the stored metadata for one simulated study.
type StudyInfo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Items       int       `json:"items"`
	Persons     int       `json:"persons"`
	Categories  int       `json:"categories"`
	Generalized bool      `json:"generalized"`
}

// SaveStudy persists a simulated study (truth, persons, and responses) under
// the given name. Returns the new study id.
func SaveStudy(db *sql.DB, name string, st *sim.Study) (int64, error) {
	if name == "" {
		return 0, errors.New("study name required")
	}
	if st == nil || st.Model == nil {
		return 0, errors.New("study required")
	}

	scenario, err := yaml.Marshal(st.Scenario)
	if err != nil {
		return 0, fmt.Errorf("marshaling scenario: %w", err)
	}

	var coefficients any
	if st.Model.Coefficients != nil {
		b, err := json.Marshal(st.Model.Coefficients)
		if err != nil {
			return 0, fmt.Errorf("marshaling coefficients: %w", err)
		}
		coefficients = string(b)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(insertStudySQL,
		name,
		time.Now().UTC().Format(time.RFC3339),
		st.Model.NumItems(),
		len(st.Thetas),
		st.Model.NumCategories(),
		st.Model.Generalized(),
		coefficients,
		string(scenario),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting study %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading study id: %w", err)
	}

	for i, b := range st.Model.Difficulties {
		var alpha any
		if st.Model.Discriminations != nil {
			alpha = st.Model.Discriminations[i]
		}
		if _, err := tx.Exec(insertItemSQL, id, i, b, alpha); err != nil {
			return 0, fmt.Errorf("inserting item %d: %w", i, err)
		}
	}

	for i, k := range st.Model.Steps {
		if _, err := tx.Exec(insertStepSQL, id, i, k); err != nil {
			return 0, fmt.Errorf("inserting step %d: %w", i, err)
		}
	}

	for j, theta := range st.Thetas {
		var cov any
		if st.Covariates != nil {
			b, err := json.Marshal(st.Covariates[j])
			if err != nil {
				return 0, fmt.Errorf("marshaling covariates for person %d: %w", j, err)
			}
			cov = string(b)
		}
		if _, err := tx.Exec(insertPersonSQL, id, j, theta, cov); err != nil {
			return 0, fmt.Errorf("inserting person %d: %w", j, err)
		}
	}

	stmt, err := tx.Prepare(insertResponseSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing response insert: %w", err)
	}
	defer stmt.Close()
	for _, o := range st.Obs {
		if _, err := stmt.Exec(id, o.Person, o.Item, o.Y); err != nil {
			return 0, fmt.Errorf("inserting response (%d,%d): %w", o.Person, o.Item, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing study %s: %w", name, err)
	}
	return id, nil
}

// GetStudyInfo returns the stored metadata for one study.
func GetStudyInfo(db *sql.DB, id int64) (*StudyInfo, error) {
	info, _, _, err := scanStudyRow(db, id)
	return info, err
}

// ListStudies returns metadata for all stored studies ordered by id.
func ListStudies(db *sql.DB) ([]*StudyInfo, error) {
	rows, err := db.Query(listStudiesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing studies: %w", err)
	}
	defer rows.Close()

	list := make([]*StudyInfo, 0)
	for rows.Next() {
		var s StudyInfo
		var created string
		if err := rows.Scan(&s.ID, &s.Name, &created, &s.Items, &s.Persons, &s.Categories, &s.Generalized); err != nil {
			return nil, fmt.Errorf("scanning study row: %w", err)
		}
		s.Created, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parsing created time %q: %w", created, err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// GetStudy reconstructs the full simulated study (truth, persons, responses)
// for the given id.
func GetStudy(db *sql.DB, id int64) (*sim.Study, error) {
	_, scenario, coefficients, err := scanStudyRow(db, id)
	if err != nil {
		return nil, err
	}

	model := &irt.Model{Coefficients: coefficients}

	rows, err := db.Query(selectItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("reading items for study %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var b float64
		var alpha sql.NullFloat64
		if err := rows.Scan(&b, &alpha); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		model.Difficulties = append(model.Difficulties, b)
		if alpha.Valid {
			model.Discriminations = append(model.Discriminations, alpha.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	steps, err := scanFloats(db, selectStepsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("reading steps for study %d: %w", id, err)
	}
	model.Steps = steps

	st := &sim.Study{Scenario: *scenario, Model: model}

	prows, err := db.Query(selectPersonsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("reading persons for study %d: %w", id, err)
	}
	defer prows.Close()
	for prows.Next() {
		var theta float64
		var cov sql.NullString
		if err := prows.Scan(&theta, &cov); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		st.Thetas = append(st.Thetas, theta)
		if cov.Valid {
			var row []float64
			if err := json.Unmarshal([]byte(cov.String), &row); err != nil {
				return nil, fmt.Errorf("unmarshaling covariates: %w", err)
			}
			st.Covariates = append(st.Covariates, row)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	st.Obs, err = GetResponses(db, id)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// GetResponses returns the long-format response rows for one study ordered
// by person then item.
func GetResponses(db *sql.DB, id int64) ([]irt.Observation, error) {
	rows, err := db.Query(selectResponsesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("reading responses for study %d: %w", id, err)
	}
	defer rows.Close()

	obs := make([]irt.Observation, 0)
	for rows.Next() {
		var o irt.Observation
		if err := rows.Scan(&o.Person, &o.Item, &o.Y); err != nil {
			return nil, fmt.Errorf("scanning response: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// DeleteStudy removes a study and all of its dependent rows.
func DeleteStudy(db *sql.DB, id int64) error {
	res, err := db.Exec("DELETE FROM study WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting study %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrStudyNotFound, id)
	}
	return nil
}

func scanStudyRow(db *sql.DB, id int64) (*StudyInfo, *sim.Scenario, []float64, error) {
	var info StudyInfo
	var created, scenarioText string
	var coefficients sql.NullString

	err := db.QueryRow(selectStudySQL, id).Scan(
		&info.ID, &info.Name, &created,
		&info.Items, &info.Persons, &info.Categories,
		&info.Generalized, &coefficients, &scenarioText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil, fmt.Errorf("%w: id %d", ErrStudyNotFound, id)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading study %d: %w", id, err)
	}

	info.Created, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing created time %q: %w", created, err)
	}

	var scenario sim.Scenario
	if err := yaml.Unmarshal([]byte(scenarioText), &scenario); err != nil {
		return nil, nil, nil, fmt.Errorf("unmarshaling scenario: %w", err)
	}

	var lambda []float64
	if coefficients.Valid {
		if err := json.Unmarshal([]byte(coefficients.String), &lambda); err != nil {
			return nil, nil, nil, fmt.Errorf("unmarshaling coefficients: %w", err)
		}
	}
	return &info, &scenario, lambda, nil
}

func scanFloats(db *sql.DB, query string, id int64) ([]float64, error) {
	rows, err := db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
