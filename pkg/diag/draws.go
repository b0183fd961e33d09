package diag

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Chain holds the posterior draws of one sampler chain: a header of
// parameter names and one row of values per saved iteration.
type Chain struct {
	Parameters []string
	Draws      [][]float64
}

// ReadChain parses a draw file: CSV with a parameter-name header and one
// numeric row per iteration. Lines starting with '#' are skipped, matching
// the comment blocks common sampler CSV output carries.
func ReadChain(r io.Reader) (*Chain, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading draw header: %w", err)
	}
	if len(header) == 0 {
		return nil, errors.New("draw file has no columns")
	}

	c := &Chain{Parameters: header}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading draw row %d: %w", row, err)
		}
		vals := make([]float64, len(rec))
		for i, s := range rec {
			vals[i], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("draw row %d column %s: %w", row, header[i], err)
			}
		}
		c.Draws = append(c.Draws, vals)
	}
	if len(c.Draws) == 0 {
		return nil, errors.New("draw file has no iterations")
	}
	return c, nil
}

// ReadChainFile reads a chain from a CSV file on disk.
func ReadChainFile(path string) (*Chain, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening draw file %s: %w", path, err)
	}
	defer file.Close()

	c, err := ReadChain(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// column extracts one parameter column from the chain.
func (c *Chain) column(i int) []float64 {
	out := make([]float64, len(c.Draws))
	for n, row := range c.Draws {
		out[n] = row[i]
	}
	return out
}
