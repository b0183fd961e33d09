package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/psymetrics/irtsim/pkg/irt"
)

var (
	locFlag = &cli.FloatFlag{
		Name:  "loc",
		Usage: "Person effective location (ability plus any regression adjustment)",
	}

	betaFlag = &cli.FloatFlag{
		Name:  "beta",
		Usage: "Item difficulty",
	}

	alphaFlag = &cli.FloatFlag{
		Name:  "alpha",
		Usage: "Item discrimination (1 for the plain rating scale model)",
		Value: 1,
	}

	stepsFlag = &cli.StringFlag{
		Name:     "steps",
		Usage:    "Comma-separated free step difficulties; the constrained last step is derived",
		Required: true,
	}

	probsCmd = &cli.Command{
		Name:  "probs",
		Usage: "Print the response category probability vector for one person-item pair",
		UsageText: `irtsim probs --steps "-1,0"                        # centered person, m=3
   irtsim probs --loc 1.2 --beta 0.4 --alpha 1.3 --steps "-0.5,0.1"`,
		Action: cmdProbs,
		Flags: []cli.Flag{
			locFlag,
			betaFlag,
			alphaFlag,
			stepsFlag,
		},
	}
)

type probsResult struct {
	Location float64   `json:"location"`
	Beta     float64   `json:"beta"`
	Alpha    float64   `json:"alpha"`
	Steps    []float64 `json:"steps"`
	Probs    []float64 `json:"probs"`
}

func cmdProbs(_ context.Context, cmd *cli.Command) error {
	free, err := parseFloats(cmd.String(stepsFlag.Name))
	if err != nil {
		return fmt.Errorf("parsing steps: %w", err)
	}
	steps := irt.CompleteSteps(free)

	loc := cmd.Float(locFlag.Name)
	beta := cmd.Float(betaFlag.Name)
	alpha := cmd.Float(alphaFlag.Name)

	p, err := irt.CategoryProbs(loc, beta, alpha, steps)
	if err != nil {
		return err
	}

	return encode(probsResult{
		Location: loc,
		Beta:     beta,
		Alpha:    alpha,
		Steps:    steps,
		Probs:    p,
	})
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
