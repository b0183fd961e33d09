package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/psymetrics/irtsim/pkg/diag"
)

var (
	drawsFlag = &cli.StringFlag{
		Name:     "draws",
		Usage:    "Comma-separated draw CSV files, one per sampler chain",
		Required: true,
	}

	summarizeCmd = &cli.Command{
		Name:    "summarize",
		Aliases: []string{"sum"},
		Usage:   "Posterior mean, 95% interval, and split R-hat from sampler draw files",
		UsageText: `irtsim summarize --draws chain1.csv
   irtsim sum --draws chain1.csv,chain2.csv,chain3.csv`,
		Action: cmdSummarize,
		Flags: []cli.Flag{
			drawsFlag,
		},
	}
)

func cmdSummarize(_ context.Context, cmd *cli.Command) error {
	var chains []*diag.Chain
	for _, p := range strings.Split(cmd.String(drawsFlag.Name), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c, err := diag.ReadChainFile(p)
		if err != nil {
			return err
		}
		chains = append(chains, c)
	}
	if len(chains) == 0 {
		return errors.New("no draw files given")
	}

	sums, err := diag.Summarize(chains)
	if err != nil {
		return err
	}
	return encode(sums)
}
