package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/psymetrics/irtsim/pkg/data"
)

var (
	exportOutFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Output file path (default: stdout)",
	}

	exportCmd = &cli.Command{
		Name:  "export",
		Usage: "Write the external sampler's input data block for a stored study",
		UsageText: `irtsim export --study 1                            # JSON to stdout
   irtsim export --study 1 --out study1.json`,
		Action: cmdExport,
		Flags: []cli.Flag{
			studyIDFlag,
			exportOutFlag,
		},
	}
)

func cmdExport(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	id := int64(cmd.Int(studyIDFlag.Name))

	d, err := data.ExportStanData(cfg.DB, id)
	if err != nil {
		return err
	}

	out := cmd.String(exportOutFlag.Name)
	if out == "" {
		return encode(d)
	}

	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sampler data: %w", err)
	}
	if err := os.WriteFile(out, b, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	slog.Debug("sampler data written", "study", id, "path", out, "rows", d.N)
	return nil
}
