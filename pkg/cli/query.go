package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/psymetrics/irtsim/pkg/data"
	"github.com/psymetrics/irtsim/pkg/irt"
)

var (
	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List stored-study query operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "List stored studies",
				Aliases: []string{"l"},
				Action:  cmdQueryStudies,
			},
			{
				Name:    "detail",
				Usage:   "Get one study's metadata and generating truth",
				Aliases: []string{"d"},
				Action:  cmdQueryStudy,
				Flags: []cli.Flag{
					studyIDFlag,
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete a stored study and its responses",
				Action: cmdDeleteStudy,
				Flags: []cli.Flag{
					studyIDFlag,
				},
			},
		},
	}
)

type studyDetail struct {
	Info  *data.StudyInfo `json:"info"`
	Truth *irt.Model      `json:"truth"`
}

func cmdQueryStudies(_ context.Context, cmd *cli.Command) error {
	list, err := data.ListStudies(getConfig(cmd).DB)
	if err != nil {
		return err
	}
	return encode(list)
}

func cmdQueryStudy(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	id := int64(cmd.Int(studyIDFlag.Name))

	info, err := data.GetStudyInfo(cfg.DB, id)
	if err != nil {
		return err
	}
	st, err := data.GetStudy(cfg.DB, id)
	if err != nil {
		return err
	}
	return encode(studyDetail{Info: info, Truth: st.Model})
}

func cmdDeleteStudy(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	id := int64(cmd.Int(studyIDFlag.Name))

	if err := data.DeleteStudy(cfg.DB, id); err != nil {
		return err
	}
	return encode(map[string]any{"deleted": id})
}
