package report

import (
	"context"
	"os"

	"github.com/SirZenith/kgebench/benchmark"
	"github.com/SirZenith/kgebench/cmd/internal/cmdconf"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/report"
	"github.com/SirZenith/kgebench/results"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	var tablePath string

	return &cli.Command{
		Name:  "report",
		Usage: "print mean metrics per dataset and model",
		Flags: []cli.Flag{
			cmdconf.ConfigFlag(),
			&cli.BoolFlag{
				Name:  "test",
				Usage: "use test result table",
			},
			&cli.StringSliceFlag{
				Name:  "metric",
				Usage: "metric to show, can be repeated",
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "locale used for number format and sorting, e.g. en-US",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "table",
				UsageText:   "[result table]",
				Destination: &tablePath,
				Max:         1,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			c, err := cmdconf.Load(cmd)
			if err != nil {
				return err
			}

			options := benchmark.Options{
				ResultDir: c.ResultDir,
				Test:      cmd.Bool("test"),
			}

			tablePath = common.GetStrOr(tablePath, options.ResultPath())
			records, err := results.LoadTSV(tablePath)
			if err != nil {
				return err
			}

			lang := common.GetStrOr(cmd.String("locale"), c.Locale)

			return report.Report(os.Stdout, records, cmd.StringSlice("metric"), lang)
		},
	}
}
