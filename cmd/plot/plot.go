package plot

import (
	"context"
	"path/filepath"

	"github.com/SirZenith/kgebench/benchmark"
	"github.com/SirZenith/kgebench/cmd/internal/cmdconf"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/plot"
	"github.com/SirZenith/kgebench/results"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	var tablePath string

	return &cli.Command{
		Name:  "plot",
		Usage: "draw charts from an existing result table",
		Flags: []cli.Flag{
			cmdconf.ConfigFlag(),
			&cli.BoolFlag{
				Name:  "test",
				Usage: "use test result table and chart prefix",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "chart output directory, defaults to directory of result table",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "chart image format",
			},
			&cli.BoolFlag{
				Name:  "no-pdf",
				Usage: "skip PDF bundle",
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

			_, err = plot.Plot(records, plot.Options{
				OutputDir: common.GetStrOr(cmd.String("output"), filepath.Dir(tablePath)),
				Prefix:    options.ChartPrefix(),
				Format:    common.GetStrOr(cmd.String("format"), c.ImageFormat),
				Test:      options.Test,
				NoPDF:     cmd.Bool("no-pdf"),
			})

			return err
		},
	}
}
