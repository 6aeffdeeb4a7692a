package benchmark

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/SirZenith/kgebench/benchmark"
	"github.com/SirZenith/kgebench/cmd/internal/cmdconf"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/settings"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	flags := []cli.Flag{
		cmdconf.ConfigFlag(),
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "evaluation batch size",
			Value: evaluation.DefaultBatchSize,
		},
		&cli.IntFlag{
			Name:  "trials",
			Usage: "number of remixed trials per dataset and model setting",
			Value: benchmark.DefaultTrials,
		},
		&cli.BoolFlag{
			Name:  "rebuild",
			Usage: "build result table even if one already exists",
		},
		&cli.BoolFlag{
			Name:  "test",
			Usage: "quick run on the smallest datasets, results go to separate files",
		},
		&cli.StringSliceFlag{
			Name:  "dataset",
			Usage: "benchmark only given datasets, can be repeated",
		},
		&cli.StringFlag{
			Name:  "settings",
			Usage: "Lua script returning model settings",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "directory for result table and charts",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "chart image format, one of " + strings.Join(common.AllImageFormats, ", "),
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "path to result database, use empty string to disable",
		},
	}
	flags = append(flags, cmdconf.DownloadFlags()...)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "run baseline models on benchmark datasets and plot results",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			options, err := makeOptions(cmd)
			if err != nil {
				return err
			}

			_, err = benchmark.Run(ctx, options)

			return err
		},
	}
}

func makeOptions(cmd *cli.Command) (benchmark.Options, error) {
	c, err := cmdconf.Load(cmd)
	if err != nil {
		return benchmark.Options{}, err
	}

	registry, err := c.Registry()
	if err != nil {
		return benchmark.Options{}, err
	}

	settingsFile := c.SettingsFile
	if cmd.IsSet("settings") {
		settingsFile = cmd.String("settings")
	}
	settingList, err := settings.Load(settingsFile)
	if err != nil {
		return benchmark.Options{}, err
	}

	batchSize := c.BatchSize
	if cmd.IsSet("batch-size") || batchSize <= 0 {
		batchSize = int(cmd.Int("batch-size"))
	}

	trials := c.Trials
	if cmd.IsSet("trials") {
		trials = int(cmd.Int("trials"))
	} else if trials == 0 {
		trials = benchmark.DefaultTrials
	}
	if err := benchmark.CheckTrials(trials); err != nil {
		return benchmark.Options{}, err
	}

	resultDir := c.ResultDir
	if cmd.IsSet("output") {
		resultDir = cmd.String("output")
	}

	dbPath := c.DatabasePath
	if cmd.IsSet("db") {
		dbPath = cmd.String("db")
	}

	imageFormat := common.GetStrOr(cmd.String("format"), c.ImageFormat)
	if imageFormat != "" && !slices.Contains(common.AllImageFormats, imageFormat) {
		imageFormat = common.ImageFormatPng
	}

	return benchmark.Options{
		BatchSize: batchSize,
		Trials:    trials,
		Rebuild:   cmd.Bool("rebuild"),
		Test:      cmd.Bool("test"),
		JobCnt:    c.JobCount,

		ResultDir:    resultDir,
		RunsDir:      common.GetStrOr(c.RunsDir, filepath.Join(resultDir, "runs")),
		DataDir:      c.DataDir,
		DatabasePath: dbPath,

		Registry: registry,
		Datasets: cmd.StringSlice("dataset"),
		Settings: settingList,

		Download:    cmdconf.DownloadOptions(&c),
		ImageFormat: imageFormat,
	}, nil
}
