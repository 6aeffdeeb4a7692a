package config

import (
	"context"
	"fmt"

	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/config"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "configuration file utility",
		Commands: []*cli.Command{
			subcmdInit(),
		},
	}
}

func subcmdInit() *cli.Command {
	var outputPath string

	return &cli.Command{
		Name:  "init",
		Usage: "write default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite existing file",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "path",
				UsageText:   "[path]",
				Destination: &outputPath,
				Max:         1,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			outputPath = common.GetStrOr(outputPath, config.DefaultFileName)

			if common.FileExists(outputPath) && !cmd.Bool("force") {
				return fmt.Errorf("%s already exists, use --force to overwrite", outputPath)
			}

			c := config.Default()
			if err := c.SaveFile(outputPath); err != nil {
				return err
			}

			log.Infof("configuration written to %s", outputPath)

			return nil
		},
	}
}
