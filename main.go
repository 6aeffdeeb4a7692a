package main

import (
	"context"
	"fmt"
	"os"

	"github.com/SirZenith/kgebench/cmd/benchmark"
	"github.com/SirZenith/kgebench/cmd/config"
	"github.com/SirZenith/kgebench/cmd/database"
	"github.com/SirZenith/kgebench/cmd/dataset"
	"github.com/SirZenith/kgebench/cmd/plot"
	"github.com/SirZenith/kgebench/cmd/report"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "kgebench",
		Usage:   "benchmark non-parametric link prediction baselines on knowledge graph datasets",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print debug log",
			},
		},
		Commands: []*cli.Command{
			benchmark.Cmd(),
			plot.Cmd(),
			report.Cmd(),
			dataset.Cmd(),
			database.Cmd(),
			config.Cmd(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
