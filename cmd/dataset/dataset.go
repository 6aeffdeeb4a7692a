package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/SirZenith/kgebench/cmd/internal/cmdconf"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/dataset"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "manage benchmark datasets",
		Commands: []*cli.Command{
			subcmdList(),
			subcmdFetch(),
		},
	}
}

func subcmdList() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list known datasets ordered by size",
		Flags: []cli.Flag{
			cmdconf.ConfigFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			c, err := cmdconf.Load(cmd)
			if err != nil {
				return err
			}

			registry, err := c.Registry()
			if err != nil {
				return err
			}

			for _, entry := range registry.Sorted() {
				dir := dataset.Dir(entry, c.DataDir)

				status := "remote"
				if entry.IsLocal() {
					status = "local"
				} else if common.FileExists(filepath.Join(dir, dataset.TrainFileName)) {
					status = "fetched"
				}

				fmt.Printf("%-12s %9d triples  %-8s %s\n", entry.Name, entry.Triples, status, dir)
			}

			return nil
		},
	}
}

func subcmdFetch() *cli.Command {
	flags := []cli.Flag{
		cmdconf.ConfigFlag(),
		&cli.BoolFlag{
			Name:  "all",
			Usage: "fetch every known dataset",
		},
	}
	flags = append(flags, cmdconf.DownloadFlags()...)

	return &cli.Command{
		Name:      "fetch",
		Usage:     "download and extract datasets",
		Flags:     flags,
		ArgsUsage: "<dataset>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := cmdconf.Load(cmd)
			if err != nil {
				return err
			}

			registry, err := c.Registry()
			if err != nil {
				return err
			}

			entries := []dataset.Entry{}
			if cmd.Bool("all") {
				entries = registry.Sorted()
			} else {
				for _, name := range cmd.Args().Slice() {
					entry, err := registry.Lookup(name)
					if err != nil {
						return err
					}
					entries = append(entries, entry)
				}
			}

			if len(entries) == 0 {
				return fmt.Errorf("no dataset given, use --all to fetch everything")
			}

			options := cmdconf.DownloadOptions(&c)
			for _, entry := range entries {
				dir, err := dataset.Fetch(ctx, entry, c.DataDir, options)
				if err != nil {
					return err
				}
				log.Infof("%s ready in %s", entry.Name, dir)
			}

			return nil
		},
	}
}
