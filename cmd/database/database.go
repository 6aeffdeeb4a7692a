package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SirZenith/kgebench/database"
	"github.com/SirZenith/kgebench/database/data_model"
	"github.com/SirZenith/kgebench/results"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "database",
		Usage: "result database management utility",
		Commands: []*cli.Command{
			subcmdExport(),
			subcmdImport(),
			subcmdMigrate(),
		},
	}
}

func subcmdExport() *cli.Command {
	var dbPath string
	var tableName string
	var csvFilePath string

	return &cli.Command{
		Name:  "export",
		Usage: "export table as CSV, or TSV when output file ends with .tsv",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "dbpath",
				UsageText:   "<db>",
				Destination: &dbPath,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "table-name",
				UsageText:   " <table>",
				Destination: &tableName,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "csv-file",
				UsageText:   " <csv>",
				Destination: &csvFilePath,
				Min:         1,
				Max:         1,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			if database.GetModel(tableName) == nil {
				return fmt.Errorf("invalid table name %q, available tables: %s", tableName, strings.Join(database.TableNames(), ", "))
			}

			db, err := database.Open(dbPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			delimiter := ','
			if strings.EqualFold(filepath.Ext(csvFilePath), ".tsv") {
				delimiter = '\t'
			}

			if err := database.ExportTable(db, tableName, csvFilePath, delimiter); err != nil {
				return err
			}

			log.Infof("table %s exported to %s", tableName, csvFilePath)

			return nil
		},
	}
}

func subcmdImport() *cli.Command {
	var dbPath string
	var tsvFilePath string

	return &cli.Command{
		Name:  "import",
		Usage: "import trials from result table",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "dbpath",
				UsageText:   "<db>",
				Destination: &dbPath,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "tsv-file",
				UsageText:   " <tsv>",
				Destination: &tsvFilePath,
				Min:         1,
				Max:         1,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			records, err := results.LoadTSV(tsvFilePath)
			if err != nil {
				return err
			}

			db, err := database.Open(dbPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			entries := make([]data_model.TrialEntry, len(records))
			for i := range records {
				entries[i] = records[i].ToTrialEntry()
			}

			if err := data_model.UpsertTrials(db, entries); err != nil {
				return fmt.Errorf("failed to import %s: %s", tsvFilePath, err)
			}

			log.Infof("%d trial(s) imported into %s", len(entries), dbPath)

			return nil
		},
	}
}

func subcmdMigrate() *cli.Command {
	var dbPath string

	return &cli.Command{
		Name:  "migrate",
		Usage: "auto migrate database schema",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "dbpath",
				UsageText:   "<path>",
				Destination: &dbPath,
				Min:         1,
				Max:         1,
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			db, err := database.Open(dbPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			return database.Migrate(db)
		},
	}
}
