package cmdconf

import (
	"os"
	"time"

	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/config"
	"github.com/SirZenith/kgebench/network"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// ConfigFlag points to configuration file, a missing default file means
// default configuration.
func ConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to configuration file",
		Value:   "./" + config.DefaultFileName,
	}
}

// DownloadFlags are shared by all commands that may fetch datasets.
func DownloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "job",
			Usage: "concurrent job count",
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "proxy url, e.g. http://127.0.0.1:1080",
		},
		&cli.IntFlag{
			Name:  "retry",
			Usage: "retry count for each download",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout",
		},
	}
}

// SetupLogging applies root level `--verbose` flag.
func SetupLogging(cmd *cli.Command) {
	if cmd.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// Load reads configuration file given by `--config` and applies command line
// flags that are explicitly set on top of it.
func Load(cmd *cli.Command) (config.Config, error) {
	SetupLogging(cmd)

	configPath := cmd.String("config")

	c := config.Default()
	if _, err := os.Stat(configPath); err == nil || cmd.IsSet("config") {
		read, err := config.ReadConfigFile(configPath)
		if err != nil {
			return c, err
		}
		c = read
		log.Debugf("configuration loaded from %s", configPath)
	}

	if cmd.IsSet("job") {
		c.JobCount = int(cmd.Int("job"))
	}
	if cmd.IsSet("proxy") {
		c.HttpProxy = cmd.String("proxy")
	}
	if cmd.IsSet("retry") {
		c.RetryCount = int(cmd.Int("retry"))
	}
	if cmd.IsSet("timeout") {
		c.Timeout = int(cmd.Duration("timeout") / time.Second)
	}

	return c, nil
}

// DownloadOptions builds network options from configuration.
func DownloadOptions(c *config.Config) network.DownloadOptions {
	return network.DownloadOptions{
		ProxyURL: c.HttpProxy,
		JobCnt:   common.GetIntOr(c.JobCount, 1),
		RetryCnt: c.RetryCount,
		Timeout:  c.TimeoutDuration(),
	}
}
