package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/dataset"
)

const DefaultFileName = "config.json"

// LocalDataset is a dataset stored on disk as train.txt, test.txt and
// valid.txt in given directory.
type LocalDataset struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

type Config struct {
	HttpProxy  string `json:"http_proxy"`
	JobCount   int    `json:"job_count"`
	RetryCount int    `json:"retry"`
	Timeout    int    `json:"timeout"` // download timeout in seconds

	BatchSize int `json:"batch_size"`
	Trials    int `json:"trials"`

	ResultDir    string `json:"result_dir"`
	RunsDir      string `json:"runs_dir"`
	DataDir      string `json:"data_dir"`
	DatabasePath string `json:"database"`
	SettingsFile string `json:"settings_file"` // Lua script returning model settings
	ImageFormat  string `json:"image_format"`
	Locale       string `json:"locale"`

	LocalDatasets []LocalDataset `json:"local_datasets"`
}

// Default returns configuration written by `config init`.
func Default() Config {
	return Config{
		JobCount:     4,
		RetryCount:   3,
		Timeout:      120,
		BatchSize:    2048,
		Trials:       10,
		ResultDir:    "results",
		RunsDir:      "runs",
		DataDir:      "data",
		DatabasePath: "results/results.db",
		ImageFormat:  common.ImageFormatPng,
	}
}

// ReadConfigFile reads configuration from JSON file. Relative paths are
// resolved against directory of config file.
func ReadConfigFile(filePath string) (Config, error) {
	c := Config{}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return c, fmt.Errorf("failed to read config file %s: %s", filePath, err)
	}

	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return c, fmt.Errorf("failed to parse config JSON %s: %s", filePath, err)
	}

	configDir := filepath.Dir(filePath)

	c.ResultDir = common.ResolveRelativePath(c.ResultDir, configDir)
	c.RunsDir = common.ResolveRelativePath(c.RunsDir, configDir)
	c.DataDir = common.ResolveRelativePath(c.DataDir, configDir)
	c.DatabasePath = common.ResolveRelativePath(c.DatabasePath, configDir)
	c.SettingsFile = common.ResolveRelativePath(c.SettingsFile, configDir)

	for i := range c.LocalDatasets {
		c.LocalDatasets[i].Dir = common.ResolveRelativePath(c.LocalDatasets[i].Dir, configDir)
	}

	return c, nil
}

// SaveFile writes configuration as indented JSON.
func (c *Config) SaveFile(filename string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("JSON conversion failed: %s", err)
	}

	return common.WriteFileAtomic(filename, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// TimeoutDuration returns download timeout, zero when not configured.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Registry returns built-in datasets together with local datasets in config.
func (c *Config) Registry() (*dataset.Registry, error) {
	registry := dataset.Default()

	for _, local := range c.LocalDatasets {
		entry, err := dataset.NewLocalEntry(local.Name, local.Dir)
		if err != nil {
			return nil, err
		}
		registry.Register(entry)
	}

	return registry, nil
}
