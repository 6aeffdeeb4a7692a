package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SirZenith/kgebench/dataset"
	"github.com/google/go-cmp/cmp"
)

func TestSaveAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	c := Default()
	c.LocalDatasets = []LocalDataset{{Name: "Toy", Dir: "toy"}}

	if err := c.SaveFile(path); err != nil {
		t.Fatalf("failed to save config: %s", err)
	}

	read, err := ReadConfigFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %s", err)
	}

	want := c
	want.ResultDir = filepath.Join(dir, "results")
	want.RunsDir = filepath.Join(dir, "runs")
	want.DataDir = filepath.Join(dir, "data")
	want.DatabasePath = filepath.Join(dir, "results", "results.db")
	want.LocalDatasets = []LocalDataset{{Name: "Toy", Dir: filepath.Join(dir, "toy")}}

	if diff := cmp.Diff(want, read); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if read.TimeoutDuration() != 120*time.Second {
		t.Errorf("unexpected timeout %s", read.TimeoutDuration())
	}
}

func TestReadInvalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadConfigFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expecting error for missing file")
	}

	path := filepath.Join(dir, "broken.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := ReadConfigFile(path); err == nil {
		t.Error("expecting error for broken JSON")
	}
}

func TestRegistryWithLocalDataset(t *testing.T) {
	dir := t.TempDir()
	for _, name := range dataset.SplitFileNames {
		os.WriteFile(filepath.Join(dir, name), []byte("a\tr\tb\n"), 0o644)
	}

	c := Config{LocalDatasets: []LocalDataset{{Name: "Toy", Dir: dir}}}
	registry, err := c.Registry()
	if err != nil {
		t.Fatalf("failed to build registry: %s", err)
	}

	entry, err := registry.Lookup("toy")
	if err != nil {
		t.Fatalf("local dataset not registered: %s", err)
	}
	if !entry.IsLocal() || entry.Triples != 3 {
		t.Errorf("unexpected entry %+v", entry)
	}

	if _, err := registry.Lookup("FB15k-237"); err != nil {
		t.Errorf("built-in datasets should stay registered: %s", err)
	}

	c.LocalDatasets[0].Dir = filepath.Join(dir, "missing")
	if _, err := c.Registry(); err == nil {
		t.Error("expecting error for missing local dataset")
	}
}
