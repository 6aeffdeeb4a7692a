package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/network"
	"github.com/SirZenith/kgebench/triples"
	"github.com/charmbracelet/log"
)

// Dir returns directory holding split files of entry.
func Dir(entry Entry, dataDir string) string {
	if entry.IsLocal() {
		return entry.LocalDir
	}
	return filepath.Join(dataDir, common.InvalidPathCharReplace(entry.Name))
}

func splitPaths(dir string) [3]string {
	return [3]string{
		filepath.Join(dir, TrainFileName),
		filepath.Join(dir, TestFileName),
		filepath.Join(dir, ValidFileName),
	}
}

func allExist(paths [3]string) bool {
	for _, path := range paths {
		if !common.FileExists(path) {
			return false
		}
	}
	return true
}

// Fetch makes sure split files of entry are available under data directory,
// downloading and extracting them when needed. Returns dataset directory.
func Fetch(ctx context.Context, entry Entry, dataDir string, options network.DownloadOptions) (string, error) {
	dir := Dir(entry, dataDir)
	paths := splitPaths(dir)

	if allExist(paths) {
		return dir, nil
	}

	if entry.IsLocal() {
		return "", fmt.Errorf("local dataset %s is missing split files in %s", entry.Name, dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dataset directory %s: %s", dir, err)
	}

	log.Infof("fetching dataset %s -> %s", entry.Name, dir)

	if entry.ArchiveURL == "" {
		targets := []network.Target{}
		for i, url := range entry.SplitURLs {
			if url == "" {
				return "", fmt.Errorf("dataset %s has no source for %s", entry.Name, SplitFileNames[i])
			}
			if !common.FileExists(paths[i]) {
				targets = append(targets, network.Target{URL: url, OutputPath: paths[i]})
			}
		}

		if err := network.Download(ctx, targets, options); err != nil {
			return "", fmt.Errorf("failed to download dataset %s: %w", entry.Name, err)
		}

		return dir, nil
	}

	archiveName := common.GetStrOr(entry.ArchiveName, filepath.Base(entry.ArchiveURL))
	archivePath := filepath.Join(dir, archiveName)
	if !common.FileExists(archivePath) {
		err := network.Download(ctx, []network.Target{{URL: entry.ArchiveURL, OutputPath: archivePath}}, options)
		if err != nil {
			return "", fmt.Errorf("failed to download dataset %s: %w", entry.Name, err)
		}
	}

	members := map[string]string{}
	for i, member := range entry.Members {
		if member == "" {
			return "", fmt.Errorf("dataset %s has no archive member for %s", entry.Name, SplitFileNames[i])
		}
		members[member] = paths[i]
	}

	if err := network.ExtractArchive(archivePath, members); err != nil {
		return "", fmt.Errorf("failed to extract dataset %s: %s", entry.Name, err)
	}

	return dir, nil
}

// Load reads split files in `dir` into a dataset sharing one id space.
func Load(name, dir string) (*triples.Dataset, error) {
	entities, relations := triples.NewIDMap(), triples.NewIDMap()
	paths := splitPaths(dir)

	factories := [3]*triples.Factory{}
	for i, path := range paths {
		factory, err := triples.LoadLabeledFile(path, entities, relations)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset %s: %s", name, err)
		}
		factories[i] = factory
	}

	return &triples.Dataset{
		Name:       name,
		Training:   factories[0],
		Testing:    factories[1],
		Validation: factories[2],
	}, nil
}

// FetchAndLoad is Fetch followed by Load.
func FetchAndLoad(ctx context.Context, entry Entry, dataDir string, options network.DownloadOptions) (*triples.Dataset, error) {
	dir, err := Fetch(ctx, entry, dataDir, options)
	if err != nil {
		return nil, err
	}

	log.Debugf("loading dataset %s from %s", entry.Name, dir)

	return Load(entry.Name, dir)
}
