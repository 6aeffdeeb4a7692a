package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/SirZenith/kgebench/network"
)

func writeSplits(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		TrainFileName: "a\tr\tb\nb\tr\tc\nc\ts\ta\n",
		TestFileName:  "a\ts\tc\n",
		ValidFileName: "b\ts\ta\n\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %s", name, err)
		}
	}
}

func TestLookup(t *testing.T) {
	registry := Default()

	for _, name := range []string{"FB15k-237", "fb15k237", "FB15K_237"} {
		entry, err := registry.Lookup(name)
		if err != nil {
			t.Errorf("lookup %q failed: %s", name, err)
			continue
		}
		if entry.Name != "FB15k-237" {
			t.Errorf("lookup %q found %s", name, entry.Name)
		}
	}

	if _, err := registry.Lookup("Hetionet"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("expecting ErrUnknownDataset, got %v", err)
	}
}

func TestSortedByTriples(t *testing.T) {
	sorted := Default().Sorted()

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Triples > sorted[i].Triples {
			t.Errorf("%s (%d) sorted before %s (%d)", sorted[i-1].Name, sorted[i-1].Triples, sorted[i].Name, sorted[i].Triples)
		}
	}

	smallest := []string{"Countries", "Nations", "UMLS", "Kinships", "DBpedia50"}
	for i, name := range smallest {
		if sorted[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, sorted[i].Name, name)
		}
	}
}

func TestLocalEntryAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeSplits(t, dir)

	entry, err := NewLocalEntry("Toy", dir)
	if err != nil {
		t.Fatalf("failed to make local entry: %s", err)
	}
	if entry.Triples != 5 {
		t.Errorf("local entry counts %d triples, want 5", entry.Triples)
	}

	fetched, err := Fetch(context.Background(), entry, t.TempDir(), network.DownloadOptions{})
	if err != nil {
		t.Fatalf("fetch of local dataset failed: %s", err)
	}
	if fetched != dir {
		t.Errorf("local dataset resolved to %s, want %s", fetched, dir)
	}

	d, err := Load(entry.Name, fetched)
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if d.Training.NumTriples() != 3 || d.Testing.NumTriples() != 1 || d.Validation.NumTriples() != 1 {
		t.Errorf("unexpected split sizes %d/%d/%d", d.Training.NumTriples(), d.Testing.NumTriples(), d.Validation.NumTriples())
	}
	if d.Training.NumEntities() != 3 || d.Training.NumRelations() != 2 {
		t.Errorf("unexpected id space %d entities, %d relations", d.Training.NumEntities(), d.Training.NumRelations())
	}
}

func TestFetchDownloadsSplits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a\tr\tb\n"))
	}))
	defer server.Close()

	entry := Entry{
		Name: "Remote Toy",
		SplitURLs: [3]string{
			server.URL + "/train.txt",
			server.URL + "/test.txt",
			server.URL + "/valid.txt",
		},
	}

	dataDir := t.TempDir()
	dir, err := Fetch(context.Background(), entry, dataDir, network.DownloadOptions{JobCnt: 2})
	if err != nil {
		t.Fatalf("fetch failed: %s", err)
	}

	if dir != filepath.Join(dataDir, "Remote Toy") {
		t.Errorf("unexpected dataset dir %s", dir)
	}

	for _, name := range SplitFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("split %s not downloaded: %s", name, err)
		}
	}
}
