package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

var ErrUnknownDataset = errors.New("unknown dataset")

const (
	TrainFileName = "train.txt"
	TestFileName  = "test.txt"
	ValidFileName = "valid.txt"
)

// SplitFileNames lists split file names in training, testing, validation order.
var SplitFileNames = [3]string{TrainFileName, TestFileName, ValidFileName}

// Entry describes where a dataset comes from and how large it is.
type Entry struct {
	Name string

	Entities  int
	Relations int
	Triples   int // total number of triples, used for sorting

	// Direct split file URLs in training, testing, validation order.
	SplitURLs [3]string

	// Archive holding split files, used when SplitURLs is empty.
	ArchiveURL  string
	ArchiveName string    // local file name of downloaded archive, decides archive format
	Members     [3]string // member paths in training, testing, validation order

	// Directory already holding train.txt, test.txt and valid.txt.
	LocalDir string
}

func (e *Entry) IsLocal() bool {
	return e.LocalDir != ""
}

// normalizeName lower cases name and drops everything that is not letter or
// digit, so `fb15k-237`, `FB15k237` and `FB15K_237` are the same dataset.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Registry is a collection of known datasets.
type Registry struct {
	entries []Entry
}

func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{}
	for _, entry := range entries {
		r.Register(entry)
	}
	return r
}

// Register adds entry to registry, entry with the same normalized name is
// replaced.
func (r *Registry) Register(entry Entry) {
	key := normalizeName(entry.Name)
	for i := range r.entries {
		if normalizeName(r.entries[i].Name) == key {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

// Lookup finds dataset by name, case and punctuation are ignored.
func (r *Registry) Lookup(name string) (Entry, error) {
	key := normalizeName(name)
	for _, entry := range r.entries {
		if normalizeName(entry.Name) == key {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
}

// Sorted returns all entries ordered by number of triples, ties are broken by
// name.
func (r *Registry) Sorted() []Entry {
	result := make([]Entry, len(r.entries))
	copy(result, r.entries)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Triples != result[j].Triples {
			return result[i].Triples < result[j].Triples
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// NewLocalEntry makes an entry for dataset stored in `dir`, triple count is
// taken from line count of split files.
func NewLocalEntry(name, dir string) (Entry, error) {
	entry := Entry{
		Name:     name,
		LocalDir: dir,
	}

	for _, fileName := range SplitFileNames {
		path := filepath.Join(dir, fileName)
		cnt, err := countNonEmptyLines(path)
		if err != nil {
			return entry, fmt.Errorf("local dataset %s: %s", name, err)
		}
		entry.Triples += cnt
	}

	return entry, nil
}

func countNonEmptyLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %s", path, err)
	}
	defer file.Close()

	cnt := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			cnt++
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %s: %s", path, err)
	}

	return cnt, nil
}
