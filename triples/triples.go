package triples

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Triple is a (head, relation, tail) statement with entities and relations
// mapped to dense integer ids.
type Triple struct {
	Head     int32
	Relation int32
	Tail     int32
}

// IDMap assigns dense ids to labels in order of first appearance.
type IDMap struct {
	ids    map[string]int32
	labels []string
}

func NewIDMap() *IDMap {
	return &IDMap{ids: map[string]int32{}}
}

// GetOrAdd returns id of given label, a new id is assigned for unseen label.
func (m *IDMap) GetOrAdd(label string) int32 {
	if id, ok := m.ids[label]; ok {
		return id
	}

	id := int32(len(m.labels))
	m.ids[label] = id
	m.labels = append(m.labels, label)

	return id
}

func (m *IDMap) Get(label string) (int32, bool) {
	id, ok := m.ids[label]
	return id, ok
}

func (m *IDMap) Label(id int32) string {
	if id < 0 || int(id) >= len(m.labels) {
		return ""
	}
	return m.labels[id]
}

func (m *IDMap) Len() int {
	return len(m.labels)
}

// Factory holds a list of mapped triples together with the id spaces they
// live in. Factories of the same dataset share their id maps.
type Factory struct {
	Entities  *IDMap
	Relations *IDMap
	Triples   []Triple
}

func (f *Factory) NumEntities() int {
	return f.Entities.Len()
}

func (f *Factory) NumRelations() int {
	return f.Relations.Len()
}

func (f *Factory) NumTriples() int {
	return len(f.Triples)
}

// WithTriples returns a factory sharing id maps with `f` but holding given
// triples.
func (f *Factory) WithTriples(list []Triple) *Factory {
	return &Factory{
		Entities:  f.Entities,
		Relations: f.Relations,
		Triples:   list,
	}
}

// LoadLabeled reads tab separated `head relation tail` lines from reader. Empty
// lines are skipped, labels are mapped with given id maps.
func LoadLabeled(reader io.Reader, entities, relations *IDMap) (*Factory, error) {
	factory := &Factory{
		Entities:  entities,
		Relations: relations,
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: expecting 3 tab separated fields, found %d", lineNum, len(parts))
		}

		head := strings.TrimSpace(parts[0])
		relation := strings.TrimSpace(parts[1])
		tail := strings.TrimSpace(parts[2])
		if head == "" || relation == "" || tail == "" {
			return nil, fmt.Errorf("line %d: empty label", lineNum)
		}

		factory.Triples = append(factory.Triples, Triple{
			Head:     entities.GetOrAdd(head),
			Relation: relations.GetOrAdd(relation),
			Tail:     entities.GetOrAdd(tail),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read triples: %s", err)
	}

	return factory, nil
}

// LoadLabeledFile is LoadLabeled reading from a file.
func LoadLabeledFile(path string, entities, relations *IDMap) (*Factory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open triple file %s: %s", path, err)
	}
	defer file.Close()

	factory, err := LoadLabeled(file, entities, relations)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path, err)
	}

	return factory, nil
}

// MappedSet is a hash set of triples used for filtered evaluation.
type MappedSet struct {
	tails map[[2]int32]map[int32]struct{} // (head, relation) -> tails
	heads map[[2]int32]map[int32]struct{} // (relation, tail) -> heads
}

func NewMappedSet(factories ...*Factory) *MappedSet {
	set := &MappedSet{
		tails: map[[2]int32]map[int32]struct{}{},
		heads: map[[2]int32]map[int32]struct{}{},
	}

	for _, f := range factories {
		if f == nil {
			continue
		}
		for _, t := range f.Triples {
			set.Add(t)
		}
	}

	return set
}

func (s *MappedSet) Add(t Triple) {
	hr := [2]int32{t.Head, t.Relation}
	tails := s.tails[hr]
	if tails == nil {
		tails = map[int32]struct{}{}
		s.tails[hr] = tails
	}
	tails[t.Tail] = struct{}{}

	rt := [2]int32{t.Relation, t.Tail}
	heads := s.heads[rt]
	if heads == nil {
		heads = map[int32]struct{}{}
		s.heads[rt] = heads
	}
	heads[t.Head] = struct{}{}
}

func (s *MappedSet) Contains(t Triple) bool {
	tails := s.tails[[2]int32{t.Head, t.Relation}]
	if tails == nil {
		return false
	}
	_, ok := tails[t.Tail]
	return ok
}

// TailsOf returns all known tails for (head, relation).
func (s *MappedSet) TailsOf(head, relation int32) map[int32]struct{} {
	return s.tails[[2]int32{head, relation}]
}

// HeadsOf returns all known heads for (relation, tail).
func (s *MappedSet) HeadsOf(relation, tail int32) map[int32]struct{} {
	return s.heads[[2]int32{relation, tail}]
}
