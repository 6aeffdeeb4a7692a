package triples

import (
	"strings"
	"testing"
)

const sampleTrain = `a	likes	b
b	likes	c

c	hates	a
a	knows	d
`

func loadSample(t *testing.T) *Dataset {
	t.Helper()

	entities, relations := NewIDMap(), NewIDMap()

	training, err := LoadLabeled(strings.NewReader(sampleTrain), entities, relations)
	if err != nil {
		t.Fatalf("failed to load training: %s", err)
	}

	testSplit, err := LoadLabeled(strings.NewReader("d\tlikes\ta\nb\thates\td\n"), entities, relations)
	if err != nil {
		t.Fatalf("failed to load testing: %s", err)
	}

	validation, err := LoadLabeled(strings.NewReader("c\tknows\tb\n"), entities, relations)
	if err != nil {
		t.Fatalf("failed to load validation: %s", err)
	}

	return &Dataset{
		Name:       "sample",
		Training:   training,
		Testing:    testSplit,
		Validation: validation,
	}
}

func TestLoadLabeled(t *testing.T) {
	d := loadSample(t)

	if got := d.Training.NumTriples(); got != 4 {
		t.Errorf("training triples: got %d, want 4", got)
	}
	if got := d.Training.NumEntities(); got != 4 {
		t.Errorf("entities: got %d, want 4", got)
	}
	if got := d.Training.NumRelations(); got != 3 {
		t.Errorf("relations: got %d, want 3", got)
	}

	first := d.Training.Triples[0]
	if first != (Triple{Head: 0, Relation: 0, Tail: 1}) {
		t.Errorf("unexpected first triple %+v", first)
	}

	d0, _ := d.Training.Entities.Get("d")
	if d.Testing.Triples[0].Head != d0 {
		t.Errorf("splits do not share entity ids")
	}
}

func TestLoadLabeledMalformed(t *testing.T) {
	_, err := LoadLabeled(strings.NewReader("a\tb\tc\na\tb\n"), NewIDMap(), NewIDMap())
	if err == nil {
		t.Fatal("expecting error for line with two fields")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line number, got: %s", err)
	}
}

func TestRemixKeepsSizesAndCoverage(t *testing.T) {
	d := loadSample(t)

	for seed := uint64(0); seed < 20; seed++ {
		remixed := d.Remix(seed)

		if got := remixed.NumTriples(); got != d.NumTriples() {
			t.Fatalf("seed %d: total triples %d, want %d", seed, got, d.NumTriples())
		}

		if remixed.Training.NumTriples() < d.Training.NumTriples() {
			t.Errorf("seed %d: training shrank to %d", seed, remixed.Training.NumTriples())
		}

		seenEntity := map[int32]bool{}
		seenRelation := map[int32]bool{}
		for _, tr := range remixed.Training.Triples {
			seenEntity[tr.Head] = true
			seenEntity[tr.Tail] = true
			seenRelation[tr.Relation] = true
		}
		if len(seenEntity) != d.Training.NumEntities() {
			t.Errorf("seed %d: training covers %d entities, want %d", seed, len(seenEntity), d.Training.NumEntities())
		}
		if len(seenRelation) != d.Training.NumRelations() {
			t.Errorf("seed %d: training covers %d relations, want %d", seed, len(seenRelation), d.Training.NumRelations())
		}
	}
}

func TestRemixDeterministic(t *testing.T) {
	d := loadSample(t)

	a := d.Remix(7)
	b := d.Remix(7)

	for i := range a.Training.Triples {
		if a.Training.Triples[i] != b.Training.Triples[i] {
			t.Fatalf("remix with same seed differs at %d", i)
		}
	}
}

func TestMappedSet(t *testing.T) {
	d := loadSample(t)
	set := NewMappedSet(d.Training, d.Validation, nil)

	if !set.Contains(d.Training.Triples[2]) {
		t.Error("training triple missing from set")
	}
	if set.Contains(d.Testing.Triples[0]) {
		t.Error("testing triple should not be in set")
	}

	a, _ := d.Training.Entities.Get("a")
	likes, _ := d.Training.Relations.Get("likes")
	if got := len(set.TailsOf(a, likes)); got != 1 {
		t.Errorf("tails of (a, likes): got %d, want 1", got)
	}
}
