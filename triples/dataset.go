package triples

import (
	"math/rand/v2"
)

// Dataset is a knowledge graph split into training, testing and validation
// triples over shared id spaces.
type Dataset struct {
	Name       string
	Training   *Factory
	Testing    *Factory
	Validation *Factory
}

func (d *Dataset) NumTriples() int {
	total := 0
	for _, f := range d.splits() {
		if f != nil {
			total += f.NumTriples()
		}
	}
	return total
}

func (d *Dataset) splits() []*Factory {
	return []*Factory{d.Training, d.Testing, d.Validation}
}

// Remix pools all triples of the dataset, shuffles them with given seed and
// splits them again with the original split sizes. Every entity and relation
// is guaranteed to appear in the new training split, so training may end up
// larger than its original size.
func (d *Dataset) Remix(seed uint64) *Dataset {
	splits := d.splits()

	sizes := make([]int, len(splits))
	all := make([]Triple, 0, d.NumTriples())
	for i, f := range splits {
		if f == nil {
			continue
		}
		sizes[i] = f.NumTriples()
		all = append(all, f.Triples...)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	training, rest := splitCoverage(all, d.Training.NumEntities(), d.Training.NumRelations())

	target := sizes[0]
	if missing := target - len(training); missing > 0 {
		training = append(training, rest[:missing]...)
		rest = rest[missing:]
	}

	testSize := min(sizes[1], len(rest))
	testing := rest[:testSize]
	validation := rest[testSize:]

	result := &Dataset{
		Name:     d.Name,
		Training: d.Training.WithTriples(training),
		Testing:  d.Training.WithTriples(testing),
	}
	if d.Validation != nil {
		result.Validation = d.Training.WithTriples(validation)
	}

	return result
}

// splitCoverage picks for every entity and relation the first triple that
// mentions it. Picked triples are returned as `cover` in their original order,
// others are returned as `rest`.
func splitCoverage(all []Triple, numEntities, numRelations int) (cover, rest []Triple) {
	seenEntity := make([]bool, numEntities)
	seenRelation := make([]bool, numRelations)

	cover = make([]Triple, 0, numEntities)
	rest = make([]Triple, 0, len(all))

	for _, t := range all {
		picked := false
		if !seenEntity[t.Head] {
			seenEntity[t.Head] = true
			picked = true
		}
		if !seenEntity[t.Tail] {
			seenEntity[t.Tail] = true
			picked = true
		}
		if !seenRelation[t.Relation] {
			seenRelation[t.Relation] = true
			picked = true
		}

		if picked {
			cover = append(cover, t)
		} else {
			rest = append(rest, t)
		}
	}

	return cover, rest
}
