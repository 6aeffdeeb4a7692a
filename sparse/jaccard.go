package sparse

// Jaccard computes Jaccard similarity |A∩B| / |A∪B| between every set in
// `sets` and every set in `others`. Sets are given as lists of keys, duplicate
// keys within a set are ignored. Result has one row per entry of `sets` and one
// column per entry of `others`, pairs with empty intersection are not stored.
func Jaccard(sets, others [][]uint64) *CSR {
	setList := dedupSets(sets)
	otherList := dedupSets(others)

	owners := map[uint64][]int32{}
	for j, set := range otherList {
		for key := range set {
			owners[key] = append(owners[key], int32(j))
		}
	}

	var rowIdx, colIdx []int32
	var values []float64

	intersection := map[int32]int{}
	for i, set := range setList {
		clear(intersection)

		for key := range set {
			for _, j := range owners[key] {
				intersection[j]++
			}
		}

		for j, inter := range intersection {
			union := len(set) + len(otherList[j]) - inter
			if union <= 0 {
				continue
			}

			rowIdx = append(rowIdx, int32(i))
			colIdx = append(colIdx, j)
			values = append(values, float64(inter)/float64(union))
		}
	}

	// indices are in range by construction
	m, _ := FromTriplets(len(sets), len(others), rowIdx, colIdx, values)

	return m
}

func dedupSets(sets [][]uint64) []map[uint64]struct{} {
	result := make([]map[uint64]struct{}, len(sets))
	for i, keys := range sets {
		set := make(map[uint64]struct{}, len(keys))
		for _, key := range keys {
			set[key] = struct{}{}
		}
		result[i] = set
	}
	return result
}
