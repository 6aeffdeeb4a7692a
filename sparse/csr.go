package sparse

import (
	"fmt"
	"slices"
)

// CSR is a compressed sparse row matrix. Column indices in every row are
// sorted and unique.
type CSR struct {
	rows, cols int

	indptr  []int
	indices []int32
	data    []float64
}

func (m *CSR) Rows() int { return m.rows }
func (m *CSR) Cols() int { return m.cols }

// NNZ returns number of stored entries.
func (m *CSR) NNZ() int { return len(m.data) }

// FromTriplets builds a matrix from coordinate lists, values at duplicate
// coordinates are summed.
func FromTriplets(rows, cols int, rowIdx, colIdx []int32, values []float64) (*CSR, error) {
	if len(rowIdx) != len(colIdx) || len(rowIdx) != len(values) {
		return nil, fmt.Errorf("coordinate length mismatch: %d rows, %d cols, %d values", len(rowIdx), len(colIdx), len(values))
	}

	counts := make([]int, rows+1)
	for k, r := range rowIdx {
		if r < 0 || int(r) >= rows {
			return nil, fmt.Errorf("row index %d out of range [0, %d)", r, rows)
		}
		if c := colIdx[k]; c < 0 || int(c) >= cols {
			return nil, fmt.Errorf("column index %d out of range [0, %d)", c, cols)
		}
		counts[r+1]++
	}
	for i := 0; i < rows; i++ {
		counts[i+1] += counts[i]
	}

	// scatter into row buckets
	order := make([]int, len(rowIdx))
	next := slices.Clone(counts[:rows])
	for k, r := range rowIdx {
		order[next[r]] = k
		next[r]++
	}

	m := &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int32, 0, len(rowIdx)),
		data:    make([]float64, 0, len(rowIdx)),
	}

	for r := 0; r < rows; r++ {
		bucket := order[counts[r]:counts[r+1]]
		slices.SortFunc(bucket, func(a, b int) int {
			return int(colIdx[a]) - int(colIdx[b])
		})

		for _, k := range bucket {
			c := colIdx[k]
			last := len(m.indices) - 1
			if last >= m.indptr[r] && m.indices[last] == c {
				m.data[last] += values[k]
				continue
			}
			m.indices = append(m.indices, c)
			m.data = append(m.data, values[k])
		}

		m.indptr[r+1] = len(m.indices)
	}

	return m, nil
}

// FromPairs builds a count matrix where entry (r, c) is the number of times
// the pair appears. With `normalize` set, every non-empty row is scaled to sum
// to one.
func FromPairs(rows, cols int, rowIdx, colIdx []int32, normalize bool) (*CSR, error) {
	values := make([]float64, len(rowIdx))
	for i := range values {
		values[i] = 1
	}

	m, err := FromTriplets(rows, cols, rowIdx, colIdx, values)
	if err != nil {
		return nil, err
	}

	if normalize {
		m.NormalizeRows()
	}

	return m, nil
}

// NormalizeRows scales every row to L1 norm of one in place. Empty rows are
// left untouched.
func (m *CSR) NormalizeRows() {
	for r := 0; r < m.rows; r++ {
		st, ed := m.indptr[r], m.indptr[r+1]

		sum := 0.0
		for _, v := range m.data[st:ed] {
			if v < 0 {
				sum -= v
			} else {
				sum += v
			}
		}
		if sum == 0 {
			continue
		}

		for k := st; k < ed; k++ {
			m.data[k] /= sum
		}
	}
}

// Row returns column indices and values of row `i`. Returned slices are views
// into the matrix and must not be modified.
func (m *CSR) Row(i int) ([]int32, []float64) {
	st, ed := m.indptr[i], m.indptr[i+1]
	return m.indices[st:ed], m.data[st:ed]
}

// At returns value at (i, j).
func (m *CSR) At(i, j int) float64 {
	indices, values := m.Row(i)
	if k, ok := slices.BinarySearch(indices, int32(j)); ok {
		return values[k]
	}
	return 0
}

// CopyRowTo writes dense form of row `i` into `dst`.
func (m *CSR) CopyRowTo(i int, dst []float64) {
	clear(dst)

	indices, values := m.Row(i)
	for k, c := range indices {
		dst[c] = values[k]
	}
}

// MulRowsTo writes elementwise product of row `i` of `a` and row `j` of `b`
// into dense `dst`.
func MulRowsTo(a *CSR, i int, b *CSR, j int, dst []float64) {
	clear(dst)

	aIdx, aVal := a.Row(i)
	bIdx, bVal := b.Row(j)

	p, q := 0, 0
	for p < len(aIdx) && q < len(bIdx) {
		switch {
		case aIdx[p] < bIdx[q]:
			p++
		case aIdx[p] > bIdx[q]:
			q++
		default:
			dst[aIdx[p]] = aVal[p] * bVal[q]
			p++
			q++
		}
	}
}

// AddVecMulTo adds sparse row vector (`vecIdx`, `vecVal`) times `m` to `dst`.
func (m *CSR) AddVecMulTo(vecIdx []int32, vecVal []float64, dst []float64) {
	for k, r := range vecIdx {
		weight := vecVal[k]
		if weight == 0 {
			continue
		}

		indices, values := m.Row(int(r))
		for p, c := range indices {
			dst[c] += weight * values[p]
		}
	}
}

// Threshold returns a copy of matrix with all entries less than `t` dropped.
func (m *CSR) Threshold(t float64) *CSR {
	result := &CSR{
		rows:    m.rows,
		cols:    m.cols,
		indptr:  make([]int, m.rows+1),
		indices: make([]int32, 0, len(m.indices)),
		data:    make([]float64, 0, len(m.data)),
	}

	for r := 0; r < m.rows; r++ {
		indices, values := m.Row(r)
		for k, c := range indices {
			if values[k] < t {
				continue
			}
			result.indices = append(result.indices, c)
			result.data = append(result.data, values[k])
		}
		result.indptr[r+1] = len(result.indices)
	}

	return result
}
