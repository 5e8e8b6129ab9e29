package vectorstore

import (
	"fmt"
	"math"
	"sort"
)

// flatIndex is an exact inner-product index over L2-normalized vectors:
// every query scans every row. At the corpus scale this system targets
// (thousands of chunks per filing) the exactness is worth the linear scan.
type flatIndex struct {
	dimension int
	vectors   [][]float32
}

func newFlatIndex(dimension int) *flatIndex {
	return &flatIndex{dimension: dimension}
}

func (ix *flatIndex) add(vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(v), ix.dimension)
		}
	}
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// search returns the row numbers and scores of the topK highest
// inner-product rows, in descending score order.
func (ix *flatIndex) search(query []float32, topK int) ([]int, []float32) {
	scores := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = dot(v, query)
	}

	rows := make([]int, len(scores))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return scores[rows[a]] > scores[rows[b]]
	})

	if topK > len(rows) {
		topK = len(rows)
	}
	ranked := make([]float32, topK)
	for i := 0; i < topK; i++ {
		ranked[i] = scores[rows[i]]
	}
	return rows[:topK], ranked
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalizeL2 scales a vector to unit length in place, making inner
// product equal cosine similarity. Zero vectors are left untouched.
func normalizeL2(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
