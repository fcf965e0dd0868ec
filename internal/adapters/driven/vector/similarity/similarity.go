// Package similarity provides the brute-force cosine ranking shared by the
// in-process vector indexes.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, or with zero magnitude, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every entry against query and returns the k best, highest
// score first. Ties are broken by id so results are deterministic.
func TopK(entries []domain.IndexEntry, query []float32, k int) []domain.ScoredEntry {
	if k <= 0 || len(entries) == 0 {
		return []domain.ScoredEntry{}
	}

	scored := make([]domain.ScoredEntry, 0, len(entries))
	for _, e := range entries {
		scored = append(scored, domain.ScoredEntry{Entry: e, Score: Cosine(query, e.Embedding)})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Entry.ID < scored[j].Entry.ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// CheckDimensions verifies every entry has the same vector length as want.
// A want of zero adopts the first entry's length. It returns the length in
// force after the check.
func CheckDimensions(entries []domain.IndexEntry, want int) (int, error) {
	for _, e := range entries {
		if want == 0 {
			want = len(e.Embedding)
		}
		if len(e.Embedding) != want {
			return want, &DimensionError{ID: e.ID, Want: want, Got: len(e.Embedding)}
		}
	}
	return want, nil
}

// DimensionError reports an entry whose vector length differs from the index.
type DimensionError struct {
	ID   string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: entry %s has %d dimensions, index has %d",
		domain.ErrDimensionMismatch, e.ID, e.Got, e.Want)
}

// Is matches domain.ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool { return target == domain.ErrDimensionMismatch }
