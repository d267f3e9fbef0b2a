package normalize

import (
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
)

// matchSet tracks match ids already emitted in a run. The bloom filter
// answers the common "never seen" case; positives are confirmed against
// the id list so a false positive never drops a document.
type matchSet struct {
	filter *bloom.BloomFilter
	ids    []string
}

func newMatchSet(estimate uint) *matchSet {
	return &matchSet{filter: bloom.NewWithEstimates(estimate, 0.001)}
}

// add records id and reports whether it was new
func (s *matchSet) add(id string) bool {
	if s.filter.TestString(id) && slices.Contains(s.ids, id) {
		return false
	}
	s.filter.AddString(id)
	s.ids = append(s.ids, id)
	return true
}

func (s *matchSet) len() int {
	return len(s.ids)
}
