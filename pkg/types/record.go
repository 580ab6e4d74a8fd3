// Package types provides core data types for syncbench.
package types

// Record is a single row of the users table.
type Record struct {
	// ID is the primary key of the row
	ID int64 `json:"id"`

	// Name is the display name; carries the generation suffix in benchmarks
	Name string `json:"name"`

	// Email is stored independently of Name even though the generator derives it
	Email string `json:"email"`
}

// Batch is an ordered group of records applied together by one strategy call.
type Batch []Record

// IDs returns the record ids in batch order.
func (b Batch) IDs() []int64 {
	ids := make([]int64, len(b))
	for i, r := range b {
		ids[i] = r.ID
	}
	return ids
}

// ExistenceSet holds the ids found in the store for one batch.
type ExistenceSet map[int64]struct{}

// NewExistenceSet builds a set from the given ids.
func NewExistenceSet(ids ...int64) ExistenceSet {
	s := make(ExistenceSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is present.
func (s ExistenceSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}
