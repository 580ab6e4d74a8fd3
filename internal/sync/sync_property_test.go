package sync

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/syncbench/internal/generator"
	"github.com/arkilian/syncbench/pkg/types"
)

// TestProperty_PartitionDisjointAndOrdered checks that Partition assigns
// every record to exactly one side, by membership, keeping relative order.
func TestProperty_PartitionDisjointAndOrdered(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("partition is a disjoint ordered split by membership", prop.ForAll(
		func(start int64, count int, present []int64) bool {
			batch, err := generator.Generate(start, count, "")
			if err != nil {
				return false
			}
			existing := types.NewExistenceSet(present...)

			toInsert, toUpdate := Partition(batch, existing)
			if len(toInsert)+len(toUpdate) != len(batch) {
				return false
			}
			for _, r := range toInsert {
				if existing.Has(r.ID) {
					return false
				}
			}
			for _, r := range toUpdate {
				if !existing.Has(r.ID) {
					return false
				}
			}

			// Generate yields increasing ids, so each side must stay increasing
			for _, side := range []types.Batch{toInsert, toUpdate} {
				for i := 1; i < len(side); i++ {
					if side[i].ID <= side[i-1].ID {
						return false
					}
				}
			}
			return true
		},
		gen.Int64Range(0, 100),
		gen.IntRange(0, 100),
		gen.SliceOf(gen.Int64Range(0, 200)),
	))

	properties.TestingRun(t)
}
