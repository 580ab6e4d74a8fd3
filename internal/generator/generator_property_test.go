package generator

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/syncbench/pkg/types"
)

// TestProperty_GenerateContiguous checks that Generate yields exactly count
// records with strictly increasing contiguous ids starting at startID.
func TestProperty_GenerateContiguous(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Generate yields count contiguous ids from startID", prop.ForAll(
		func(startID int64, count int, suffix string) bool {
			batch, err := Generate(startID, count, suffix)
			if err != nil || len(batch) != count {
				return false
			}
			for i, r := range batch {
				id := startID + int64(i)
				if r.ID != id {
					return false
				}
				name := "name" + strconv.FormatInt(id, 10) + suffix
				if r.Name != name || r.Email != name+"@github.com" {
					return false
				}
			}
			return true
		},
		gen.Int64Range(-1000000, 1000000),
		gen.IntRange(0, 500),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestProperty_SplitBatchesShape checks the overflow split: every id is either
// its original slot id or that id shifted by Total, the choice follows the
// mod rule, and ids never repeat across the whole run.
func TestProperty_SplitBatchesShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("split ids follow the mod rule and stay unique", prop.ForAll(
		func(batchSize, repeat int) bool {
			c := types.Case{BatchSize: batchSize, RepeatCount: repeat}
			batches, err := SplitBatches(c, SyncSuffix)
			if err != nil || len(batches) != repeat {
				return false
			}

			seen := make(map[int64]bool, c.Total())
			total := int64(c.Total())
			size := int64(batchSize)
			for i, b := range batches {
				if len(b) != batchSize {
					return false
				}
				for j, r := range b {
					orig := int64(i*batchSize + j + 1)
					want := orig
					if orig%size >= size/2 {
						want = orig + total
					}
					if r.ID != want || seen[r.ID] {
						return false
					}
					seen[r.ID] = true
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
