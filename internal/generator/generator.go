// Package generator produces deterministic synthetic user records for benchmark runs.
package generator

import (
	"fmt"
	"strconv"

	"github.com/arkilian/syncbench/pkg/types"
)

const (
	// EmailDomain is appended to every generated name.
	EmailDomain = "github.com"

	// UpdateSuffix labels the plain update batches.
	UpdateSuffix = "update1"

	// SyncSuffix labels the overflow-split batches.
	SyncSuffix = "update2"
)

// Generate returns count records with ids startID..startID+count-1.
// Names are "name<id><suffix>" and emails "<name>@github.com".
func Generate(startID int64, count int, suffix string) (types.Batch, error) {
	if count < 0 {
		return nil, fmt.Errorf("generator: %w: %d", types.ErrNegativeCount, count)
	}

	batch := make(types.Batch, count)
	for i := 0; i < count; i++ {
		batch[i] = NewRecord(startID+int64(i), suffix)
	}
	return batch, nil
}

// GenerateWithOverflowSplit behaves like Generate and then moves every record
// whose id falls in the upper half of its batch slot (id mod BatchSize >=
// BatchSize/2) past the persisted range by adding c.Total().
// The suffix and name are derived from the original id.
func GenerateWithOverflowSplit(startID int64, count int, suffix string, c types.Case) (types.Batch, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	batch, err := Generate(startID, count, suffix)
	if err != nil {
		return nil, err
	}

	size := int64(c.BatchSize)
	shift := int64(c.Total())
	for i := range batch {
		if batch[i].ID%size >= size/2 {
			batch[i].ID += shift
		}
	}
	return batch, nil
}

// NewRecord builds the record for a single id.
func NewRecord(id int64, suffix string) types.Record {
	name := "name" + strconv.FormatInt(id, 10) + suffix
	return types.Record{
		ID:    id,
		Name:  name,
		Email: name + "@" + EmailDomain,
	}
}

// Baseline returns the reset dataset for a case: ids 1..c.Total(), no suffix.
func Baseline(c types.Case) types.Batch {
	batch, _ := Generate(1, c.Total(), "")
	return batch
}

// Batches returns c.RepeatCount contiguous batches of c.BatchSize records
// covering ids 1..c.Total().
func Batches(c types.Case, suffix string) ([]types.Batch, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	batches := make([]types.Batch, 0, c.RepeatCount)
	for i := 0; i < c.RepeatCount; i++ {
		b, err := Generate(batchStart(c, i), c.BatchSize, suffix)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// SplitBatches returns the same layout as Batches with the overflow split
// applied, so every batch mixes existing and absent ids.
func SplitBatches(c types.Case, suffix string) ([]types.Batch, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	batches := make([]types.Batch, 0, c.RepeatCount)
	for i := 0; i < c.RepeatCount; i++ {
		b, err := GenerateWithOverflowSplit(batchStart(c, i), c.BatchSize, suffix, c)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func batchStart(c types.Case, i int) int64 {
	return int64(i*c.BatchSize + 1)
}
