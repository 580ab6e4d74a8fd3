package types

import "fmt"

// Case is one entry of the benchmark matrix.
type Case struct {
	// BatchSize is the number of records per batch (must be > 0)
	BatchSize int `json:"batch_size" yaml:"batch_size" hcl:"batch_size"`

	// RepeatCount is the number of batches per strategy run (must be > 0)
	RepeatCount int `json:"repeat_count" yaml:"repeat_count" hcl:"repeat_count"`
}

// Total returns the number of records touched by one strategy run.
func (c Case) Total() int {
	return c.BatchSize * c.RepeatCount
}

// Validate checks that both dimensions are positive.
func (c Case) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be > 0, got %d", ErrInvalidCase, c.BatchSize)
	}
	if c.RepeatCount <= 0 {
		return fmt.Errorf("%w: repeat count must be > 0, got %d", ErrInvalidCase, c.RepeatCount)
	}
	return nil
}

// String renders the case the way the CLI accepts it ("10x1000").
func (c Case) String() string {
	return fmt.Sprintf("%dx%d", c.BatchSize, c.RepeatCount)
}

// DefaultMatrix is the matrix the harness runs when none is configured.
func DefaultMatrix() []Case {
	return []Case{
		{BatchSize: 1, RepeatCount: 1000},
		{BatchSize: 2, RepeatCount: 1000},
		{BatchSize: 10, RepeatCount: 1000},
		{BatchSize: 100, RepeatCount: 100},
	}
}
