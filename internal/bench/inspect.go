package bench

import (
	"context"
	"fmt"
	"io"

	"github.com/arkilian/syncbench/pkg/types"
)

// Inspector reads back the store contents.
type Inspector interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit int) (types.Batch, error)
}

// Inspect prints the row count and the first limit rows.
func Inspect(ctx context.Context, w io.Writer, store Inspector, limit int) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	rows, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "----------------------------")
	fmt.Fprintf(w, "All users count: %d\n", count)
	fmt.Fprintf(w, "Displaying %d users\n", len(rows))
	for _, r := range rows {
		fmt.Fprintf(w, "%d - %s - %s\n", r.ID, r.Name, r.Email)
	}
	return nil
}
