// Package sources acquires raw tabular records for reconciliation from
// CSV files, remote JSON feeds, and SQL queries. Every source yields the
// same shape: an ordered sequence of column-to-value maps; the engine
// neither knows nor cares where rows came from.
package sources

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tracksync/bridge/pkg/types"
)

// Window is the date range a pass covers. Sources that support date
// filtering restrict their output to it; the rest ignore it.
type Window struct {
	Since string
	Until string
}

// Source produces the raw records of one acquisition run.
type Source interface {
	Records(ctx context.Context, w Window) ([]types.Record, error)
}

// stringify renders a decoded feed or database value the way a
// spreadsheet cell would carry it. Nulls become absent cells.
func stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return fmt.Sprint(val), true
	}
}
