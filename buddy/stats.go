package buddy

import (
	"fmt"
	"io"
	"strings"
)

// OrderStats is the per-order slice of a diagnostics snapshot.
type OrderStats struct {
	Order     int
	Free      int
	Allocated int
}

// Snapshot returns the free and allocated block counts for every order from
// 0 to MaxOrder. It never mutates the arena and may be called at any point
// between operations.
func (a *Arena) Snapshot() []OrderStats {
	snap := make([]OrderStats, len(a.classes))
	for k := range a.classes {
		snap[k] = OrderStats{
			Order:     k,
			Free:      len(a.classes[k].free),
			Allocated: len(a.classes[k].allocated),
		}
	}
	return snap
}

const (
	tableWidth = 63
	fieldWidth = tableWidth / 3
)

// WriteTable renders a snapshot as a fixed-width three-column table, one row
// per order, with the header framed by banner lines of '=' characters.
func WriteTable(w io.Writer, snap []OrderStats) error {
	banner := strings.Repeat("=", tableWidth)
	_, err := fmt.Fprintf(w, "%s\n%*s%*s%*s\n%s\n", banner,
		fieldWidth, "Order", fieldWidth, "Free Entries", fieldWidth, "Used Entries", banner)
	if err != nil {
		return err
	}
	for _, s := range snap {
		_, err = fmt.Fprintf(w, "%*d%*d%*d\n", fieldWidth, s.Order, fieldWidth, s.Free, fieldWidth, s.Allocated)
		if err != nil {
			return err
		}
	}
	return nil
}
