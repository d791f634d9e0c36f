package buddy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotReadOnly(t *testing.T) {
	a := newTestArena(t, 4096, 2, 0)

	snap := a.Snapshot()
	snap[2].Free = 99
	snap[0].Allocated = 99

	assert.Equal(t, []OrderStats{
		{Order: 0, Free: 0, Allocated: 0},
		{Order: 1, Free: 0, Allocated: 0},
		{Order: 2, Free: 1, Allocated: 0},
	}, a.Snapshot(), "mutating a snapshot must not touch the arena")
}

func TestWriteTable(t *testing.T) {
	a := newTestArena(t, 4096, 1, 0)

	var sb strings.Builder
	require.NoError(t, WriteTable(&sb, a.Snapshot()))

	banner := strings.Repeat("=", 63)
	want := strings.Join([]string{
		banner,
		strings.Repeat(" ", 16) + "Order" + strings.Repeat(" ", 9) + "Free Entries" + strings.Repeat(" ", 9) + "Used Entries",
		banner,
		strings.Repeat(" ", 20) + "0" + strings.Repeat(" ", 20) + "0" + strings.Repeat(" ", 20) + "0",
		strings.Repeat(" ", 20) + "1" + strings.Repeat(" ", 20) + "1" + strings.Repeat(" ", 20) + "0",
		"",
	}, "\n")
	assert.Equal(t, want, sb.String())
}

func TestWriteTableAfterOps(t *testing.T) {
	a := newTestArena(t, 4096, 2, 0)
	h, err := a.AllocOrder(0)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteTable(&sb, a.Snapshot()))
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 6, "banner, header, banner, one row per order")
	for _, line := range lines {
		assert.Len(t, line, 63)
	}
	assert.Equal(t, "0", strings.Fields(lines[3])[0])
	assert.Equal(t, []string{"0", "1", "1"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"1", "1", "0"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"2", "0", "0"}, strings.Fields(lines[5]))

	require.NoError(t, a.Free(h))
}
