package parking

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// LaneSnapshot is a read-only copy of one lane, top car first.
type LaneSnapshot struct {
	Index    int
	Cars     []int
	Size     int
	Capacity int
}

// Snapshot is a read-only copy of the whole lot, safe to hand to renderers.
type Snapshot struct {
	Entrance     []int
	NumLanes     int
	LaneCapacity int
	Lanes        []LaneSnapshot
}

func (pl *ParkingLot) Snapshot() Snapshot {
	s := Snapshot{
		Entrance:     pl.entrance.IDs(),
		NumLanes:     len(pl.lanes),
		LaneCapacity: pl.laneCapacity,
		Lanes:        make([]LaneSnapshot, len(pl.lanes)),
	}
	for i, l := range pl.lanes {
		s.Lanes[i] = LaneSnapshot{
			Index:    i + 1,
			Cars:     l.IDs(),
			Size:     l.Size(),
			Capacity: l.Capacity(),
		}
	}
	return s
}

func (s Snapshot) ParkedCount() int {
	n := 0
	for _, l := range s.Lanes {
		n += l.Size
	}
	return n
}

const dumpWidth = 33

// Dump writes the diagnostic view of the lot: the entrance queue front to
// rear, then every lane top to bottom with positions.
func (pl *ParkingLot) Dump(w io.Writer) error {
	s := pl.Snapshot()

	var b strings.Builder
	b.WriteString("======= Parking Lot State =======\n")
	fmt.Fprintf(&b, "Entrance queue size: %d\n", len(s.Entrance))
	fmt.Fprintf(&b, "%s\n", pl.entrance)
	fmt.Fprintf(&b, "Number of lanes: %d, capacity per lane: %d\n\n", s.NumLanes, s.LaneCapacity)

	for i, l := range s.Lanes {
		fmt.Fprintf(&b, "Lane %d (size: %d/%d):\n", l.Index, l.Size, l.Capacity)
		fmt.Fprintf(&b, "%s\n", pl.lanes[i])
		b.WriteString(strings.Repeat("-", dumpWidth) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Table renders a compact one-line-per-lane view, padding columns to a
// common display width.
func (s Snapshot) Table() string {
	labels := make([]string, len(s.Lanes))
	width := runewidth.StringWidth("Entrance")
	for i, l := range s.Lanes {
		labels[i] = fmt.Sprintf("Lane %d [%d/%d]", l.Index, l.Size, l.Capacity)
		if w := runewidth.StringWidth(labels[i]); w > width {
			width = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", runewidth.FillRight("Entrance", width), joinIDs(s.Entrance, ", "))
	for i, l := range s.Lanes {
		fmt.Fprintf(&b, "%s  %s\n", runewidth.FillRight(labels[i], width), joinIDs(l.Cars, " | "))
	}
	return b.String()
}

func joinIDs(ids []int, sep string) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, sep)
}
