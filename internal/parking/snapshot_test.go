package parking

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDump(t *testing.T) {
	pl := newTestLot(t, 2, 2)
	pl.AddCarToEntrance(10)
	pl.AddCarToEntrance(20)
	pl.AddCarToEntrance(30)
	pl.ParkFirstAvailable()
	pl.ParkFirstAvailable()

	var buf bytes.Buffer
	if err := pl.Dump(&buf); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	want := "======= Parking Lot State =======\n" +
		"Entrance queue size: 1\n" +
		"Front -> 30 <- Rear\n" +
		"Number of lanes: 2, capacity per lane: 2\n" +
		"\n" +
		"Lane 1 (size: 2/2):\n" +
		"  Position 1 -> CarID: 20\n" +
		"  Position 2 -> CarID: 10\n" +
		"---------------------------------\n" +
		"Lane 2 (size: 0/2):\n" +
		"  (empty)\n" +
		"---------------------------------\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot(t *testing.T) {
	pl := newTestLot(t, 2, 3)
	pl.AddCarToEntrance(1)
	pl.AddCarToEntrance(2)
	pl.AddCarToEntrance(3)
	pl.ParkInLane(2)
	pl.ParkInLane(2)

	want := Snapshot{
		Entrance:     []int{3},
		NumLanes:     2,
		LaneCapacity: 3,
		Lanes: []LaneSnapshot{
			{Index: 1, Cars: []int{}, Size: 0, Capacity: 3},
			{Index: 2, Cars: []int{2, 1}, Size: 2, Capacity: 3},
		},
	}
	got := pl.Snapshot()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if got.ParkedCount() != 2 {
		t.Errorf("Expected 2 parked cars, got %d", got.ParkedCount())
	}

	// Mutating the lot must not change a snapshot already taken.
	pl.ExitCar(2)
	if got.Lanes[1].Size != 2 {
		t.Error("Expected snapshot to be independent of the lot")
	}
}

func TestSnapshotTable(t *testing.T) {
	pl := newTestLot(t, 2, 2)
	pl.AddCarToEntrance(1)
	pl.AddCarToEntrance(2)
	pl.AddCarToEntrance(3)
	pl.AddCarToEntrance(4)
	pl.ParkInLane(1)
	pl.ParkInLane(1)

	want := "Entrance      3, 4\n" +
		"Lane 1 [2/2]  2 | 1\n" +
		"Lane 2 [0/2]  -\n"

	if diff := cmp.Diff(want, pl.Snapshot().Table()); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}
