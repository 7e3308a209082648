package parking

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestLot(t *testing.T, lanes, capacity int) *ParkingLot {
	t.Helper()
	pl, err := NewParkingLot(lanes, capacity)
	if err != nil {
		t.Fatalf("Failed to create parking lot: %v", err)
	}
	return pl
}

func TestNewParkingLot(t *testing.T) {
	pl := newTestLot(t, 3, 4)

	if pl.NumLanes() != 3 {
		t.Errorf("Expected 3 lanes, got %d", pl.NumLanes())
	}
	if pl.LaneCapacity() != 4 {
		t.Errorf("Expected lane capacity 4, got %d", pl.LaneCapacity())
	}
	for i, l := range pl.lanes {
		if l.Capacity() != 4 {
			t.Errorf("Expected lane %d capacity 4, got %d", i+1, l.Capacity())
		}
		if !l.IsEmpty() {
			t.Errorf("Expected lane %d to be empty", i+1)
		}
	}
	if !pl.entrance.IsEmpty() {
		t.Error("Expected entrance queue to be empty")
	}
}

func TestNewParkingLotInvalidConfig(t *testing.T) {
	for _, tc := range [][2]int{{0, 1}, {1, 0}, {-1, 3}} {
		if _, err := NewParkingLot(tc[0], tc[1]); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewParkingLot(%d, %d): expected ErrInvalidConfig, got %v", tc[0], tc[1], err)
		}
	}
}

func TestAddCarToEntranceRejectsDuplicates(t *testing.T) {
	pl := newTestLot(t, 2, 2)

	if err := pl.AddCarToEntrance(5); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if err := pl.AddCarToEntrance(5); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID while queued, got %v", err)
	}

	if _, err := pl.ParkFirstAvailable(); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if err := pl.AddCarToEntrance(5); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID while parked, got %v", err)
	}
	if pl.entrance.Size() != 0 {
		t.Errorf("Expected empty queue after rejected add, got size %d", pl.entrance.Size())
	}
}

func TestAddNextCarSkipsLiveIDs(t *testing.T) {
	pl := newTestLot(t, 2, 2)
	pl.AddCarToEntrance(1)
	pl.AddCarToEntrance(3)

	var got []int
	for i := 0; i < 3; i++ {
		id, err := pl.AddNextCar()
		if err != nil {
			t.Fatalf("Unexpected error: %s", err.Error())
		}
		got = append(got, id)
	}

	if diff := cmp.Diff([]int{2, 4, 5}, got); diff != "" {
		t.Errorf("auto IDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3, 2, 4, 5}, pl.entrance.IDs()); diff != "" {
		t.Errorf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestParkFirstAvailable(t *testing.T) {
	pl := newTestLot(t, 2, 1)
	pl.AddCarToEntrance(10)
	pl.AddCarToEntrance(20)
	pl.AddCarToEntrance(30)

	for _, want := range []Placement{{CarID: 10, Lane: 1}, {CarID: 20, Lane: 2}} {
		got, err := pl.ParkFirstAvailable()
		if err != nil {
			t.Fatalf("Unexpected error: %s", err.Error())
		}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	}

	got, err := pl.ParkFirstAvailable()
	if !errors.Is(err, ErrLotFull) {
		t.Fatalf("Expected ErrLotFull, got %v", err)
	}
	if got.CarID != 30 || got.Lane != 0 {
		t.Errorf("Expected discarded car 30 with no lane, got %+v", got)
	}
	if pl.CarExistsInSystem(30) {
		t.Error("Expected discarded car to be gone from the system")
	}

	if _, err := pl.ParkFirstAvailable(); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("Expected ErrEmptyQueue, got %v", err)
	}
	if _, err := pl.ParkFirstAvailable(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmptyQueue to match ErrEmpty, got %v", err)
	}
}

func TestParkInLane(t *testing.T) {
	pl := newTestLot(t, 2, 1)

	if _, err := pl.ParkInLane(3); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}
	if _, err := pl.ParkInLane(1); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("Expected ErrEmptyQueue, got %v", err)
	}

	pl.AddCarToEntrance(1)
	pl.AddCarToEntrance(2)

	if _, err := pl.ParkInLane(0); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}
	if pl.entrance.Size() != 2 {
		t.Errorf("Expected invalid lane to leave the queue untouched, got size %d", pl.entrance.Size())
	}

	got, err := pl.ParkInLane(2)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if got != (Placement{CarID: 1, Lane: 2}) {
		t.Errorf("Expected car 1 in lane 2, got %+v", got)
	}

	got, err = pl.ParkInLane(2)
	if !errors.Is(err, ErrLaneFull) {
		t.Fatalf("Expected ErrLaneFull, got %v", err)
	}
	if got.CarID != 2 {
		t.Errorf("Expected discarded car 2, got %+v", got)
	}
	if pl.CarExistsInSystem(2) {
		t.Error("Expected car 2 to be discarded")
	}
	if !pl.lanes[0].IsEmpty() {
		t.Error("Expected lane 1 to stay empty")
	}
}

func TestFindCar(t *testing.T) {
	pl := newTestLot(t, 2, 3)
	for _, id := range []int{1, 2, 3, 4} {
		pl.AddCarToEntrance(id)
		pl.ParkFirstAvailable()
	}

	loc, err := pl.FindCar(1)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if loc != (Location{Lane: 1, Position: 3}) {
		t.Errorf("Expected lane 1 position 3, got %+v", loc)
	}

	loc, err = pl.FindCar(4)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if loc != (Location{Lane: 2, Position: 1}) {
		t.Errorf("Expected lane 2 position 1, got %+v", loc)
	}

	if _, err := pl.FindCar(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestExitFromTop(t *testing.T) {
	pl := newTestLot(t, 2, 3)
	for _, id := range []int{1, 2, 3} {
		pl.AddCarToEntrance(id)
		pl.ParkInLane(1)
	}

	if _, err := pl.ExitFromTop(2, 1); !errors.Is(err, ErrNotAtTop) {
		t.Errorf("Expected ErrNotAtTop, got %v", err)
	}
	if _, err := pl.ExitFromTop(1, 2); !errors.Is(err, ErrEmptyLane) {
		t.Errorf("Expected ErrEmptyLane, got %v", err)
	}
	if _, err := pl.ExitFromTop(3, 5); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}

	removed, err := pl.ExitFromTop(3, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if removed != 3 {
		t.Errorf("Expected removed car 3, got %d", removed)
	}

	top, _ := pl.lanes[0].PeekTop()
	if top != 2 {
		t.Errorf("Expected new top 2, got %d", top)
	}
}

func TestExitCar(t *testing.T) {
	pl := newTestLot(t, 2, 2)
	for _, id := range []int{1, 2, 3} {
		pl.AddCarToEntrance(id)
		pl.ParkFirstAvailable()
	}

	if _, err := pl.ExitCar(1); !errors.Is(err, ErrNotAtTop) {
		t.Errorf("Expected ErrNotAtTop, got %v", err)
	}
	if _, err := pl.ExitCar(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	lane, err := pl.ExitCar(3)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if lane != 2 {
		t.Errorf("Expected car 3 to exit lane 2, got %d", lane)
	}
	if pl.CarExistsInSystem(3) {
		t.Error("Expected car 3 to be gone")
	}
}

func TestSortLane(t *testing.T) {
	pl := newTestLot(t, 1, 4)
	pushTopFirst(pl.lanes[0], 5, 3, 3, 1)

	if err := pl.SortLane(2); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}
	if err := pl.SortLane(1); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if diff := cmp.Diff([]int{1, 3, 3, 5}, pl.lanes[0].IDs()); diff != "" {
		t.Errorf("sorted lane mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveCar(t *testing.T) {
	pl := newTestLot(t, 3, 1)
	for _, id := range []int{1, 2} {
		pl.AddCarToEntrance(id)
		pl.ParkFirstAvailable()
	}

	if _, err := pl.MoveCar(1, 2); !errors.Is(err, ErrLaneFull) {
		t.Errorf("Expected ErrLaneFull, got %v", err)
	}
	if _, err := pl.MoveCar(1, 4); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}
	if _, err := pl.MoveCar(9, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	from, err := pl.MoveCar(1, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if from != 1 {
		t.Errorf("Expected car to come from lane 1, got %d", from)
	}
	loc, _ := pl.FindCar(1)
	if loc.Lane != 3 {
		t.Errorf("Expected car 1 in lane 3, got %d", loc.Lane)
	}

	from, err = pl.MoveCar(1, 3)
	if err != nil || from != 3 {
		t.Errorf("Expected moving to the same lane to be a no-op, got from=%d err=%v", from, err)
	}
}

func TestMoveCarNotAtTop(t *testing.T) {
	pl := newTestLot(t, 2, 2)
	for _, id := range []int{1, 2} {
		pl.AddCarToEntrance(id)
		pl.ParkInLane(1)
	}

	if _, err := pl.MoveCar(1, 2); !errors.Is(err, ErrNotAtTop) {
		t.Errorf("Expected ErrNotAtTop, got %v", err)
	}
	if pl.lanes[0].Size() != 2 {
		t.Errorf("Expected lane 1 untouched, got size %d", pl.lanes[0].Size())
	}
}

func TestParkingLotEndToEnd(t *testing.T) {
	pl := newTestLot(t, 2, 2)

	if err := pl.AddCarToEntrance(10); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if err := pl.AddCarToEntrance(20); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	placement, err := pl.ParkFirstAvailable()
	if err != nil || placement.Lane != 1 || placement.CarID != 10 {
		t.Fatalf("Expected car 10 in lane 1, got %+v (%v)", placement, err)
	}
	placement, err = pl.ParkFirstAvailable()
	if err != nil || placement.Lane != 1 || placement.CarID != 20 {
		t.Fatalf("Expected car 20 in lane 1, got %+v (%v)", placement, err)
	}
	if !pl.lanes[0].IsFull() {
		t.Error("Expected lane 1 to be full")
	}

	loc, err := pl.FindCar(10)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if loc != (Location{Lane: 1, Position: 2}) {
		t.Errorf("Expected lane 1 position 2, got %+v", loc)
	}

	if _, err := pl.ExitFromTop(20, 1); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	top, _ := pl.lanes[0].PeekTop()
	if top != 10 {
		t.Errorf("Expected top 10, got %d", top)
	}
}
