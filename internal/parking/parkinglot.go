package parking

import (
	"fmt"
)

// ParkingLot routes cars from the entrance queue into a fixed set of lanes.
// Lane indices are 1-based everywhere in its API.
type ParkingLot struct {
	entrance     *Queue
	lanes        []*Lane
	laneCapacity int
	nextID       int
}

// Placement describes where a car from the entrance queue ended up. Lane is 0
// when the car was discarded because there was no room.
type Placement struct {
	CarID int
	Lane  int
}

// Location is a parked car's 1-based lane index and 1-based position from
// the lane's top.
type Location struct {
	Lane     int
	Position int
}

func NewParkingLot(numLanes, laneCapacity int) (*ParkingLot, error) {
	if numLanes < 1 || laneCapacity < 1 {
		return nil, fmt.Errorf("%w: lanes=%d capacity=%d", ErrInvalidConfig, numLanes, laneCapacity)
	}

	lanes := make([]*Lane, numLanes)
	for i := 0; i < numLanes; i++ {
		lanes[i] = NewLane(laneCapacity)
	}

	return &ParkingLot{
		entrance:     NewQueue(),
		lanes:        lanes,
		laneCapacity: laneCapacity,
		nextID:       1,
	}, nil
}

func (pl *ParkingLot) NumLanes() int {
	return len(pl.lanes)
}

func (pl *ParkingLot) LaneCapacity() int {
	return pl.laneCapacity
}

func (pl *ParkingLot) isValidLane(lane int) bool {
	return lane >= 1 && lane <= len(pl.lanes)
}

func (pl *ParkingLot) lane(lane int) (*Lane, error) {
	if !pl.isValidLane(lane) {
		return nil, fmt.Errorf("lane %d (want 1-%d): %w", lane, len(pl.lanes), ErrInvalidLane)
	}
	return pl.lanes[lane-1], nil
}

// CarExistsInSystem reports whether id is waiting at the entrance or parked
// in any lane.
func (pl *ParkingLot) CarExistsInSystem(id int) bool {
	if pl.entrance.Contains(id) {
		return true
	}
	for _, l := range pl.lanes {
		if l.FindPosition(id) != NotFound {
			return true
		}
	}
	return false
}

func (pl *ParkingLot) AddCarToEntrance(id int) error {
	if pl.CarExistsInSystem(id) {
		return fmt.Errorf("car %d: %w", id, ErrDuplicateID)
	}
	pl.entrance.Enqueue(id)
	return nil
}

// AddNextCar enqueues a car with the next automatic ID, skipping IDs that
// are already in the system, and returns the ID it used.
func (pl *ParkingLot) AddNextCar() (int, error) {
	for pl.CarExistsInSystem(pl.nextID) {
		pl.nextID++
	}
	id := pl.nextID
	pl.nextID++
	return id, pl.AddCarToEntrance(id)
}

// ParkFirstAvailable takes the car at the front of the entrance queue and
// parks it in the lowest-indexed lane with room. If every lane is full the
// car has already left the queue and is lost; the returned Placement still
// carries its ID.
func (pl *ParkingLot) ParkFirstAvailable() (Placement, error) {
	id, err := pl.entrance.Dequeue()
	if err != nil {
		return Placement{}, ErrEmptyQueue
	}

	for i, l := range pl.lanes {
		if l.Push(id) {
			return Placement{CarID: id, Lane: i + 1}, nil
		}
	}
	return Placement{CarID: id}, fmt.Errorf("car %d discarded: %w", id, ErrLotFull)
}

// ParkInLane parks the car at the front of the entrance queue in the given
// lane. As with ParkFirstAvailable, a car that does not fit is discarded.
func (pl *ParkingLot) ParkInLane(lane int) (Placement, error) {
	target, err := pl.lane(lane)
	if err != nil {
		return Placement{}, err
	}

	id, err := pl.entrance.Dequeue()
	if err != nil {
		return Placement{}, ErrEmptyQueue
	}

	if !target.Push(id) {
		return Placement{CarID: id}, fmt.Errorf("car %d discarded, lane %d: %w", id, lane, ErrLaneFull)
	}
	return Placement{CarID: id, Lane: lane}, nil
}

func (pl *ParkingLot) FindCar(id int) (Location, error) {
	for i, l := range pl.lanes {
		if pos := l.FindPosition(id); pos != NotFound {
			return Location{Lane: i + 1, Position: pos}, nil
		}
	}
	return Location{}, fmt.Errorf("car %d: %w", id, ErrNotFound)
}

// ExitFromTop removes car id from the given lane, provided it is the lane's
// top car.
func (pl *ParkingLot) ExitFromTop(id, lane int) (int, error) {
	l, err := pl.lane(lane)
	if err != nil {
		return 0, err
	}

	top, err := l.PeekTop()
	if err != nil {
		return 0, fmt.Errorf("lane %d: %w", lane, ErrEmptyLane)
	}
	if top != id {
		return 0, fmt.Errorf("car %d in lane %d, top is car %d: %w", id, lane, top, ErrNotAtTop)
	}

	return l.Pop()
}

// ExitCar removes car id from whichever lane has it on top.
func (pl *ParkingLot) ExitCar(id int) (int, error) {
	for i, l := range pl.lanes {
		if top, err := l.PeekTop(); err == nil && top == id {
			l.Pop()
			return i + 1, nil
		}
	}

	loc, err := pl.FindCar(id)
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("car %d at position %d of lane %d: %w", id, loc.Position, loc.Lane, ErrNotAtTop)
}

func (pl *ParkingLot) SortLane(lane int) error {
	l, err := pl.lane(lane)
	if err != nil {
		return err
	}
	l.Sort()
	return nil
}

// MoveCar relocates a single top car to the target lane and returns the lane
// it came from. Nothing moves if the target is full.
func (pl *ParkingLot) MoveCar(id, target int) (int, error) {
	dst, err := pl.lane(target)
	if err != nil {
		return 0, err
	}

	loc, err := pl.FindCar(id)
	if err != nil {
		return 0, err
	}
	if loc.Position != 1 {
		return loc.Lane, fmt.Errorf("car %d at position %d of lane %d: %w", id, loc.Position, loc.Lane, ErrNotAtTop)
	}
	if loc.Lane == target {
		return loc.Lane, nil
	}
	if dst.IsFull() {
		return loc.Lane, fmt.Errorf("lane %d: %w", target, ErrLaneFull)
	}

	src := pl.lanes[loc.Lane-1]
	src.Pop()
	dst.Push(id)
	return loc.Lane, nil
}
