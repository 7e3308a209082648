package parking

import "fmt"

type MoveOutcome int

const (
	// MoveComplete means the source lane was emptied.
	MoveComplete MoveOutcome = iota
	// MovePartial means every lane from the target onward filled up before
	// the source lane was empty.
	MovePartial
	MoveSameLane
	MoveSourceEmpty
)

func (o MoveOutcome) String() string {
	switch o {
	case MoveComplete:
		return "complete"
	case MovePartial:
		return "partial"
	case MoveSameLane:
		return "same_lane"
	case MoveSourceEmpty:
		return "source_empty"
	default:
		return fmt.Sprintf("MoveOutcome(%d)", int(o))
	}
}

// Move is a single car relocation between two lanes.
type Move struct {
	CarID int
	From  int
	To    int
}

type MoveReport struct {
	Source  int
	Target  int
	Outcome MoveOutcome
	Moves   []Move
	// Remaining is the number of cars left in the source lane.
	Remaining int
}

func (r MoveReport) String() string {
	switch r.Outcome {
	case MoveSameLane:
		return "source and target lanes are the same, no movement performed"
	case MoveSourceEmpty:
		return fmt.Sprintf("source lane %d is already empty", r.Source)
	case MovePartial:
		return fmt.Sprintf("not enough space to move all cars from lane %d, %d car(s) remain", r.Source, r.Remaining)
	default:
		return fmt.Sprintf("all cars moved, lane %d is now empty", r.Source)
	}
}

// MoveBetweenLanes drains the source lane top-first into the target lane.
// When the target fills up the move spills over into target+1, target+2 and
// so on up to the last lane. Lanes below the target are never used.
func (pl *ParkingLot) MoveBetweenLanes(source, target int) (MoveReport, error) {
	src, err := pl.lane(source)
	if err != nil {
		return MoveReport{}, err
	}
	if _, err := pl.lane(target); err != nil {
		return MoveReport{}, err
	}

	report := MoveReport{Source: source, Target: target}
	if source == target {
		report.Outcome = MoveSameLane
		report.Remaining = src.Size()
		return report, nil
	}
	if src.IsEmpty() {
		report.Outcome = MoveSourceEmpty
		return report, nil
	}

	for current := target; !src.IsEmpty() && current <= len(pl.lanes); current++ {
		dst := pl.lanes[current-1]
		for !src.IsEmpty() && !dst.IsFull() {
			id, _ := src.Pop()
			dst.Push(id)
			report.Moves = append(report.Moves, Move{CarID: id, From: source, To: current})
		}
	}

	report.Remaining = src.Size()
	if report.Remaining > 0 {
		report.Outcome = MovePartial
	} else {
		report.Outcome = MoveComplete
	}
	return report, nil
}
