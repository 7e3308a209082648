package parking

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty         = errors.New("empty")
	ErrEmptyQueue    = fmt.Errorf("entrance queue is %w", ErrEmpty)
	ErrEmptyLane     = fmt.Errorf("lane is %w", ErrEmpty)
	ErrDuplicateID   = errors.New("car already exists in the system")
	ErrInvalidLane   = errors.New("invalid lane index")
	ErrLotFull       = errors.New("parking lot is full")
	ErrLaneFull      = errors.New("lane is full")
	ErrNotAtTop      = errors.New("car is not at the top of its lane")
	ErrNotFound      = errors.New("car not found")
	ErrInvalidConfig = errors.New("invalid parking lot configuration")

	ErrNotInitialized = errors.New("parking lot not created")
)

// Kind returns a short, stable label for err, suitable for metric and log
// attributes. Unknown errors are reported as "error".
func Kind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyQueue):
		return "empty_queue"
	case errors.Is(err, ErrEmptyLane):
		return "empty_lane"
	case errors.Is(err, ErrEmpty):
		return "empty"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrInvalidLane):
		return "invalid_lane"
	case errors.Is(err, ErrLotFull):
		return "lot_full"
	case errors.Is(err, ErrLaneFull):
		return "lane_full"
	case errors.Is(err, ErrNotAtTop):
		return "not_at_top"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	default:
		return "error"
	}
}
