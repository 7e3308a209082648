package parking

import (
	"context"
	"sync"
)

// Session holds the lot that drivers operate on. A lot can be replaced
// (re-initialised) or dropped (reset) while other drivers keep using the
// same Session.
type Session struct {
	mu        sync.RWMutex
	lot       *InstrumentedParkingLot
	telemetry *TelemetryProvider
}

func NewSession(telemetry *TelemetryProvider) *Session {
	return &Session{telemetry: telemetry}
}

// Init replaces the current lot with a fresh one. On error the current lot
// is left in place.
func (s *Session) Init(ctx context.Context, numLanes, laneCapacity int) (*InstrumentedParkingLot, error) {
	lot, err := NewInstrumentedParkingLot(numLanes, laneCapacity, s.telemetry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.lot
	s.lot = lot
	s.mu.Unlock()

	if old != nil {
		old.Close(ctx)
	}
	return lot, nil
}

func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	old := s.lot
	s.lot = nil
	s.mu.Unlock()

	if old != nil {
		old.Close(ctx)
	}
}

func (s *Session) Lot() (*InstrumentedParkingLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lot == nil {
		return nil, ErrNotInitialized
	}
	return s.lot, nil
}
