package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"stacked-parking/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkingLotCreateRequest struct {
	Lanes    int `json:"lanes"`
	Capacity int `json:"capacity"`
}

type AddCarRequest struct {
	ID *int `json:"id"`
}

type LaneRequest struct {
	Lane *int `json:"lane"`
}

type MoveLanesRequest struct {
	Target int `json:"target"`
}

type CarResponse struct {
	CarID int `json:"car_id"`
	Lane  int `json:"lane,omitempty"`
}

type LocationResponse struct {
	CarID    int `json:"car_id"`
	Lane     int `json:"lane"`
	Position int `json:"position"`
}

type MoveEntry struct {
	CarID int `json:"car_id"`
	From  int `json:"from"`
	To    int `json:"to"`
}

type MoveResponse struct {
	Source    int         `json:"source"`
	Target    int         `json:"target"`
	Outcome   string      `json:"outcome"`
	Moves     []MoveEntry `json:"moves"`
	Remaining int         `json:"remaining"`
}

type LaneStatus struct {
	Lane     int   `json:"lane"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
	Cars     []int `json:"cars"`
}

type StatusResponse struct {
	Lanes        int          `json:"lanes"`
	LaneCapacity int          `json:"lane_capacity"`
	Parked       int          `json:"parked"`
	Available    int          `json:"available"`
	Entrance     []int        `json:"entrance"`
	LaneStatus   []LaneStatus `json:"lane_status"`
}

func newStatusResponse(s parking.Snapshot) StatusResponse {
	resp := StatusResponse{
		Lanes:        s.NumLanes,
		LaneCapacity: s.LaneCapacity,
		Parked:       s.ParkedCount(),
		Available:    s.NumLanes*s.LaneCapacity - s.ParkedCount(),
		Entrance:     s.Entrance,
		LaneStatus:   make([]LaneStatus, len(s.Lanes)),
	}
	for i, l := range s.Lanes {
		resp.LaneStatus[i] = LaneStatus{Lane: l.Index, Size: l.Size, Capacity: l.Capacity, Cars: l.Cars}
	}
	return resp
}

func newMoveResponse(r parking.MoveReport) MoveResponse {
	resp := MoveResponse{
		Source:    r.Source,
		Target:    r.Target,
		Outcome:   r.Outcome.String(),
		Moves:     make([]MoveEntry, len(r.Moves)),
		Remaining: r.Remaining,
	}
	for i, m := range r.Moves {
		resp.Moves[i] = MoveEntry{CarID: m.CarID, From: m.From, To: m.To}
	}
	return resp
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}

// WriteParkingError reports a failed lot operation with the status code its
// error kind maps to.
func WriteParkingError(ctx context.Context, w http.ResponseWriter, err error) {
	WriteJSON(w, statusFor(err), Response{
		Success: false,
		Error:   err.Error(),
		Kind:    parking.Kind(err),
		Meta:    extractMeta(ctx),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidLane),
		errors.Is(err, parking.ErrInvalidConfig),
		errors.Is(err, parking.ErrNotInitialized):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrDuplicateID),
		errors.Is(err, parking.ErrLotFull),
		errors.Is(err, parking.ErrLaneFull),
		errors.Is(err, parking.ErrNotAtTop),
		errors.Is(err, parking.ErrEmpty):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
