package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stacked-parking/internal/parking"
)

type Handler struct {
	session     *parking.Session
	serviceName string
}

func NewHandler(session *parking.Session, serviceName string) *Handler {
	return &Handler{
		session:     session,
		serviceName: serviceName,
	}
}

// decodeOptional decodes a JSON body into v. An empty body is not an error.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func (h *Handler) lot(w http.ResponseWriter, r *http.Request) *parking.InstrumentedParkingLot {
	lot, err := h.session.Lot()
	if err != nil {
		WriteParkingError(r.Context(), w, err)
		return nil
	}
	return lot
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateParkingLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkingLotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Lanes <= 0 || req.Capacity <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Lanes and capacity must be greater than 0")
		return
	}

	if _, err := h.session.Init(ctx, req.Lanes, req.Capacity); err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Parking lot created successfully", req)
}

func (h *Handler) ResetParkingLot(w http.ResponseWriter, r *http.Request) {
	h.session.Reset(r.Context())
	WriteSuccess(r.Context(), w, "System reset. Please initialize again", nil)
}

func (h *Handler) AddCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.lot(w, r)
	if lot == nil {
		return
	}

	var req AddCarRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		id  int
		err error
	)
	if req.ID == nil {
		id, err = lot.AddNextCar(ctx)
	} else {
		id = *req.ID
		err = lot.AddCarToEntrance(ctx, id)
	}
	if err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Car added to entrance queue", CarResponse{CarID: id})
}

func (h *Handler) writePlacement(w http.ResponseWriter, r *http.Request, placement parking.Placement, err error) {
	ctx := r.Context()
	if err != nil {
		WriteParkingError(ctx, w, err)
		return
	}
	WriteSuccess(ctx, w, fmt.Sprintf("Car parked in lane %d", placement.Lane),
		CarResponse{CarID: placement.CarID, Lane: placement.Lane})
}

func (h *Handler) ParkFirstAvailable(w http.ResponseWriter, r *http.Request) {
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	placement, err := lot.ParkFirstAvailable(r.Context())
	h.writePlacement(w, r, placement, err)
}

func (h *Handler) ParkInLane(w http.ResponseWriter, r *http.Request) {
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	lane, err := intParam(r, "lane")
	if err != nil {
		WriteError(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	placement, err := lot.ParkInLane(r.Context(), lane)
	h.writePlacement(w, r, placement, err)
}

func (h *Handler) FindCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := lot.FindCar(ctx, id)
	if err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Car found", LocationResponse{CarID: id, Lane: loc.Lane, Position: loc.Position})
}

func (h *Handler) ExitCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	var req LaneRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var lane int
	if req.Lane == nil {
		lane, err = lot.ExitCar(ctx, id)
	} else {
		lane = *req.Lane
		_, err = lot.ExitFromTop(ctx, id, lane)
	}
	if err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, fmt.Sprintf("Car exited from lane %d", lane), CarResponse{CarID: id, Lane: lane})
}

func (h *Handler) MoveCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	var req LaneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Lane == nil {
		WriteError(ctx, w, http.StatusBadRequest, "lane is required")
		return
	}
	target := *req.Lane

	from, err := lot.MoveCar(ctx, id, target)
	if err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, fmt.Sprintf("Car moved from lane %d to lane %d", from, target),
		MoveEntry{CarID: id, From: from, To: target})
}

func (h *Handler) SortLane(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	lane, err := intParam(r, "lane")
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := lot.SortLane(ctx, lane); err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, fmt.Sprintf("Lane %d sorted by car ID", lane), nil)
}

func (h *Handler) MoveBetweenLanes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	source, err := intParam(r, "lane")
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	var req MoveLanesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := lot.MoveBetweenLanes(ctx, source, req.Target)
	if err != nil {
		WriteParkingError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, report.String(), newMoveResponse(report))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	lot := h.lot(w, r)
	if lot == nil {
		return
	}
	WriteSuccess(r.Context(), w, "Status retrieved successfully", newStatusResponse(lot.Snapshot(r.Context())))
}
