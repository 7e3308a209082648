package parking

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"stacked-parking/internal/logging"
)

// InstrumentedParkingLot guards a ParkingLot with a mutex and records a span,
// metrics and a log line for every operation. Each call is one critical
// section, so drivers may share it between goroutines.
type InstrumentedParkingLot struct {
	mu        sync.Mutex
	lot       *ParkingLot
	closed    bool
	telemetry *TelemetryProvider

	// Metrics
	parkingOperations metric.Int64Counter
	discardedCars     metric.Int64Counter
	movedCars         metric.Int64Counter
	queueLength       metric.Int64UpDownCounter
	laneOccupancy     metric.Int64UpDownCounter
	totalSlotsGauge   metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedParkingLot(numLanes, laneCapacity int, telemetry *TelemetryProvider) (*InstrumentedParkingLot, error) {
	baseParkingLot, err := NewParkingLot(numLanes, laneCapacity)
	if err != nil {
		return nil, err
	}

	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking lot operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	discardedCars, err := meter.Int64Counter("cars_discarded_total",
		metric.WithDescription("Cars taken from the entrance queue that found no room"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	movedCars, err := meter.Int64Counter("cars_moved_total",
		metric.WithDescription("Cars relocated between lanes"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	queueLength, err := meter.Int64UpDownCounter("entrance_queue_length",
		metric.WithDescription("Cars waiting in the entrance queue"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	laneOccupancy, err := meter.Int64UpDownCounter("lane_occupancy",
		metric.WithDescription("Cars parked per lane"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots across all lanes"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	ipl := &InstrumentedParkingLot{
		lot:               baseParkingLot,
		telemetry:         telemetry,
		parkingOperations: parkingOperations,
		discardedCars:     discardedCars,
		movedCars:         movedCars,
		queueLength:       queueLength,
		laneOccupancy:     laneOccupancy,
		totalSlotsGauge:   totalSlotsGauge,
		operationDuration: operationDuration,
	}

	totalSlotsGauge.Add(context.Background(), int64(numLanes*laneCapacity))

	return ipl, nil
}

// Close withdraws this lot's contribution to the occupancy gauges. Every
// later operation fails with ErrNotInitialized and leaves the gauges alone.
func (ipl *InstrumentedParkingLot) Close(ctx context.Context) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	if ipl.closed {
		return
	}
	ipl.closed = true

	s := ipl.lot.Snapshot()
	ipl.queueLength.Add(ctx, -int64(len(s.Entrance)))
	for _, l := range s.Lanes {
		if l.Size > 0 {
			ipl.laneOccupancy.Add(ctx, -int64(l.Size), metric.WithAttributes(attribute.Int("lane", l.Index)))
		}
	}
	ipl.totalSlotsGauge.Add(ctx, -int64(s.NumLanes*s.LaneCapacity))
}

// locked runs fn under the lot mutex unless the lot has been closed.
func (ipl *InstrumentedParkingLot) locked(fn func() error) error {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	if ipl.closed {
		return ErrNotInitialized
	}
	return fn()
}

// ReadSnapshot copies the lot state without recording a span or metrics.
// It is meant for scrapers.
func (ipl *InstrumentedParkingLot) ReadSnapshot() (Snapshot, error) {
	var s Snapshot
	err := ipl.locked(func() error {
		s = ipl.lot.Snapshot()
		return nil
	})
	return s, err
}

func (ipl *InstrumentedParkingLot) NumLanes() int {
	return ipl.lot.NumLanes()
}

func (ipl *InstrumentedParkingLot) LaneCapacity() int {
	return ipl.lot.LaneCapacity()
}

type operation struct {
	ipl   *InstrumentedParkingLot
	ctx   context.Context
	span  trace.Span
	name  string
	start time.Time
}

func (ipl *InstrumentedParkingLot) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) *operation {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot."+name, trace.WithAttributes(attrs...))
	return &operation{ipl: ipl, ctx: ctx, span: span, name: name, start: time.Now()}
}

// end records the outcome of the operation and closes its span.
func (op *operation) end(err error) {
	defer op.span.End()

	status := Kind(err)
	labels := []attribute.KeyValue{
		attribute.String("operation", op.name),
		attribute.String("status", status),
	}

	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		logging.Debug(op.ctx).Str("operation", op.name).Str("status", status).Err(err).Msg("parking lot operation failed")
	} else {
		logging.Debug(op.ctx).Str("operation", op.name).Msg("parking lot operation succeeded")
	}

	op.ipl.parkingOperations.Add(op.ctx, 1, metric.WithAttributes(labels...))
	op.ipl.operationDuration.Record(op.ctx, time.Since(op.start).Seconds(), metric.WithAttributes(labels...))
}

func (ipl *InstrumentedParkingLot) laneDelta(ctx context.Context, lane int, delta int64) {
	ipl.laneOccupancy.Add(ctx, delta, metric.WithAttributes(attribute.Int("lane", lane)))
}

func (ipl *InstrumentedParkingLot) AddCarToEntrance(ctx context.Context, id int) error {
	op := ipl.begin(ctx, "add_car", attribute.Int("car.id", id))

	err := ipl.locked(func() error {
		return ipl.lot.AddCarToEntrance(id)
	})

	if err == nil {
		op.span.AddEvent("car_enqueued")
		ipl.queueLength.Add(op.ctx, 1)
	}
	op.end(err)
	return err
}

func (ipl *InstrumentedParkingLot) AddNextCar(ctx context.Context) (int, error) {
	op := ipl.begin(ctx, "add_next_car")

	var id int
	err := ipl.locked(func() (err error) {
		id, err = ipl.lot.AddNextCar()
		return err
	})

	if err == nil {
		op.span.SetAttributes(attribute.Int("car.id", id))
		op.span.AddEvent("car_enqueued")
		ipl.queueLength.Add(op.ctx, 1)
	}
	op.end(err)
	return id, err
}

func (ipl *InstrumentedParkingLot) ParkFirstAvailable(ctx context.Context) (Placement, error) {
	op := ipl.begin(ctx, "park_first_available")
	op.span.AddEvent("finding_available_lane")

	var placement Placement
	err := ipl.locked(func() (err error) {
		placement, err = ipl.lot.ParkFirstAvailable()
		return err
	})

	ipl.recordPlacement(op, placement, err)
	op.end(err)
	return placement, err
}

func (ipl *InstrumentedParkingLot) ParkInLane(ctx context.Context, lane int) (Placement, error) {
	op := ipl.begin(ctx, "park_in_lane", attribute.Int("lane", lane))

	var placement Placement
	err := ipl.locked(func() (err error) {
		placement, err = ipl.lot.ParkInLane(lane)
		return err
	})

	ipl.recordPlacement(op, placement, err)
	op.end(err)
	return placement, err
}

// recordPlacement accounts for a car that left the entrance queue, whether
// it was parked or discarded.
func (ipl *InstrumentedParkingLot) recordPlacement(op *operation, placement Placement, err error) {
	if err != nil && !errors.Is(err, ErrLotFull) && !errors.Is(err, ErrLaneFull) {
		return
	}
	op.span.SetAttributes(attribute.Int("car.id", placement.CarID))
	ipl.queueLength.Add(op.ctx, -1)

	if err != nil {
		op.span.AddEvent("car_discarded")
		ipl.discardedCars.Add(op.ctx, 1, metric.WithAttributes(attribute.String("operation", op.name)))
		logging.Warn(op.ctx).Int("car_id", placement.CarID).Msg("car discarded, no room to park")
		return
	}

	op.span.SetAttributes(attribute.Int("allocated_lane", placement.Lane))
	op.span.AddEvent("car_parked", trace.WithAttributes(attribute.Int("lane", placement.Lane)))
	ipl.laneDelta(op.ctx, placement.Lane, 1)
	logging.Info(op.ctx).Int("car_id", placement.CarID).Int("lane", placement.Lane).Msg("car parked")
}

func (ipl *InstrumentedParkingLot) FindCar(ctx context.Context, id int) (Location, error) {
	op := ipl.begin(ctx, "find_car", attribute.Int("car.id", id))
	op.span.AddEvent("searching_lanes")

	var loc Location
	err := ipl.locked(func() (err error) {
		loc, err = ipl.lot.FindCar(id)
		return err
	})

	if err == nil {
		op.span.SetAttributes(attribute.Int("lane", loc.Lane), attribute.Int("position", loc.Position))
		op.span.AddEvent("car_found")
	}
	op.end(err)
	return loc, err
}

func (ipl *InstrumentedParkingLot) ExitFromTop(ctx context.Context, id, lane int) (int, error) {
	op := ipl.begin(ctx, "exit_from_top", attribute.Int("car.id", id), attribute.Int("lane", lane))

	var removed int
	err := ipl.locked(func() (err error) {
		removed, err = ipl.lot.ExitFromTop(id, lane)
		return err
	})

	if err == nil {
		op.span.AddEvent("car_exited")
		ipl.laneDelta(op.ctx, lane, -1)
		logging.Info(op.ctx).Int("car_id", removed).Int("lane", lane).Msg("car exited")
	}
	op.end(err)
	return removed, err
}

func (ipl *InstrumentedParkingLot) ExitCar(ctx context.Context, id int) (int, error) {
	op := ipl.begin(ctx, "exit_car", attribute.Int("car.id", id))

	var lane int
	err := ipl.locked(func() (err error) {
		lane, err = ipl.lot.ExitCar(id)
		return err
	})

	if err == nil {
		op.span.SetAttributes(attribute.Int("lane", lane))
		op.span.AddEvent("car_exited")
		ipl.laneDelta(op.ctx, lane, -1)
		logging.Info(op.ctx).Int("car_id", id).Int("lane", lane).Msg("car exited")
	}
	op.end(err)
	return lane, err
}

func (ipl *InstrumentedParkingLot) SortLane(ctx context.Context, lane int) error {
	op := ipl.begin(ctx, "sort_lane", attribute.Int("lane", lane))

	err := ipl.locked(func() error {
		return ipl.lot.SortLane(lane)
	})

	if err == nil {
		op.span.AddEvent("lane_sorted")
	}
	op.end(err)
	return err
}

func (ipl *InstrumentedParkingLot) MoveBetweenLanes(ctx context.Context, source, target int) (MoveReport, error) {
	op := ipl.begin(ctx, "move_between_lanes", attribute.Int("lane.source", source), attribute.Int("lane.target", target))

	var report MoveReport
	err := ipl.locked(func() (err error) {
		report, err = ipl.lot.MoveBetweenLanes(source, target)
		return err
	})

	if err == nil {
		for _, m := range report.Moves {
			op.span.AddEvent("car_moved", trace.WithAttributes(
				attribute.Int("car.id", m.CarID),
				attribute.Int("lane.to", m.To),
			))
			ipl.laneDelta(op.ctx, m.From, -1)
			ipl.laneDelta(op.ctx, m.To, 1)
		}
		ipl.movedCars.Add(op.ctx, int64(len(report.Moves)))
		op.span.SetAttributes(
			attribute.String("move.outcome", report.Outcome.String()),
			attribute.Int("move.count", len(report.Moves)),
			attribute.Int("move.remaining", report.Remaining),
		)
		if report.Outcome == MovePartial {
			logging.Warn(op.ctx).Int("lane", source).Int("remaining", report.Remaining).Msg("partial move, cars remain in source lane")
		}
	}
	op.end(err)
	return report, err
}

func (ipl *InstrumentedParkingLot) MoveCar(ctx context.Context, id, target int) (int, error) {
	op := ipl.begin(ctx, "move_car", attribute.Int("car.id", id), attribute.Int("lane.target", target))

	var from int
	err := ipl.locked(func() (err error) {
		from, err = ipl.lot.MoveCar(id, target)
		return err
	})

	if err == nil && from != target {
		op.span.AddEvent("car_moved", trace.WithAttributes(attribute.Int("lane.from", from)))
		ipl.laneDelta(op.ctx, from, -1)
		ipl.laneDelta(op.ctx, target, 1)
		ipl.movedCars.Add(op.ctx, 1)
	}
	op.end(err)
	return from, err
}

func (ipl *InstrumentedParkingLot) CarExistsInSystem(ctx context.Context, id int) bool {
	op := ipl.begin(ctx, "car_exists", attribute.Int("car.id", id))

	var exists bool
	err := ipl.locked(func() error {
		exists = ipl.lot.CarExistsInSystem(id)
		return nil
	})

	op.span.SetAttributes(attribute.Bool("car.exists", exists))
	op.end(err)
	return exists
}

func (ipl *InstrumentedParkingLot) Snapshot(ctx context.Context) Snapshot {
	op := ipl.begin(ctx, "snapshot")

	s, err := ipl.ReadSnapshot()

	op.span.SetAttributes(
		attribute.Int("entrance.size", len(s.Entrance)),
		attribute.Int("parked.count", s.ParkedCount()),
	)
	op.end(err)
	return s
}

func (ipl *InstrumentedParkingLot) Dump(ctx context.Context, w io.Writer) error {
	op := ipl.begin(ctx, "dump")

	err := ipl.locked(func() error {
		return ipl.lot.Dump(w)
	})

	op.end(err)
	return err
}
