package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/railway-ticketing/internal/graph"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// Config carries the engine limits.  See config.LoadEngineConfig.
//
// Fields:
//  MaxStations        – station ids must lie in [0, MaxStations).
//  MaxPassingStations – upper bound on stations per timetable.
//  AdminPrivilege     – minimum privilege for administrative calls.
//  BusyThreshold      – queue length above which the processor is busy.
//  PathLimits         – caps applied to route enumeration.
type Config struct {
	MaxStations        int
	MaxPassingStations int
	AdminPrivilege     int
	BusyThreshold      int
	PathLimits         graph.PathLimits
}

// Notifier receives every fulfilled purchase or refund after its
// transaction committed.  Errors are logged and otherwise ignored.
type Notifier interface {
	Notify(ctx context.Context, res Result) error
}

// Engine composes the station graph, the stores and the order processor.
// Mutating calls are serialized by one mutex so that at most one store
// transaction is active at a time; route queries only touch the graph and
// run concurrently.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	graph     *graph.StationGraph
	proc      *Processor
	schedules repository.ScheduleStore
	inventory repository.InventoryStore
	trips     repository.TripLedger
	notifier  Notifier
}

// NewEngine builds an engine over b.  notifier may be nil.
func NewEngine(cfg Config, b *repository.Backend, notifier Notifier) *Engine {
	return &Engine{
		cfg:       cfg,
		graph:     graph.New(cfg.MaxStations, cfg.PathLimits),
		proc:      NewProcessor(b.Schedules, b.Tx, cfg.BusyThreshold),
		schedules: b.Schedules,
		inventory: b.Inventory,
		trips:     b.Trips,
		notifier:  notifier,
	}
}

// Graph exposes the station graph for read-only use.
func (e *Engine) Graph() *graph.StationGraph { return e.graph }

// Processor exposes the order processor.
func (e *Engine) Processor() *Processor { return e.proc }

// Restore rebuilds the graph from every stored timetable.  It is meant to
// run once at startup before serving requests.
func (e *Engine) Restore(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	list, err := e.schedules.List(ctx)
	if err != nil {
		return storageFailure(err)
	}
	trains, sections := 0, 0
	for _, t := range list {
		if err := t.Validate(e.cfg.MaxStations, 0); err != nil {
			log.Printf("booking: skipping stored train %s: %v", t.TrainID, err)
			continue
		}
		e.addSections(t)
		trains++
		sections += t.SegmentCount()
	}
	log.Printf("booking: restored %d of %d train(s), %d route section(s)", trains, len(list), sections)
	return nil
}

func (e *Engine) addSections(t model.TrainTimetable) {
	for i := 0; i+1 < len(t.Stations); i++ {
		e.graph.AddRoute(t.Stations[i], t.Stations[i+1], t.Durations[i], t.Prices[i], t.TrainID)
	}
}

func (e *Engine) requireAdmin(c Caller) error {
	if c.Privilege < e.cfg.AdminPrivilege {
		return ErrPermissionDenied
	}
	return nil
}

func (e *Engine) checkStation(id model.StationID) error {
	if id < 0 || int(id) >= e.cfg.MaxStations {
		return fmt.Errorf("%w: %d", ErrInvalidStationID, id)
	}
	return nil
}

// AddTrain validates and stores a timetable, then adds one route section
// per segment to the graph.
func (e *Engine) AddTrain(ctx context.Context, c Caller, t model.TrainTimetable) error {
	if err := e.requireAdmin(c); err != nil {
		return err
	}
	if t.TrainID == "" {
		return fmt.Errorf("%w: train id is required", ErrMalformedInput)
	}
	if err := t.Validate(e.cfg.MaxStations, e.cfg.MaxPassingStations); err != nil {
		if errors.Is(err, model.ErrStationOutOfRange) {
			return fmt.Errorf("%w: %w", ErrInvalidStationID, err)
		}
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	exists, err := e.schedules.Exists(ctx, t.TrainID)
	if err != nil {
		return storageFailure(err)
	}
	if exists {
		return fmt.Errorf("%w: train %s", ErrDuplicateID, t.TrainID)
	}
	if err := e.schedules.Put(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: train %s", ErrDuplicateID, t.TrainID)
		}
		return storageFailure(err)
	}
	e.addSections(t)
	return nil
}

// QueryTrain returns the stored timetable.
func (e *Engine) QueryTrain(ctx context.Context, c Caller, id model.TrainID) (model.TrainTimetable, error) {
	if err := e.requireAdmin(c); err != nil {
		return model.TrainTimetable{}, err
	}
	t, err := e.schedules.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TrainTimetable{}, notFound(KindTrain, id)
	}
	if err != nil {
		return model.TrainTimetable{}, storageFailure(err)
	}
	return t, nil
}

// ListTrains returns every stored timetable ordered by train id.
func (e *Engine) ListTrains(ctx context.Context, c Caller) ([]model.TrainTimetable, error) {
	if err := e.requireAdmin(c); err != nil {
		return nil, err
	}
	list, err := e.schedules.List(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	return list, nil
}

// ReleaseTickets puts SeatCapacity seats on sale for every segment of the
// run that starts on baseDate.  Releasing a run twice fails with
// ErrDuplicateID and leaves the first release untouched.
func (e *Engine) ReleaseTickets(ctx context.Context, c Caller, id model.TrainID, baseDate time.Time) ([]model.InventoryRecord, error) {
	if err := e.requireAdmin(c); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.schedules.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(KindTrain, id)
	}
	if err != nil {
		return nil, storageFailure(err)
	}

	run := model.DateOf(baseDate)
	records := make([]model.InventoryRecord, 0, t.SegmentCount())
	for i := 0; i < t.SegmentCount(); i++ {
		records = append(records, model.InventoryRecord{
			TrainID:          t.TrainID,
			RunDate:          run,
			DepartureTime:    t.DepartureTimeAt(i, baseDate),
			DepartureStation: t.Stations[i],
			ArrivalStation:   t.Stations[i+1],
			RemainingSeats:   t.SeatCapacity,
			Price:            t.Prices[i],
			Duration:         t.Durations[i],
		})
	}
	if err := e.inventory.BulkInsert(ctx, records); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: tickets of %s on %s already released", ErrDuplicateID, id, model.FormatDate(run))
		}
		return nil, storageFailure(err)
	}
	log.Printf("booking: released %d segment(s) of %s on %s", len(records), id, model.FormatDate(run))
	return records, nil
}

// ExpireTickets withdraws every seat of the run that starts on date.  It
// returns how many segment records were removed.
func (e *Engine) ExpireTickets(ctx context.Context, c Caller, id model.TrainID, date time.Time) (int, error) {
	if err := e.requireAdmin(c); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.schedules.Exists(ctx, id)
	if err != nil {
		return 0, storageFailure(err)
	}
	if !exists {
		return 0, notFound(KindTrain, id)
	}
	n, err := e.inventory.BulkDelete(ctx, id, model.DateOf(date))
	if err != nil {
		return 0, storageFailure(err)
	}
	if n == 0 {
		return 0, notFound(KindTicket, fmt.Sprintf("%s@%s", id, model.FormatDate(date)))
	}
	log.Printf("booking: expired %d segment(s) of %s on %s", n, id, model.FormatDate(date))
	return n, nil
}

// QueryRemaining returns the inventory record of the segment leaving
// station at departure.
func (e *Engine) QueryRemaining(ctx context.Context, id model.TrainID, departure time.Time, station model.StationID) (model.InventoryRecord, error) {
	if err := e.checkStation(station); err != nil {
		return model.InventoryRecord{}, err
	}
	rec, err := e.inventory.Find(ctx, model.InventoryKey{TrainID: id, DepartureTime: departure, DepartureStation: station})
	if errors.Is(err, repository.ErrNotFound) {
		return model.InventoryRecord{}, notFound(KindTicket, fmt.Sprintf("%s@%s/%d", id, model.FormatMoment(departure), station))
	}
	if err != nil {
		return model.InventoryRecord{}, storageFailure(err)
	}
	return rec, nil
}

// PlaceOrder buys quantity tickets for the caller.  The request is queued
// with the caller's privilege as priority and the queue is drained; the
// caller's own Result is returned.
func (e *Engine) PlaceOrder(ctx context.Context, c Caller, id model.TrainID, departure time.Time, station model.StationID, quantity int) (Result, error) {
	if quantity <= 0 {
		return Result{}, fmt.Errorf("%w: quantity must be positive", ErrMalformedInput)
	}
	return e.submit(ctx, c, id, departure, station, quantity)
}

// CancelOrder refunds quantity tickets of a trip the caller bought.
func (e *Engine) CancelOrder(ctx context.Context, c Caller, id model.TrainID, departure time.Time, station model.StationID, quantity int) (Result, error) {
	if quantity <= 0 {
		return Result{}, fmt.Errorf("%w: quantity must be positive", ErrMalformedInput)
	}
	return e.submit(ctx, c, id, departure, station, -quantity)
}

func (e *Engine) submit(ctx context.Context, c Caller, id model.TrainID, departure time.Time, station model.StationID, quantity int) (Result, error) {
	if err := e.checkStation(station); err != nil {
		return Result{}, err
	}
	if id == "" {
		return Result{}, fmt.Errorf("%w: train id is required", ErrMalformedInput)
	}
	req := model.PurchaseRequest{
		ID:               uuid.NewString(),
		UserID:           c.UserID,
		TrainID:          id,
		DepartureTime:    departure,
		DepartureStation: station,
		Quantity:         quantity,
		Priority:         c.Privilege,
	}

	results, err := e.enqueueAndDrain(ctx, req)
	e.notify(ctx, results)

	for _, r := range results {
		if r.Request.ID != req.ID {
			continue
		}
		if r.Outcome == Failed {
			return r, r.Err
		}
		return r, nil
	}
	if err == nil {
		err = storageFailure(errors.New("request was not processed"))
	}
	return Result{}, err
}

// enqueueAndDrain runs the whole queue, including req, under e.mu and
// returns every result in processing order.
func (e *Engine) enqueueAndDrain(ctx context.Context, req model.PurchaseRequest) ([]Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var results []Result
	if e.proc.Busy() {
		rs, err := e.proc.DrainAll(ctx)
		results = append(results, rs...)
		if err != nil {
			return results, err
		}
	}
	e.proc.Enqueue(req)
	rs, err := e.proc.DrainAll(ctx)
	return append(results, rs...), err
}

// notify hands fulfilled results to the notifier.  It must be called
// without e.mu held: publishing may block on the network.
func (e *Engine) notify(ctx context.Context, results []Result) {
	if e.notifier == nil {
		return
	}
	for _, r := range results {
		if r.Outcome != Fulfilled {
			continue
		}
		if err := e.notifier.Notify(ctx, r); err != nil {
			log.Printf("booking: notify %s: %v", r.Request.ID, err)
		}
	}
}

// QueryTrips lists the caller's trips.  Pending requests are drained first
// while the processor is busy so the listing reflects them.
func (e *Engine) QueryTrips(ctx context.Context, c Caller) ([]model.TripRecord, error) {
	drained, trips, err := e.queryTrips(ctx, c)
	e.notify(ctx, drained)
	return trips, err
}

func (e *Engine) queryTrips(ctx context.Context, c Caller) ([]Result, []model.TripRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var drained []Result
	if e.proc.Busy() {
		rs, err := e.proc.DrainAll(ctx)
		drained = rs
		if err != nil {
			return drained, nil, err
		}
	}
	trips, err := e.trips.Find(ctx, c.UserID)
	if err != nil {
		return drained, nil, storageFailure(err)
	}
	return drained, trips, nil
}

// DisplayRoute lists every simple path from departure to arrival, bounded
// by the configured path limits.
func (e *Engine) DisplayRoute(ctx context.Context, departure, arrival model.StationID) ([][]model.StationID, error) {
	if err := e.checkStations(departure, arrival); err != nil {
		return nil, err
	}
	if !e.graph.Connected(departure, arrival) {
		return nil, ErrDisconnected
	}
	var paths [][]model.StationID
	for p := range e.graph.Paths(departure, arrival) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, ErrDisconnected
	}
	return paths, nil
}

// QueryBestPath returns the cheapest or fastest path.
func (e *Engine) QueryBestPath(_ context.Context, departure, arrival model.StationID, cost graph.Cost) (graph.Path, error) {
	if err := e.checkStations(departure, arrival); err != nil {
		return graph.Path{}, err
	}
	p, ok := e.graph.ShortestPath(departure, arrival, cost)
	if !ok {
		return graph.Path{}, ErrDisconnected
	}
	return p, nil
}

// QueryAccessibility reports whether the two stations are connected.
func (e *Engine) QueryAccessibility(_ context.Context, departure, arrival model.StationID) (bool, error) {
	if err := e.checkStations(departure, arrival); err != nil {
		return false, err
	}
	return e.graph.Connected(departure, arrival), nil
}

func (e *Engine) checkStations(ids ...model.StationID) error {
	for _, id := range ids {
		if err := e.checkStation(id); err != nil {
			return err
		}
	}
	return nil
}
