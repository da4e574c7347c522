package booking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// Outcome tags the result of processing one request.
type Outcome int

const (
	// EmptyQueue means there was nothing to process.
	EmptyQueue Outcome = iota
	Fulfilled
	InsufficientInventory
	NoMatchingTrip
	// Rejected requests name an unknown train, a station the train never
	// departs from, or inventory that no longer exists.
	Rejected
	// Failed requests hit a storage error; nothing was changed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case EmptyQueue:
		return "empty_queue"
	case Fulfilled:
		return "fulfilled"
	case InsufficientInventory:
		return "insufficient_inventory"
	case NoMatchingTrip:
		return "no_matching_trip"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result reports what happened to one request.  Trip is the record that
// was written (purchase) or given back (refund) when Outcome is Fulfilled.
type Result struct {
	Request model.PurchaseRequest
	Outcome Outcome
	Trip    model.TripRecord
	Err     error
}

// Processor owns the order queue and applies requests to the stores.  Each
// request runs in its own store transaction; a request that cannot be
// fulfilled is dropped and never requeued.
type Processor struct {
	mu        sync.Mutex
	queue     orderQueue
	threshold int

	schedules repository.ScheduleStore
	tx        repository.Transactor
}

// NewProcessor returns a Processor that reports Busy while more than
// busyThreshold requests are queued.
func NewProcessor(schedules repository.ScheduleStore, tx repository.Transactor, busyThreshold int) *Processor {
	return &Processor{threshold: busyThreshold, schedules: schedules, tx: tx}
}

// Enqueue adds a request to the queue.
func (p *Processor) Enqueue(req model.PurchaseRequest) {
	p.mu.Lock()
	p.queue.push(req)
	p.mu.Unlock()
}

// Len returns the number of queued requests.
func (p *Processor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.size()
}

// Busy reports whether the queue is over the busy threshold.  Callers
// should drain before adding more load.
func (p *Processor) Busy() bool { return p.Len() > p.threshold }

// ProcessNext pops the highest priority request and applies it.  The
// returned error is non-nil only for storage failures.
func (p *Processor) ProcessNext(ctx context.Context) (Result, error) {
	p.mu.Lock()
	req, ok := p.queue.pop()
	p.mu.Unlock()
	if !ok {
		return Result{Outcome: EmptyQueue}, nil
	}

	var res Result
	if req.IsPurchase() {
		res = p.purchase(ctx, req)
	} else {
		res = p.refund(ctx, req)
	}
	if res.Outcome == Failed {
		return res, res.Err
	}
	return res, nil
}

// DrainAll processes requests until the queue is empty.  A storage failure
// stops the drain; the requests behind the failed one stay queued.
func (p *Processor) DrainAll(ctx context.Context) ([]Result, error) {
	var results []Result
	for {
		res, err := p.ProcessNext(ctx)
		if res.Outcome == EmptyQueue {
			return results, nil
		}
		results = append(results, res)
		if err != nil {
			log.Printf("booking: drain stopped with %d request(s) queued: %v", p.Len(), err)
			return results, err
		}
	}
}

func (p *Processor) purchase(ctx context.Context, req model.PurchaseRequest) Result {
	res := Result{Request: req}

	tt, err := p.schedules.Get(ctx, req.TrainID)
	if errors.Is(err, repository.ErrNotFound) {
		res.Outcome, res.Err = Rejected, notFound(KindTrain, req.TrainID)
		return res
	}
	if err != nil {
		res.Outcome, res.Err = Failed, storageFailure(err)
		return res
	}
	idx, ok := tt.FindStation(req.DepartureStation)
	if !ok {
		res.Outcome, res.Err = Rejected, notFound(KindStation, req.DepartureStation)
		return res
	}

	key := model.InventoryKey{TrainID: req.TrainID, DepartureTime: req.DepartureTime, DepartureStation: req.DepartureStation}
	count := req.Count()
	err = p.tx.InTx(ctx, func(l repository.Ledger) error {
		rec, err := l.Inventory().Find(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInsufficientInventory
		}
		if err != nil {
			return err
		}
		if rec.RemainingSeats < count {
			return ErrInsufficientInventory
		}
		price, err := l.Inventory().UpsertSeats(ctx, key, -count)
		if errors.Is(err, repository.ErrInsufficientSeats) {
			return ErrInsufficientInventory
		}
		if err != nil {
			return err
		}
		duration := tt.Durations[idx]
		res.Trip, err = l.Trips().Insert(ctx, req.UserID, model.TripRecord{
			TrainID:          req.TrainID,
			DepartureStation: req.DepartureStation,
			ArrivalStation:   tt.Stations[idx+1],
			TicketCount:      count,
			Duration:         duration,
			Price:            price,
			DepartureTime:    req.DepartureTime,
			ArrivalTime:      req.DepartureTime.Add(time.Duration(duration) * time.Minute),
		})
		return err
	})
	return settle(res, err)
}

func (p *Processor) refund(ctx context.Context, req model.PurchaseRequest) Result {
	res := Result{Request: req}
	key := model.InventoryKey{TrainID: req.TrainID, DepartureTime: req.DepartureTime, DepartureStation: req.DepartureStation}
	count := req.Count()

	err := p.tx.InTx(ctx, func(l repository.Ledger) error {
		trips, err := l.Trips().Find(ctx, req.UserID)
		if err != nil {
			return err
		}
		var trip model.TripRecord
		found := false
		for _, t := range trips {
			if t.Matches(req.TrainID, req.DepartureStation, req.DepartureTime, count) {
				trip, found = t, true
				break
			}
		}
		if !found {
			return ErrNoMatchingTrip
		}
		_, err = l.Inventory().UpsertSeats(ctx, key, count)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(KindTicket, model.FormatMoment(req.DepartureTime))
		}
		if err != nil {
			return err
		}
		if err := l.Trips().Remove(ctx, req.UserID, trip); err != nil {
			return err
		}
		if trip.TicketCount > count {
			rest := trip
			rest.ID = 0
			rest.TicketCount -= count
			if _, err := l.Trips().Insert(ctx, req.UserID, rest); err != nil {
				return err
			}
		}
		res.Trip = trip
		res.Trip.TicketCount = count
		return nil
	})
	return settle(res, err)
}

// settle maps the transaction error to an outcome.
func settle(res Result, err error) Result {
	switch {
	case err == nil:
		res.Outcome = Fulfilled
	case errors.Is(err, ErrInsufficientInventory):
		res.Outcome, res.Err, res.Trip = InsufficientInventory, err, model.TripRecord{}
	case errors.Is(err, ErrNoMatchingTrip):
		res.Outcome, res.Err, res.Trip = NoMatchingTrip, err, model.TripRecord{}
	case errors.Is(err, ErrNotFound):
		res.Outcome, res.Err, res.Trip = Rejected, err, model.TripRecord{}
	default:
		res.Outcome, res.Err, res.Trip = Failed, storageFailure(err), model.TripRecord{}
	}
	return res
}
