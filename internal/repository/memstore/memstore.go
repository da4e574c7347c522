// Package memstore is an in-process implementation of the repository
// contracts.  It backs tests and the "memory" backend; nothing survives a
// restart.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

type token struct {
	userID  uint64
	expires time.Time
	revoked bool
}

// Store holds every table in maps guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	trains   map[model.TrainID]model.TrainTimetable
	tickets  map[string]model.InventoryRecord
	trips    map[uint64][]model.TripRecord
	nextTrip int64
	users    map[uint64]model.User
	tokens   map[string]token
}

// New returns a Backend whose stores share one empty Store.
func New() *repository.Backend {
	s := &Store{
		trains:  make(map[model.TrainID]model.TrainTimetable),
		tickets: make(map[string]model.InventoryRecord),
		trips:   make(map[uint64][]model.TripRecord),
		users:   make(map[uint64]model.User),
		tokens:  make(map[string]token),
	}
	v := view{s: s}
	return &repository.Backend{
		Schedules: schedules{s: s},
		Inventory: inventory{v},
		Trips:     trips{v},
		Tx:        s,
		Users:     users{s: s},
		Tokens:    tokens{s: s},
	}
}

func ticketKey(k model.InventoryKey) string {
	return fmt.Sprintf("%s|%s|%d", k.TrainID, model.FormatMoment(k.DepartureTime), k.DepartureStation)
}

// view is shared by the inventory and trip stores.  Outside a transaction
// every call takes the mutex itself; inside one the mutex is already held
// and each mutation records its inverse in undo.
type view struct {
	s    *Store
	undo *[]func()
}

func (v view) lock() func() {
	if v.undo != nil {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v view) record(f func()) {
	if v.undo != nil {
		*v.undo = append(*v.undo, f)
	}
}

type ledger struct{ v view }

func (l ledger) Inventory() repository.InventoryStore { return inventory{l.v} }
func (l ledger) Trips() repository.TripLedger         { return trips{l.v} }

// InTx holds the store mutex for the whole callback.  When fn fails the
// recorded inverses run newest first.
func (s *Store) InTx(ctx context.Context, fn func(l repository.Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var undo []func()
	if err := fn(ledger{view{s: s, undo: &undo}}); err != nil {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return err
	}
	return nil
}

type inventory struct{ view }

func (i inventory) Find(_ context.Context, key model.InventoryKey) (model.InventoryRecord, error) {
	defer i.lock()()
	rec, ok := i.s.tickets[ticketKey(key)]
	if !ok {
		return model.InventoryRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (i inventory) UpsertSeats(_ context.Context, key model.InventoryKey, delta int) (int, error) {
	defer i.lock()()
	k := ticketKey(key)
	rec, ok := i.s.tickets[k]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if rec.RemainingSeats+delta < 0 {
		return 0, repository.ErrInsufficientSeats
	}
	prev := rec
	rec.RemainingSeats += delta
	i.s.tickets[k] = rec
	i.record(func() { i.s.tickets[k] = prev })
	return rec.Price, nil
}

func (i inventory) BulkInsert(_ context.Context, records []model.InventoryRecord) error {
	defer i.lock()()
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		k := ticketKey(rec.Key())
		if _, ok := i.s.tickets[k]; ok || seen[k] {
			return repository.ErrDuplicate
		}
		seen[k] = true
	}
	for _, rec := range records {
		k := ticketKey(rec.Key())
		i.s.tickets[k] = rec
		i.record(func() { delete(i.s.tickets, k) })
	}
	return nil
}

func (i inventory) BulkDelete(_ context.Context, id model.TrainID, runDate time.Time) (int, error) {
	defer i.lock()()
	day := model.FormatDate(runDate)
	n := 0
	for k, rec := range i.s.tickets {
		if rec.TrainID != id || model.FormatDate(rec.RunDate) != day {
			continue
		}
		delete(i.s.tickets, k)
		n++
		i.record(func() { i.s.tickets[k] = rec })
	}
	return n, nil
}

type trips struct{ view }

func (t trips) Find(_ context.Context, userID uint64) ([]model.TripRecord, error) {
	defer t.lock()()
	src := t.s.trips[userID]
	out := make([]model.TripRecord, len(src))
	copy(out, src)
	return out, nil
}

func (t trips) Insert(_ context.Context, userID uint64, trip model.TripRecord) (model.TripRecord, error) {
	defer t.lock()()
	t.s.nextTrip++
	trip.ID = t.s.nextTrip
	t.s.trips[userID] = append(t.s.trips[userID], trip)
	id := trip.ID
	t.record(func() { t.s.dropTrip(userID, id) })
	return trip, nil
}

func (t trips) Remove(_ context.Context, userID uint64, trip model.TripRecord) error {
	defer t.lock()()
	list := t.s.trips[userID]
	for idx, cur := range list {
		if cur.ID != trip.ID {
			continue
		}
		t.s.dropTrip(userID, cur.ID)
		t.record(func() {
			l := t.s.trips[userID]
			l = append(l, model.TripRecord{})
			copy(l[idx+1:], l[idx:])
			l[idx] = cur
			t.s.trips[userID] = l
		})
		return nil
	}
	return repository.ErrNotFound
}

func (s *Store) dropTrip(userID uint64, id int64) {
	list := s.trips[userID]
	for i, cur := range list {
		if cur.ID == id {
			s.trips[userID] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

type schedules struct{ s *Store }

func (r schedules) Exists(_ context.Context, id model.TrainID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.trains[id]
	return ok, nil
}

func (r schedules) Get(_ context.Context, id model.TrainID) (model.TrainTimetable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trains[id]
	if !ok {
		return model.TrainTimetable{}, repository.ErrNotFound
	}
	return clone(t), nil
}

func (r schedules) Put(_ context.Context, t model.TrainTimetable) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trains[t.TrainID]; ok {
		return repository.ErrDuplicate
	}
	r.s.trains[t.TrainID] = clone(t)
	return nil
}

func (r schedules) Delete(_ context.Context, id model.TrainID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.trains, id)
	return nil
}

func (r schedules) List(_ context.Context) ([]model.TrainTimetable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.TrainTimetable, 0, len(r.s.trains))
	for _, t := range r.s.trains {
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrainID < out[j].TrainID })
	return out, nil
}

// clone copies the slices so callers cannot alias stored timetables.
func clone(t model.TrainTimetable) model.TrainTimetable {
	t.Stations = append([]model.StationID(nil), t.Stations...)
	t.Durations = append([]int(nil), t.Durations...)
	t.Prices = append([]int(nil), t.Prices...)
	if t.StartTime != nil {
		st := *t.StartTime
		t.StartTime = &st
	}
	return t
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = u
	return nil
}

func (r users) Get(_ context.Context, id uint64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r users) UpdatePassword(_ context.Context, id uint64, hash string) error {
	return r.modify(id, func(u *model.User) { u.PasswordHash = hash })
}

func (r users) UpdatePrivilege(_ context.Context, id uint64, privilege int) error {
	return r.modify(id, func(u *model.User) { u.Privilege = privilege })
}

func (r users) modify(id uint64, f func(u *model.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	f(&u)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

type tokens struct{ s *Store }

func (r tokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[tokenHash]; ok {
		return repository.ErrDuplicate
	}
	r.s.tokens[tokenHash] = token{userID: userID, expires: exp.UTC()}
	return nil
}

func (r tokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenHash]
	if !ok || t.revoked || !time.Now().UTC().Before(t.expires) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (r tokens) RevokeByHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tokens[tokenHash]; ok {
		t.revoked = true
		r.s.tokens[tokenHash] = t
	}
	return nil
}

func (r tokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for h, t := range r.s.tokens {
		if t.userID == userID {
			t.revoked = true
			r.s.tokens[h] = t
		}
	}
	return nil
}
