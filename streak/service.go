package streak

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Domain errors surfaced by the mutation triggers. Handlers map these to
// distinct reason codes so the client can show specific guidance.
var (
	ErrInsufficientBalance = errors.New("insufficient coin balance for freeze")
	ErrDayAlreadyCompleted = errors.New("day is already completed")
	ErrDayAlreadyFrozen    = errors.New("day is already frozen")
	ErrFreezeDateInFuture  = errors.New("cannot freeze a future date")
)

// Service exposes the three mutation triggers. Every trigger runs its
// day-record write and the full recalculation inside one store transaction,
// and triggers for the same user are serialized through a per-user mutex so
// concurrent read-recalculate-write cycles cannot interleave.
type Service struct {
	store      Store
	freezeCost int

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewService creates a Service around the given store. freezeCost is the fixed
// coin price of one streak freeze.
func NewService(store Store, freezeCost int) *Service {
	return &Service{
		store:      store,
		freezeCost: freezeCost,
		locks:      make(map[uint]*sync.Mutex),
	}
}

// FreezeCost returns the configured coin price of one freeze.
func (s *Service) FreezeCost() int { return s.freezeCost }

func (s *Service) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// OnActivityLogged marks date completed after an activity was persisted for
// it, then recalculates. A logged activity supersedes a freeze on the same
// date, so Frozen is cleared.
func (s *Service) OnActivityLogged(ctx context.Context, userID uint, date time.Time) (Aggregates, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	completed := true
	frozen := false
	now := time.Now()

	var agg Aggregates
	err := s.store.Transact(ctx, func(tx Store) error {
		patch := DayPatch{Completed: &completed, Frozen: &frozen, MarkedAt: &now}
		if err := tx.UpsertDay(ctx, userID, date, patch); err != nil {
			return err
		}
		var err error
		agg, err = Recalculate(ctx, tx, userID, date)
		return err
	})
	return agg, err
}

// OnLastActivityRemoved unmarks date when the deletion removed the last
// activity of that day (remaining == 0) and recalculates. When activities
// remain the day stays completed and nothing happens.
func (s *Service) OnLastActivityRemoved(ctx context.Context, userID uint, date time.Time, remaining int, today time.Time) (Aggregates, bool, error) {
	if remaining > 0 {
		return Aggregates{}, false, nil
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	completed := false

	var agg Aggregates
	err := s.store.Transact(ctx, func(tx Store) error {
		patch := DayPatch{Completed: &completed, ClearMarkedAt: true}
		if err := tx.UpsertDay(ctx, userID, date, patch); err != nil {
			return err
		}
		var err error
		agg, err = Recalculate(ctx, tx, userID, today)
		return err
	})
	return agg, err == nil, err
}

// OnFreezePurchased debits the freeze cost and marks date frozen, atomically,
// then recalculates. It fails with a typed domain error when the balance is
// short or the day is already protected; on failure no coins move and no day
// record changes.
func (s *Service) OnFreezePurchased(ctx context.Context, userID uint, date, today time.Time) (Aggregates, error) {
	if DayDiff(date, today) > 0 {
		return Aggregates{}, ErrFreezeDateInFuture
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	var agg Aggregates
	err := s.store.Transact(ctx, func(tx Store) error {
		day, err := tx.GetDay(ctx, userID, date)
		if err != nil {
			return err
		}
		if day != nil && day.Completed {
			return ErrDayAlreadyCompleted
		}
		if day != nil && day.Frozen {
			return ErrDayAlreadyFrozen
		}

		balance, err := tx.Balance(ctx, userID)
		if err != nil {
			return err
		}
		if balance < s.freezeCost {
			return ErrInsufficientBalance
		}
		if err := tx.Debit(ctx, userID, s.freezeCost); err != nil {
			return err
		}
		if err := tx.RecordFreeze(ctx, userID, date, s.freezeCost); err != nil {
			return err
		}

		frozen := true
		if err := tx.UpsertDay(ctx, userID, date, DayPatch{Frozen: &frozen}); err != nil {
			return err
		}

		agg, err = Recalculate(ctx, tx, userID, today)
		return err
	})
	return agg, err
}
