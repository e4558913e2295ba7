package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/repository"
)

// Names of the persisted documents.
const (
	DocPayments        = "payments"
	DocTasks           = "tasks"
	DocDeletedPayments = "deleted_payments"
)

// DocumentRepository is the durable key-value layer behind the store.
type DocumentRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store owns the payment, deleted-payment and task collections.
//
// Every operation is total: unknown ids make it a no-op that returns false.
// After each mutation the affected documents are rewritten in full; a failed
// write is logged and the in-memory change is kept.
type Store struct {
	mu       sync.Mutex
	repo     DocumentRepository
	log      *zap.Logger
	payments []model.Payment
	deleted  []model.Payment
	tasks    []model.Task
}

func NewStore(repo DocumentRepository, log *zap.Logger) *Store {
	return &Store{repo: repo, log: log.Named("store")}
}

// Load replaces the in-memory collections with the persisted documents.
// Missing or malformed documents load as empty collections.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = loadDocument[model.Payment](ctx, s.repo, s.log, DocPayments)
	s.deleted = loadDocument[model.Payment](ctx, s.repo, s.log, DocDeletedPayments)
	s.tasks = loadDocument[model.Task](ctx, s.repo, s.log, DocTasks)

	s.log.Info("collections loaded",
		zap.Int("payments", len(s.payments)),
		zap.Int("deleted_payments", len(s.deleted)),
		zap.Int("tasks", len(s.tasks)),
	)
}

func loadDocument[T any](ctx context.Context, repo DocumentRepository, log *zap.Logger, key string) []T {
	data, err := repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn("document unavailable, starting empty", zap.String("document", key), zap.Error(err))
		}
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn("document malformed, starting empty", zap.String("document", key), zap.Error(err))
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var v any
		switch key {
		case DocPayments:
			v = s.payments
		case DocDeletedPayments:
			v = s.deleted
		case DocTasks:
			v = s.tasks
		default:
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			s.log.Error("encode document", zap.String("document", key), zap.Error(err))
			continue
		}
		if err := s.repo.Save(ctx, key, data); err != nil {
			s.log.Error("persist document", zap.String("document", key), zap.Error(err))
		}
	}
}

type entity interface {
	EntityID() string
}

func indexOf[T entity](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func without[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// Payments returns a copy of the live payments in collection order.
func (s *Store) Payments() []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Payment(nil), s.payments...)
}

// DeletedPayments returns a copy of the soft-delete bin.
func (s *Store) DeletedPayments() []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Payment(nil), s.deleted...)
}

func (s *Store) Payment(id string) (model.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.payments, id); i >= 0 {
		return s.payments[i], true
	}
	return model.Payment{}, false
}

// AddPayment appends p. An id already used by a live or deleted payment is refused.
func (s *Store) AddPayment(ctx context.Context, p model.Payment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.payments, p.ID) >= 0 || indexOf(s.deleted, p.ID) >= 0 {
		s.log.Warn("duplicate payment id refused", zap.String("id", p.ID))
		return false
	}
	s.payments = append(s.payments, p)
	s.persist(ctx, DocPayments)
	return true
}

// UpdatePayment applies patch to the live payment with id. The id itself cannot change.
func (s *Store) UpdatePayment(ctx context.Context, id string, patch func(*model.Payment)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, id)
	if i < 0 {
		return false
	}
	updated := s.payments[i]
	patch(&updated)
	updated.ID = id
	s.payments[i] = updated
	s.persist(ctx, DocPayments)
	return true
}

// TogglePaid flips the paid flag and returns the new value.
func (s *Store) TogglePaid(ctx context.Context, id string) (paid, ok bool) {
	ok = s.UpdatePayment(ctx, id, func(p *model.Payment) {
		p.Paid = !p.Paid
		paid = p.Paid
	})
	return paid, ok
}

// RemovePayment drops a live payment without keeping it in the bin.
func (s *Store) RemovePayment(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, id)
	if i < 0 {
		return false
	}
	s.payments = without(s.payments, i)
	s.persist(ctx, DocPayments)
	return true
}

// SoftDeletePayment moves a live payment, unchanged, into the bin.
func (s *Store) SoftDeletePayment(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, id)
	if i < 0 {
		return false
	}
	p := s.payments[i]
	s.payments = without(s.payments, i)
	s.deleted = append(s.deleted, p)
	s.persist(ctx, DocPayments, DocDeletedPayments)
	return true
}

// RestorePayment moves a payment from the bin back to the end of the live list.
func (s *Store) RestorePayment(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.deleted, id)
	if i < 0 {
		return false
	}
	p := s.deleted[i]
	s.deleted = without(s.deleted, i)
	if indexOf(s.payments, id) < 0 {
		s.payments = append(s.payments, p)
	}
	s.persist(ctx, DocPayments, DocDeletedPayments)
	return true
}

// PurgeDeletedPayment permanently removes a payment from the bin.
func (s *Store) PurgeDeletedPayment(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.deleted, id)
	if i < 0 {
		return false
	}
	s.deleted = without(s.deleted, i)
	s.persist(ctx, DocDeletedPayments)
	return true
}

// PurgeAllDeleted empties the bin and returns how many payments were dropped.
func (s *Store) PurgeAllDeleted(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.deleted)
	s.deleted = []model.Payment{}
	s.persist(ctx, DocDeletedPayments)
	return n
}

// PaymentsByDueDate returns the live payments, earliest due date first.
// Payments due the same day keep their collection order.
func (s *Store) PaymentsByDueDate() []model.Payment {
	payments := s.Payments()
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].DueDate.Before(payments[j].DueDate)
	})
	return payments
}

// PaidHistory returns paid live payments, latest due date first.
func (s *Store) PaidHistory() []model.Payment {
	var paid []model.Payment
	for _, p := range s.Payments() {
		if p.Paid {
			paid = append(paid, p)
		}
	}
	sort.SliceStable(paid, func(i, j int) bool {
		return paid[j].DueDate.Before(paid[i].DueDate)
	})
	return paid
}

// PendingTotal sums the amounts of unpaid live payments.
func (s *Store) PendingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments() {
		if !p.Paid {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Tasks returns a copy of the tasks in collection order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// AddTask appends t. A duplicate id is refused.
func (s *Store) AddTask(ctx context.Context, t model.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.tasks, t.ID) >= 0 {
		s.log.Warn("duplicate task id refused", zap.String("id", t.ID))
		return false
	}
	s.tasks = append(s.tasks, t)
	s.persist(ctx, DocTasks)
	return true
}

// UpdateTask applies patch to the task with id. The id itself cannot change.
func (s *Store) UpdateTask(ctx context.Context, id string, patch func(*model.Task)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		return false
	}
	updated := s.tasks[i]
	patch(&updated)
	updated.ID = id
	s.tasks[i] = updated
	s.persist(ctx, DocTasks)
	return true
}

// ToggleDone flips the done flag and returns the new value.
func (s *Store) ToggleDone(ctx context.Context, id string) (done, ok bool) {
	ok = s.UpdateTask(ctx, id, func(t *model.Task) {
		t.Done = !t.Done
		done = t.Done
	})
	return done, ok
}

func (s *Store) RemoveTask(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		return false
	}
	s.tasks = without(s.tasks, i)
	s.persist(ctx, DocTasks)
	return true
}

// TasksByDay groups tasks by weekday, each group ordered by time of day.
func (s *Store) TasksByDay() map[model.Weekday][]model.Task {
	grouped := make(map[model.Weekday][]model.Task, len(model.Days))
	for _, t := range s.Tasks() {
		grouped[t.Day] = append(grouped[t.Day], t)
	}
	for day := range grouped {
		tasks := grouped[day]
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Time.MinuteOfDay() < tasks[j].Time.MinuteOfDay()
		})
	}
	return grouped
}
