package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/repository"
)

func samplePayment(id string) model.Payment {
	return model.Payment{
		ID:          id,
		Description: "Luz " + id,
		Amount:      decimal.RequireFromString("45.9"),
		DueDate:     model.Date{Year: 2026, Month: time.October, Day: 20},
		Icon:        model.IconUtility,
		Recurrence:  model.RecurrenceMonthly,
	}
}

func sampleTask(id string) model.Task {
	return model.Task{
		ID:              id,
		Name:            "Gym " + id,
		Time:            model.ClockTime{Hour: 14},
		Day:             model.Monday,
		Icon:            model.IconGym,
		ReminderMinutes: 15,
		Recurrence:      model.RecurrenceWeekly,
	}
}

func newTestStore(t *testing.T) (*Store, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	store := NewStore(repo, zap.NewNop())
	store.Load(context.Background())
	return store, repo
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	require.True(t, store.AddPayment(ctx, samplePayment("p1")))
	require.True(t, store.AddPayment(ctx, samplePayment("p2")))
	require.True(t, store.SoftDeletePayment(ctx, "p2"))
	require.True(t, store.AddTask(ctx, sampleTask("t1")))

	reloaded := NewStore(repo, zap.NewNop())
	reloaded.Load(ctx)

	assert.Equal(t, store.Payments(), reloaded.Payments())
	assert.Equal(t, store.DeletedPayments(), reloaded.DeletedPayments())
	assert.Equal(t, store.Tasks(), reloaded.Tasks())
}

func TestStore_EmptyRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	require.True(t, store.AddTask(ctx, sampleTask("t1")))
	require.True(t, store.RemoveTask(ctx, "t1"))

	raw, err := repo.Load(ctx, DocTasks)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	reloaded := NewStore(repo, zap.NewNop())
	reloaded.Load(ctx)
	assert.Empty(t, reloaded.Tasks())
	assert.Empty(t, reloaded.Payments())
}

func TestStore_LoadMalformedDocument(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	require.NoError(t, repo.Save(ctx, DocPayments, []byte("{not json")))
	tasks, err := json.Marshal([]model.Task{sampleTask("t1")})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, DocTasks, tasks))

	store := NewStore(repo, zap.NewNop())
	store.Load(ctx)

	assert.Empty(t, store.Payments())
	assert.Len(t, store.Tasks(), 1)
}

func TestStore_UnavailableStorage(t *testing.T) {
	ctx := context.Background()
	store := NewStore(brokenRepository{}, zap.NewNop())
	store.Load(ctx)

	assert.Empty(t, store.Payments())
	// Writes fail, but the in-memory mutation stays.
	require.True(t, store.AddPayment(ctx, samplePayment("p1")))
	assert.Len(t, store.Payments(), 1)
}

func TestStore_SoftDeleteRestorePurge(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	original := samplePayment("p1")
	require.True(t, store.AddPayment(ctx, original))
	require.True(t, store.AddPayment(ctx, samplePayment("p2")))

	require.True(t, store.SoftDeletePayment(ctx, "p1"))
	assert.Equal(t, []model.Payment{samplePayment("p2")}, store.Payments())
	assert.Equal(t, []model.Payment{original}, store.DeletedPayments())

	require.True(t, store.RestorePayment(ctx, "p1"))
	assert.Empty(t, store.DeletedPayments())
	live := store.Payments()
	require.Len(t, live, 2)
	assert.Equal(t, original, live[1])

	require.True(t, store.SoftDeletePayment(ctx, "p1"))
	require.True(t, store.PurgeDeletedPayment(ctx, "p1"))
	assert.Empty(t, store.DeletedPayments())
	assert.Equal(t, []model.Payment{samplePayment("p2")}, store.Payments())

	assert.False(t, store.RestorePayment(ctx, "p1"), "purged payments are gone")
}

func TestStore_PurgeAllDeleted(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, store.AddPayment(ctx, samplePayment(id)))
		require.True(t, store.SoftDeletePayment(ctx, id))
	}

	assert.Equal(t, 3, store.PurgeAllDeleted(ctx))
	assert.Empty(t, store.DeletedPayments())
	assert.Empty(t, store.Payments())
}

func TestStore_UnknownIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.True(t, store.AddPayment(ctx, samplePayment("p1")))

	assert.False(t, store.UpdatePayment(ctx, "nope", func(p *model.Payment) { p.Paid = true }))
	assert.False(t, store.RemovePayment(ctx, "nope"))
	assert.False(t, store.SoftDeletePayment(ctx, "nope"))
	assert.False(t, store.RestorePayment(ctx, "nope"))
	assert.False(t, store.PurgeDeletedPayment(ctx, "nope"))
	assert.False(t, store.UpdateTask(ctx, "nope", func(t *model.Task) { t.Done = true }))
	assert.False(t, store.RemoveTask(ctx, "nope"))

	assert.Equal(t, []model.Payment{samplePayment("p1")}, store.Payments())
}

func TestStore_DuplicateIDsRefused(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.True(t, store.AddPayment(ctx, samplePayment("p1")))
	assert.False(t, store.AddPayment(ctx, samplePayment("p1")))

	require.True(t, store.SoftDeletePayment(ctx, "p1"))
	assert.False(t, store.AddPayment(ctx, samplePayment("p1")), "id still held by the bin")

	require.True(t, store.AddTask(ctx, sampleTask("t1")))
	assert.False(t, store.AddTask(ctx, sampleTask("t1")))
}

func TestStore_UpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.True(t, store.AddTask(ctx, sampleTask("t1")))

	require.True(t, store.UpdateTask(ctx, "t1", func(t *model.Task) {
		t.ID = "hijacked"
		t.Name = "Renamed"
	}))

	got, ok := store.Task("t1")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	_, ok = store.Task("hijacked")
	assert.False(t, ok)
}

func TestStore_Toggles(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.True(t, store.AddPayment(ctx, samplePayment("p1")))
	require.True(t, store.AddTask(ctx, sampleTask("t1")))

	paid, ok := store.TogglePaid(ctx, "p1")
	assert.True(t, ok)
	assert.True(t, paid)
	paid, _ = store.TogglePaid(ctx, "p1")
	assert.False(t, paid)

	done, ok := store.ToggleDone(ctx, "t1")
	assert.True(t, ok)
	assert.True(t, done)
}

func TestStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.True(t, store.AddTask(ctx, sampleTask("t1")))

	tasks := store.Tasks()
	tasks[0].Done = true

	got, _ := store.Task("t1")
	assert.False(t, got.Done)
}

func TestStore_PaidHistoryAndPendingTotal(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	older := samplePayment("old")
	older.DueDate = model.Date{Year: 2026, Month: time.September, Day: 1}
	older.Paid = true
	newer := samplePayment("new")
	newer.DueDate = model.Date{Year: 2026, Month: time.October, Day: 1}
	newer.Paid = true
	open1 := samplePayment("open1")
	open2 := samplePayment("open2")
	open2.Amount = decimal.RequireFromString("0.10")

	for _, p := range []model.Payment{older, newer, open1, open2} {
		require.True(t, store.AddPayment(ctx, p))
	}

	history := store.PaidHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "new", history[0].ID)
	assert.Equal(t, "old", history[1].ID)

	assert.True(t, store.PendingTotal().Equal(decimal.RequireFromString("46.00")))
}

func TestStore_PaymentsByDueDate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	dues := map[string]model.Date{
		"dec":    {Year: 2026, Month: time.December, Day: 1},
		"oct1":   {Year: 2026, Month: time.October, Day: 1},
		"oct20":  {Year: 2026, Month: time.October, Day: 20},
		"oct20b": {Year: 2026, Month: time.October, Day: 20},
	}
	for _, id := range []string{"dec", "oct20", "oct1", "oct20b"} {
		p := samplePayment(id)
		p.DueDate = dues[id]
		require.True(t, store.AddPayment(ctx, p))
	}

	var ids []string
	for _, p := range store.PaymentsByDueDate() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"oct1", "oct20", "oct20b", "dec"}, ids)

	assert.Equal(t, "dec", store.Payments()[0].ID, "collection order is untouched")
}

func TestStore_TasksByDay(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	late := sampleTask("late")
	late.Time = model.ClockTime{Hour: 20}
	early := sampleTask("early")
	early.Time = model.ClockTime{Hour: 7, Minute: 30}
	friday := sampleTask("friday")
	friday.Day = model.Friday

	for _, task := range []model.Task{late, early, friday} {
		require.True(t, store.AddTask(ctx, task))
	}

	grouped := store.TasksByDay()
	require.Len(t, grouped[model.Monday], 2)
	assert.Equal(t, "early", grouped[model.Monday][0].ID)
	assert.Equal(t, "late", grouped[model.Monday][1].ID)
	assert.Len(t, grouped[model.Friday], 1)
	assert.Empty(t, grouped[model.Sunday])
}
