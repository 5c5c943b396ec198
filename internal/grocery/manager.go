package grocery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

// maxIDAttempts bounds id regeneration before Add gives up with ErrDuplicateID.
const maxIDAttempts = 16

// Persister is the durable side of the item list. SaveAll receives the full
// ordered list after every successful mutation.
type Persister interface {
	LoadAll(ctx context.Context) ([]model.GroceryItem, error)
	SaveAll(ctx context.Context, items []model.GroceryItem) error
}

// Listener receives the full ordered item list.
type Listener func(items []model.GroceryItem)

// Option configures a Manager.
type Option func(*Manager)

// WithPersister makes every mutation durable before it is reported as done.
func WithPersister(p Persister) Option {
	return func(m *Manager) { m.persister = p }
}

// WithLogger sets the logger for mutation and load events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithIDGenerator overrides the random id source.
func WithIDGenerator(next func() int64) Option {
	return func(m *Manager) { m.nextID = next }
}

// WithAutoCategorize fills an empty category on Add from Categorize.
func WithAutoCategorize(enabled bool) Option {
	return func(m *Manager) { m.autoCategorize = enabled }
}

// Manager is the single entry point for item mutations. It keeps the store,
// the optional persister and the live view consistent and owns the one-step
// undo slot.
//
// Mutations are serialized. Items and Search read an immutable snapshot and
// never block. Listeners are called in mutation order and must not call
// mutating methods synchronously.
type Manager struct {
	mu         sync.Mutex // serializes mutations
	dispatchMu sync.Mutex // orders listener delivery

	store          ItemStore
	persister      Persister
	logger         *slog.Logger
	nextID         func() int64
	autoCategorize bool

	snapshot    atomic.Pointer[[]model.GroceryItem]
	lastDeleted *model.GroceryItem

	subsMu    sync.Mutex
	subs      map[int]Listener
	nextSubID int
}

// NewManager creates a Manager over store. The live view starts from the
// store's current contents; call Load to pull from a persister.
func NewManager(store ItemStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: slog.Default(),
		nextID: randomID,
		subs:   make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	items := store.List()
	m.snapshot.Store(&items)
	return m
}

func randomID() int64 {
	return rand.Int64N(math.MaxInt32) + 1
}

// Load replaces the store contents with the persister's items.
func (m *Manager) Load(ctx context.Context) error {
	if m.persister == nil {
		return nil
	}

	m.mu.Lock()
	items, err := m.persister.LoadAll(ctx)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("load items: %w", err)
	}
	if err := m.store.Reset(items); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("load items: %w", err)
	}
	m.logger.Info("items loaded", "count", len(items))
	m.publishLocked()
	return nil
}

// Items returns the current live view.
func (m *Manager) Items() []model.GroceryItem {
	return cloneItems(*m.snapshot.Load())
}

// Search returns the live view filtered by query.
func (m *Manager) Search(query string) []model.GroceryItem {
	return Filter(m.Items(), query)
}

// Get returns the live record for id.
func (m *Manager) Get(id int64) (model.GroceryItem, bool) {
	return findItem(*m.snapshot.Load(), id)
}

// Subscribe registers fn and immediately delivers the current list to it.
// The returned func unregisters fn; it is safe to call more than once.
func (m *Manager) Subscribe(fn Listener) func() {
	m.dispatchMu.Lock()
	m.subsMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.subsMu.Unlock()
	fn(m.Items())
	m.dispatchMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

// Add validates item, assigns an id if it has none and stores it.
func (m *Manager) Add(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error) {
	m.mu.Lock()
	item, err := m.addLocked(ctx, m.suggestCategory(item))
	if err != nil {
		m.mu.Unlock()
		return model.GroceryItem{}, err
	}
	m.publishLocked()
	return item, nil
}

func (m *Manager) addLocked(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error) {
	item, err := normalize(item)
	if err != nil {
		return model.GroceryItem{}, err
	}

	if item.ID == 0 {
		id, err := m.generateIDLocked()
		if err != nil {
			return model.GroceryItem{}, err
		}
		item.ID = id
	}

	err = m.mutateLocked(ctx, func() error { return m.store.Add(item) })
	if err != nil {
		return model.GroceryItem{}, fmt.Errorf("add item: %w", err)
	}
	m.logger.Debug("item added", "id", item.ID, "name", item.Name)
	return item, nil
}

// Update replaces the stored record that has item's id.
func (m *Manager) Update(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error) {
	m.mu.Lock()
	item, err := m.updateLocked(ctx, item)
	if err != nil {
		m.mu.Unlock()
		return model.GroceryItem{}, err
	}
	m.publishLocked()
	return item, nil
}

func (m *Manager) updateLocked(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error) {
	item, err := normalize(item)
	if err != nil {
		return model.GroceryItem{}, err
	}

	err = m.mutateLocked(ctx, func() error { return m.store.Update(item) })
	if err != nil {
		m.logMiss("update", item.ID, err)
		return model.GroceryItem{}, fmt.Errorf("update item: %w", err)
	}
	m.logger.Debug("item updated", "id", item.ID)
	return item, nil
}

// ToggleBought flips the bought flag of the item with id.
func (m *Manager) ToggleBought(ctx context.Context, id int64) (model.GroceryItem, error) {
	m.mu.Lock()
	current, ok := findItem(m.store.List(), id)
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("toggle missing item", "id", id)
		return model.GroceryItem{}, fmt.Errorf("toggle item %d: %w", id, ErrNotFound)
	}
	current.IsBought = !current.IsBought
	item, err := m.updateLocked(ctx, current)
	if err != nil {
		m.mu.Unlock()
		return model.GroceryItem{}, err
	}
	m.publishLocked()
	return item, nil
}

// Delete removes the item with id without touching the undo slot.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	if err := m.deleteLocked(ctx, id); err != nil {
		m.mu.Unlock()
		return err
	}
	m.publishLocked()
	return nil
}

func (m *Manager) deleteLocked(ctx context.Context, id int64) error {
	err := m.mutateLocked(ctx, func() error { return m.store.Delete(id) })
	if err != nil {
		m.logMiss("delete", id, err)
		return fmt.Errorf("delete item: %w", err)
	}
	m.logger.Debug("item deleted", "id", id)
	return nil
}

// DeleteWithUndo removes the item with id and keeps it in the undo slot,
// replacing whatever deletion was pending before.
func (m *Manager) DeleteWithUndo(ctx context.Context, id int64) (model.GroceryItem, error) {
	m.mu.Lock()
	current, ok := findItem(m.store.List(), id)
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("delete missing item", "id", id)
		return model.GroceryItem{}, fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}

	prev := m.lastDeleted
	m.lastDeleted = &current
	if err := m.deleteLocked(ctx, id); err != nil {
		m.lastDeleted = prev
		m.mu.Unlock()
		return model.GroceryItem{}, err
	}
	m.publishLocked()
	return current, nil
}

// UndoDelete restores the pending deletion, if any, under its original id.
// With nothing pending it reports false and no error.
func (m *Manager) UndoDelete(ctx context.Context) (model.GroceryItem, bool, error) {
	m.mu.Lock()
	if m.lastDeleted == nil {
		m.mu.Unlock()
		return model.GroceryItem{}, false, nil
	}

	pending := *m.lastDeleted
	m.lastDeleted = nil
	item, err := m.addLocked(ctx, pending)
	if err != nil {
		m.lastDeleted = &pending
		m.mu.Unlock()
		return model.GroceryItem{}, false, fmt.Errorf("undo delete: %w", err)
	}
	m.logger.Debug("delete undone", "id", item.ID)
	m.publishLocked()
	return item, true, nil
}

// PendingUndo reports the record held in the undo slot.
func (m *Manager) PendingUndo() (model.GroceryItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastDeleted == nil {
		return model.GroceryItem{}, false
	}
	return *m.lastDeleted, true
}

// NewID returns an id that no live item or pending undo uses. Add flows take
// one when they open so the record they hand back is keyed from the start.
func (m *Manager) NewID() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateIDLocked()
}

// HandleReturnedItem merges a record produced by an add or edit flow: an
// existing id is updated, any other id is added. The record must carry an
// id (see NewID), which makes handing the same record back twice harmless.
func (m *Manager) HandleReturnedItem(ctx context.Context, item model.GroceryItem) (model.GroceryItem, error) {
	if item.ID <= 0 {
		return model.GroceryItem{}, &ValidationError{Field: "id", Reason: "must be assigned before the record is returned"}
	}

	m.mu.Lock()
	var err error
	if _, ok := findItem(m.store.List(), item.ID); ok {
		item, err = m.updateLocked(ctx, item)
	} else {
		item, err = m.addLocked(ctx, m.suggestCategory(item))
	}
	if err != nil {
		m.mu.Unlock()
		return model.GroceryItem{}, err
	}
	m.publishLocked()
	return item, nil
}

// ReplaceAll swaps the whole list, for example after restoring a backup.
// The undo slot is cleared.
func (m *Manager) ReplaceAll(ctx context.Context, items []model.GroceryItem) error {
	next := make([]model.GroceryItem, len(items))
	for i, item := range items {
		n, err := normalize(item)
		if err != nil {
			return fmt.Errorf("replace items: item %d: %w", item.ID, err)
		}
		if n.ID == 0 {
			return fmt.Errorf("replace items: %w", &ValidationError{Field: "id", Reason: "must be set"})
		}
		next[i] = n
	}

	m.mu.Lock()
	prev := m.lastDeleted
	m.lastDeleted = nil
	if err := m.mutateLocked(ctx, func() error { return m.store.Reset(next) }); err != nil {
		m.lastDeleted = prev
		m.mu.Unlock()
		return fmt.Errorf("replace items: %w", err)
	}
	m.logger.Info("items replaced", "count", len(next))
	m.publishLocked()
	return nil
}

// mutateLocked applies fn to the store and then persists the result. If the
// persister fails, the store is rolled back.
func (m *Manager) mutateLocked(ctx context.Context, fn func() error) error {
	before := m.store.List()
	if err := fn(); err != nil {
		return err
	}
	if m.persister == nil {
		return nil
	}
	if err := m.persister.SaveAll(ctx, m.store.List()); err != nil {
		if rerr := m.store.Reset(before); rerr != nil {
			m.logger.Error("rollback failed", "error", rerr)
		}
		m.logger.Error("persist items", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// publishLocked stores a fresh snapshot, hands the dispatch lock over and
// releases m.mu before calling listeners.
func (m *Manager) publishLocked() {
	items := m.store.List()
	m.snapshot.Store(&items)

	m.dispatchMu.Lock()
	m.mu.Unlock()
	defer m.dispatchMu.Unlock()

	m.subsMu.Lock()
	listeners := make([]Listener, 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range listeners {
		fn(cloneItems(items))
	}
}

func (m *Manager) generateIDLocked() (int64, error) {
	live := m.store.List()
	for range maxIDAttempts {
		id := m.nextID()
		if id <= 0 {
			continue
		}
		if _, taken := findItem(live, id); taken {
			continue
		}
		if m.lastDeleted != nil && m.lastDeleted.ID == id {
			continue
		}
		return id, nil
	}
	return 0, fmt.Errorf("generate id: %w", ErrDuplicateID)
}

// suggestCategory fills a blank category when auto-categorization is on.
// Undo never goes through here so restored records keep their exact fields.
func (m *Manager) suggestCategory(item model.GroceryItem) model.GroceryItem {
	if m.autoCategorize && strings.TrimSpace(item.Category) == "" {
		item.Category = Categorize(item.Name)
	}
	return item
}

func (m *Manager) logMiss(op string, id int64, err error) {
	if errors.Is(err, ErrNotFound) {
		m.logger.Warn(op+" missing item", "id", id)
	}
}

// normalize trims text fields and checks the item invariants.
func normalize(item model.GroceryItem) (model.GroceryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	if item.Name == "" {
		return item, &ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if item.Quantity < 1 {
		return item, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if item.ID < 0 {
		return item, &ValidationError{Field: "id", Reason: "must not be negative"}
	}
	return item, nil
}

func findItem(items []model.GroceryItem, id int64) (model.GroceryItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return model.GroceryItem{}, false
}

func cloneItems(items []model.GroceryItem) []model.GroceryItem {
	out := make([]model.GroceryItem, len(items))
	copy(out, items)
	return out
}
