package booking

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zekroTJA/timedmap"

	"github.com/staynest/staynest-api/internal/domain/property"
)

// draftSchemaVersion tags persisted drafts; other versions load as a miss
const draftSchemaVersion = 1

const persistTimeout = 5 * time.Second

// Storage is the encrypted key-value store drafts are mirrored to
type Storage interface {
	SetItemFor(ctx context.Context, key string, value any, ttl time.Duration) error
	GetItem(ctx context.Context, key string, dst any) bool
	RemoveItem(ctx context.Context, key string) error
}

type persistedDraft struct {
	Version  int                `json:"version"`
	CheckIn  string             `json:"check_in,omitempty"`
	CheckOut string             `json:"check_out,omitempty"`
	Guests   int                `json:"guests"`
	Property *property.Snapshot `json:"property,omitempty"`
}

func toPersisted(d Draft) persistedDraft {
	p := persistedDraft{Version: draftSchemaVersion, Guests: d.Guests, Property: d.Property}
	if d.CheckIn != nil {
		p.CheckIn = d.CheckIn.Format(DateLayout)
	}
	if d.CheckOut != nil {
		p.CheckOut = d.CheckOut.Format(DateLayout)
	}
	return p
}

func (p persistedDraft) draft() (Draft, bool) {
	if p.Version != draftSchemaVersion || p.Guests < 1 {
		return Draft{}, false
	}
	d := Draft{Guests: p.Guests, Property: p.Property}
	if p.CheckIn != "" {
		t, err := ParseDate(p.CheckIn)
		if err != nil {
			return Draft{}, false
		}
		d.CheckIn = &t
	}
	if p.CheckOut != "" {
		t, err := ParseDate(p.CheckOut)
		if err != nil {
			return Draft{}, false
		}
		d.CheckOut = &t
	}
	return d, true
}

// DraftStore holds one owner's draft in memory and mirrors it to Storage.
// The in-memory draft is authoritative; persistence is best effort.
type DraftStore struct {
	key     string
	storage Storage
	ttl     time.Duration

	mu      sync.RWMutex
	draft   Draft
	version uint64

	persistMu sync.Mutex
	inflight  sync.WaitGroup
}

// NewDraftStore creates an empty store persisted under key
func NewDraftStore(key string, storage Storage, ttl time.Duration) *DraftStore {
	return &DraftStore{key: key, storage: storage, ttl: ttl, draft: NewDraft()}
}

// Key returns the storage key of the store
func (s *DraftStore) Key() string { return s.key }

// Init restores a persisted draft. It reports whether one was found;
// a draft edited before Init returns is never overwritten.
func (s *DraftStore) Init(ctx context.Context) bool {
	var p persistedDraft
	if !s.storage.GetItem(ctx, s.key, &p) {
		return false
	}
	d, ok := p.draft()
	if !ok {
		log.Debug().Str("key", s.key).Int("version", p.Version).Msg("Discarding incompatible saved draft")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != 0 {
		return false
	}
	s.draft = d
	return true
}

// Snapshot returns a copy of the current draft
func (s *DraftStore) Snapshot() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Clone()
}

// Update merges patch into the draft and schedules persistence.
// A rejected patch leaves the draft unchanged.
func (s *DraftStore) Update(ctx context.Context, patch DraftPatch) (Draft, error) {
	s.mu.Lock()
	next, err := patch.apply(s.draft)
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	s.draft = next
	s.version++
	version := s.version
	out := next.Clone()
	s.mu.Unlock()

	s.persist(ctx, version, toPersisted(out))
	return out, nil
}

// Clear resets the draft to empty and deletes the persisted copy
func (s *DraftStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.draft = NewDraft()
	s.version++
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.storage.RemoveItem(context.WithoutCancel(ctx), s.key); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("Storage persistence failed")
	}
}

// Wait blocks until scheduled persistence has finished
func (s *DraftStore) Wait() {
	s.inflight.Wait()
}

func (s *DraftStore) persist(ctx context.Context, version uint64, payload persistedDraft) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()

		s.persistMu.Lock()
		defer s.persistMu.Unlock()

		// a newer update or a clear already owns the persisted copy
		if !s.isCurrent(version) {
			return
		}
		if err := s.storage.SetItemFor(ctx, s.key, payload, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", s.key).Msg("Storage persistence failed")
		}
	}()
}

func (s *DraftStore) isCurrent(version uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version == version
}

// Drafts hands out one DraftStore per owner, created and restored on first use.
// Idle stores are evicted after ttl; their persisted copies remain.
type Drafts struct {
	storage Storage
	ttl     time.Duration

	mu     sync.Mutex
	stores *timedmap.TimedMap
}

// NewDrafts creates a registry persisting to storage with the given draft TTL
func NewDrafts(storage Storage, ttl time.Duration) *Drafts {
	return &Drafts{
		storage: storage,
		ttl:     ttl,
		stores:  timedmap.New(time.Minute),
	}
}

// For returns the store of owner, restoring it from storage if needed
func (d *Drafts) For(ctx context.Context, owner string) *DraftStore {
	key := "draft:" + owner

	d.mu.Lock()
	defer d.mu.Unlock()

	store, ok := d.stores.GetValue(key).(*DraftStore)
	if !ok {
		store = NewDraftStore(key, d.storage, d.ttl)
		store.Init(ctx)
	}
	d.stores.Set(key, store, d.ttl)
	return store
}

// Close stops the eviction loop
func (d *Drafts) Close() {
	d.stores.StopCleaner()
}
