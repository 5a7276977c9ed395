// Package session owns the in-memory mirrors of the four document
// collections plus the current user's profile. It is the single writer to
// the document store: handlers read copies of the mirrored state and call
// back into the write operations below.
//
// The mirrors are eventually consistent with the store. Every committed
// batch triggers a change note, a watch goroutine re-reads the collection
// and replaces the whole slice. A read issued immediately after a write may
// therefore observe the previous state until that snapshot lands.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/crescendo-app/crescendo/internal/cache"
	"github.com/crescendo-app/crescendo/internal/docstore"
	"github.com/crescendo-app/crescendo/internal/model"
)

var (
	// ErrConcertLocked is returned by UpdateConcert when the target concert
	// is locked or already performed and the update touches its name, date
	// or pieces.
	ErrConcertLocked = errors.New("concert is locked")
	// ErrConcertNotFound is returned when no mirrored concert has the id.
	ErrConcertNotFound = errors.New("concert not found")
)

// Synchronizer bridges the in-memory state, the durable profile cache and
// the remote document store. Create one per process with New, call Start
// once, and Close on shutdown to release the watch subscriptions.
type Synchronizer struct {
	store *docstore.Store
	cache cache.ProfileCache

	mu       sync.RWMutex
	users    []model.User
	songs    []model.Song
	concerts []model.Concert
	taxonomy model.Taxonomy
	profile  model.User

	ready     chan struct{}
	readyOnce sync.Once
	releases  []func()
	closeOnce sync.Once
}

func New(store *docstore.Store, c cache.ProfileCache) *Synchronizer {
	return &Synchronizer{
		store:    store,
		cache:    c,
		taxonomy: model.Taxonomy{ID: model.TaxonomyID},
		profile:  DefaultProfile,
		ready:    make(chan struct{}),
	}
}

// Start runs the initialization protocol: the one-time clear step (gated by
// the durable marker), idempotent seeding of empty collections, one watch
// subscription per collection, and profile hydration from the cache. It is
// meant to be called exactly once per process.
func (s *Synchronizer) Start(ctx context.Context) error {
	if err := s.clearOnce(ctx); err != nil {
		return err
	}
	if err := s.seed(ctx); err != nil {
		return err
	}

	if err := s.watch(ctx, docstore.Users, s.applyUsers); err != nil {
		return err
	}
	if err := s.watch(ctx, docstore.Songs, s.applySongs); err != nil {
		return err
	}
	if err := s.watch(ctx, docstore.Concerts, s.applyConcerts); err != nil {
		return err
	}
	if err := s.watch(ctx, docstore.Taxonomy, s.applyTaxonomy); err != nil {
		return err
	}

	s.hydrateProfile(ctx)
	return nil
}

// WaitReady blocks until the first users snapshot has been applied, or the
// context is cancelled.
func (s *Synchronizer) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases every watch subscription. Safe to call more than once.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		for _, release := range s.releases {
			release()
		}
	})
}

// clearOnce performs the legacy one-time wipe of the three main collections
// before the very first seeding. The durable marker short-circuits it on
// every later startup; seeding itself still checks real emptiness and never
// trusts the marker alone.
func (s *Synchronizer) clearOnce(ctx context.Context) error {
	cleared, err := s.cache.Cleared(ctx)
	if err != nil {
		// When the marker cannot be read, assume the wipe already happened
		// rather than destroy data on a cache hiccup.
		log.Printf("session: read cleared marker: %v", err)
		return nil
	}
	if cleared {
		return nil
	}
	batch := s.store.NewBatch().
		Clear(docstore.Users).
		Clear(docstore.Songs).
		Clear(docstore.Concerts)
	if err := batch.Commit(ctx); err != nil {
		return err
	}
	if err := s.cache.MarkCleared(ctx); err != nil {
		log.Printf("session: persist cleared marker: %v", err)
	}
	return nil
}

// seed populates any empty collection with its default dataset in a single
// batch. Re-running against non-empty collections stages nothing, so record
// counts never grow from repeated initialization.
func (s *Synchronizer) seed(ctx context.Context) error {
	batch := s.store.NewBatch()

	n, err := s.store.Count(ctx, docstore.Users)
	if err != nil {
		return err
	}
	if n == 0 {
		for _, u := range defaultUsers {
			batch.Set(docstore.Users, u.ID, u)
		}
	}

	n, err = s.store.Count(ctx, docstore.Songs)
	if err != nil {
		return err
	}
	if n == 0 {
		for _, song := range defaultSongs {
			batch.Set(docstore.Songs, song.ID, song)
		}
	}

	n, err = s.store.Count(ctx, docstore.Concerts)
	if err != nil {
		return err
	}
	if n == 0 {
		for _, c := range defaultConcerts {
			batch.Set(docstore.Concerts, c.ID, c)
		}
	}

	n, err = s.store.Count(ctx, docstore.Taxonomy)
	if err != nil {
		return err
	}
	if n == 0 {
		batch.Set(docstore.Taxonomy, model.TaxonomyID, defaultTaxonomy)
	}

	if batch.Empty() {
		return nil
	}
	return batch.Commit(ctx)
}

func (s *Synchronizer) watch(ctx context.Context, collection string, apply func([]docstore.Document)) error {
	snaps, release, err := s.store.Watch(ctx, collection)
	if err != nil {
		s.Close()
		return err
	}
	s.releases = append(s.releases, release)
	go func() {
		for snap := range snaps {
			apply(snap.Docs)
		}
	}()
	return nil
}

func (s *Synchronizer) applyUsers(docs []docstore.Document) {
	users, err := docstore.Decode[model.User](docs)
	if err != nil {
		log.Printf("session: decode users snapshot: %v", err)
		return
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Synchronizer) applySongs(docs []docstore.Document) {
	songs, err := docstore.Decode[model.Song](docs)
	if err != nil {
		log.Printf("session: decode songs snapshot: %v", err)
		return
	}
	s.mu.Lock()
	s.songs = songs
	s.mu.Unlock()
}

func (s *Synchronizer) applyConcerts(docs []docstore.Document) {
	concerts, err := docstore.Decode[model.Concert](docs)
	if err != nil {
		log.Printf("session: decode concerts snapshot: %v", err)
		return
	}
	s.mu.Lock()
	s.concerts = concerts
	s.mu.Unlock()
}

func (s *Synchronizer) applyTaxonomy(docs []docstore.Document) {
	items, err := docstore.Decode[model.Taxonomy](docs)
	if err != nil {
		log.Printf("session: decode taxonomy snapshot: %v", err)
		return
	}
	s.mu.Lock()
	if len(items) > 0 {
		s.taxonomy = items[0]
	} else {
		s.taxonomy = model.Taxonomy{ID: model.TaxonomyID}
	}
	s.mu.Unlock()
}

func (s *Synchronizer) hydrateProfile(ctx context.Context) {
	cached, err := s.cache.Profile(ctx)
	if err != nil {
		log.Printf("session: load cached profile: %v", err)
	}
	s.mu.Lock()
	if cached != nil {
		s.profile = *cached
	} else {
		s.profile = DefaultProfile
	}
	s.mu.Unlock()
}

// ----- read models -----

func (s *Synchronizer) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Synchronizer) Songs() []model.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Song, len(s.songs))
	copy(out, s.songs)
	return out
}

func (s *Synchronizer) Concerts() []model.Concert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Concert, len(s.concerts))
	copy(out, s.concerts)
	return out
}

func (s *Synchronizer) Taxonomy() model.Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxonomy
}

func (s *Synchronizer) Profile() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// ----- write operations -----
//
// Remote write failures are logged and swallowed here: the operations
// resolve without surfacing an error so the UI stays responsive, and the
// user re-triggers the action if the write was lost. Handlers that want
// their own reporting add it on top.

// SetUsers replaces the full remote users collection with the given list in
// one atomic batch, one write per record.
func (s *Synchronizer) SetUsers(ctx context.Context, users []model.User) {
	batch := s.store.NewBatch()
	for _, u := range users {
		batch.Set(docstore.Users, u.ID, u)
	}
	if err := batch.Commit(ctx); err != nil {
		log.Printf("session: set users: %v", err)
	}
}

// SetSongs is the full-replace write: every remote song whose id is absent
// from the list is deleted, every song in the list is upserted, all in one
// batch. Used by flows that own the complete desired end-state.
func (s *Synchronizer) SetSongs(ctx context.Context, songs []model.Song) {
	s.fullReplace(ctx, docstore.Songs, func(batch *docstore.Batch, keep map[string]bool) {
		for _, song := range songs {
			keep[song.ID] = true
			batch.Set(docstore.Songs, song.ID, song)
		}
	})
}

// AddSongs upserts the given songs without touching unrelated records.
func (s *Synchronizer) AddSongs(ctx context.Context, songs []model.Song) {
	batch := s.store.NewBatch()
	for _, song := range songs {
		batch.Set(docstore.Songs, song.ID, song)
	}
	if err := batch.Commit(ctx); err != nil {
		log.Printf("session: add songs: %v", err)
	}
}

// SetConcerts has the same full-replace-by-diff semantics as SetSongs. It
// is the bulk path and deliberately ignores concert locks; the designated
// edit path is UpdateConcert.
func (s *Synchronizer) SetConcerts(ctx context.Context, concerts []model.Concert) {
	s.fullReplace(ctx, docstore.Concerts, func(batch *docstore.Batch, keep map[string]bool) {
		for _, c := range concerts {
			keep[c.ID] = true
			batch.Set(docstore.Concerts, c.ID, c)
		}
	})
}

func (s *Synchronizer) fullReplace(ctx context.Context, collection string, stage func(*docstore.Batch, map[string]bool)) {
	existing, err := s.store.ReadAll(ctx, collection)
	if err != nil {
		log.Printf("session: full replace %s: read existing: %v", collection, err)
		return
	}
	batch := s.store.NewBatch()
	keep := make(map[string]bool)
	stage(batch, keep)
	for _, doc := range existing {
		if !keep[doc.ID] {
			batch.Delete(collection, doc.ID)
		}
	}
	if err := batch.Commit(ctx); err != nil {
		log.Printf("session: full replace %s: %v", collection, err)
	}
}

// UserUpdate carries the partial fields merged by UpdateUser. Nil fields
// are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *string
	Password *string
}

// UpdateUser merges the partial fields into the current profile. The
// in-memory copy and the durable cache are updated first for responsiveness;
// the remote merge-write follows. A failed remote write is not rolled back —
// the local and remote copies may disagree until the next successful write.
func (s *Synchronizer) UpdateUser(ctx context.Context, update UserUpdate) model.User {
	s.mu.Lock()
	if update.Name != nil {
		s.profile.Name = *update.Name
	}
	if update.Email != nil {
		s.profile.Email = *update.Email
	}
	if update.Role != nil {
		s.profile.Role = *update.Role
	}
	if update.Password != nil {
		s.profile.Password = *update.Password
	}
	merged := s.profile
	s.mu.Unlock()

	if err := s.cache.SetProfile(ctx, merged.Sanitized()); err != nil {
		log.Printf("session: cache profile: %v", err)
	}
	if err := s.store.NewBatch().Set(docstore.Users, merged.ID, merged).Commit(ctx); err != nil {
		log.Printf("session: update user %s: %v", merged.ID, err)
	}
	return merged
}

// AdoptProfile makes the given user the current profile, persisting it to
// the durable cache. Called after login/signup.
func (s *Synchronizer) AdoptProfile(ctx context.Context, u model.User) {
	s.mu.Lock()
	s.profile = u
	s.mu.Unlock()
	if err := s.cache.SetProfile(ctx, u.Sanitized()); err != nil {
		log.Printf("session: cache profile: %v", err)
	}
}

// ConcertUpdate carries the partial fields accepted by UpdateConcert.
type ConcertUpdate struct {
	Name     *string
	Date     *time.Time
	Pieces   *[]model.Song
	IsLocked *bool
}

// UpdateConcert is the designated edit path for a single concert. A locked
// or past concert rejects changes to its name, date or pieces with
// ErrConcertLocked; toggling the lock itself is always allowed so a
// Director can unlock.
func (s *Synchronizer) UpdateConcert(ctx context.Context, id string, update ConcertUpdate) (model.Concert, error) {
	s.mu.RLock()
	var target *model.Concert
	for i := range s.concerts {
		if s.concerts[i].ID == id {
			c := s.concerts[i]
			target = &c
			break
		}
	}
	s.mu.RUnlock()
	if target == nil {
		return model.Concert{}, ErrConcertNotFound
	}

	touchesProgram := update.Name != nil || update.Date != nil || update.Pieces != nil
	if !target.Editable() && touchesProgram {
		return model.Concert{}, ErrConcertLocked
	}

	if update.Name != nil {
		target.Name = *update.Name
	}
	if update.Date != nil {
		target.Date = *update.Date
	}
	if update.Pieces != nil {
		target.Pieces = *update.Pieces
	}
	if update.IsLocked != nil {
		target.IsLocked = *update.IsLocked
	}

	if err := s.store.NewBatch().Set(docstore.Concerts, target.ID, *target).Commit(ctx); err != nil {
		log.Printf("session: update concert %s: %v", target.ID, err)
	}
	return *target, nil
}

// SetMusicTypes merge-updates the types field of the singleton taxonomy
// record.
func (s *Synchronizer) SetMusicTypes(ctx context.Context, types []string) {
	s.mu.RLock()
	tax := s.taxonomy
	s.mu.RUnlock()
	tax.ID = model.TaxonomyID
	tax.Types = types
	if err := s.store.NewBatch().Set(docstore.Taxonomy, model.TaxonomyID, tax).Commit(ctx); err != nil {
		log.Printf("session: set music types: %v", err)
	}
}

// SetMusicSubtypes merge-updates the subtypes field of the singleton
// taxonomy record.
func (s *Synchronizer) SetMusicSubtypes(ctx context.Context, subtypes []string) {
	s.mu.RLock()
	tax := s.taxonomy
	s.mu.RUnlock()
	tax.ID = model.TaxonomyID
	tax.Subtypes = subtypes
	if err := s.store.NewBatch().Set(docstore.Taxonomy, model.TaxonomyID, tax).Commit(ctx); err != nil {
		log.Printf("session: set music subtypes: %v", err)
	}
}
