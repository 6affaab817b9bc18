package content

import "sync/atomic"

// Post is a homepage index entry. The post body is never cached here, it is
// re-read and re-rendered per request.
type Post struct {
	Title string
	Slug  string
}

// Snapshot is one coherent set of rendered site fragments plus the post
// index. A Snapshot is immutable once installed: every field comes from the
// same disk scan.
type Snapshot struct {
	BannerHTML   string
	LayoutHTML   string
	HomeHTML     string
	NotFoundHTML string
	Posts        []Post
}

// Store holds the snapshot currently being served. Readers take the whole
// snapshot with one atomic load, writers swap it wholesale, so no reader can
// ever observe fields from mixed load cycles.
type Store struct {
	snap          atomic.Pointer[Snapshot]
	isDevelopment bool
}

func NewStore(initial *Snapshot, isDevelopment bool) *Store {
	s := &Store{isDevelopment: isDevelopment}
	s.snap.Store(initial)
	return s
}

// Snapshot returns the current snapshot. Callers must not mutate it.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Replace installs a new snapshot. It becomes visible to all subsequent
// readers at once.
func (s *Store) Replace(snap *Snapshot) {
	s.snap.Store(snap)
}

func (s *Store) IsDevelopment() bool {
	return s.isDevelopment
}
