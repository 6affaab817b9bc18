package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Loader scans the content directory and assembles snapshots. A scan either
// fully succeeds or returns an error; it never produces a partial snapshot.
type Loader struct {
	dir      string
	renderer *MarkDownRenderer
	logger   *slog.Logger
}

func NewLoader(dir string, renderer *MarkDownRenderer, logger *slog.Logger) *Loader {
	return &Loader{
		dir:      dir,
		renderer: renderer,
		logger:   logger,
	}
}

// PostsDir returns the directory holding the post sources.
func (l *Loader) PostsDir() string {
	return filepath.Join(l.dir, "posts")
}

// Load reads the four site fragments and the post index in one pass. The
// fragments are fetched concurrently; any I/O failure aborts the whole load.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.readFragment("banner.html", &snap.BannerHTML) })
	g.Go(func() error { return l.readFragment("layout.html", &snap.LayoutHTML) })
	g.Go(func() error { return l.readFragment("not_found.html", &snap.NotFoundHTML) })
	g.Go(func() error { return l.loadHome(&snap.HomeHTML) })
	g.Go(func() error {
		posts, err := l.loadPostIndex()
		if err != nil {
			return err
		}
		snap.Posts = posts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Refresh loads a fresh snapshot and installs it. On failure the previous
// snapshot stays in place and the error is only logged. Returns whether the
// swap happened.
func (l *Loader) Refresh(ctx context.Context, store *Store) bool {
	l.logger.Info("reloading content", "dir", l.dir)

	snap, err := l.Load(ctx)
	if err != nil {
		l.logger.Error("content reload failed, keeping previous snapshot", "err", err)
		return false
	}

	store.Replace(snap)
	l.logger.Info("content reloaded", "posts", len(snap.Posts))
	return true
}

func (l *Loader) readFragment(name string, dst *string) error {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrReadingFile, name, err)
	}
	*dst = string(data)
	return nil
}

// loadHome prefers home.md, rendering its body through the Markdown pipeline
// with any front matter stripped and discarded. A plain home.html is served
// verbatim.
func (l *Loader) loadHome(dst *string) error {
	mdPath := filepath.Join(l.dir, "home.md")
	data, err := os.ReadFile(mdPath)
	if err != nil {
		if os.IsNotExist(err) {
			return l.readFragment("home.html", dst)
		}
		return fmt.Errorf("%w: home.md: %v", ErrReadingFile, err)
	}

	_, body, fmErr := ParsePost(data)
	if fmErr != nil {
		l.logger.Error("home front matter parse failed", "err", fmErr)
	}

	html, err := l.renderer.Render(body)
	if err != nil {
		return err
	}
	*dst = string(html)
	return nil
}

// loadPostIndex enumerates content/posts and builds the index from each
// file's front matter. Entries keep raw directory order; the filesystem's
// iteration order is deliberately not sorted away.
func (l *Loader) loadPostIndex() ([]Post, error) {
	dir, err := os.Open(l.PostsDir())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingPosts, err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingPosts, err)
	}

	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(l.PostsDir(), entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadingFile, entry.Name(), err)
		}

		fm, _, fmErr := ParsePost(data)
		if fmErr != nil {
			l.logger.Error("front matter parse failed", "file", entry.Name(), "err", fmErr)
		}

		switch {
		case fm == nil:
			// no front matter block at all
			posts = append(posts, Post{Title: "Error", Slug: "error"})
		default:
			posts = append(posts, Post{Title: fm.Title, Slug: fm.Slug})
		}
	}

	return posts, nil
}
