package handlers

import (
	stdhtml "html"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"liveblog/internal/content"
)

// BlogHandler serves the read-only pages. It only ever reads one snapshot per
// request; the post endpoint additionally reads the post file itself, which
// is re-rendered on every hit rather than cached.
type BlogHandler struct {
	Store    *content.Store
	Renderer *content.MarkDownRenderer
	PostsDir string
	Logger   *slog.Logger
}

func NewBlogHandler(store *content.Store, renderer *content.MarkDownRenderer, postsDir string, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{
		Store:    store,
		Renderer: renderer,
		PostsDir: postsDir,
		Logger:   logger,
	}
}

// HandleHome renders the homepage purely from the in-memory snapshot.
func (h *BlogHandler) HandleHome() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := h.Store.Snapshot()

		page := RenderPage(snap.LayoutHTML, snap.BannerHTML, snap.HomeHTML, snap.Posts, h.Store.IsDevelopment())
		writeHTML(w, page)
	})
}

// HandlePost renders a single post from content/posts/{slug}.md. A missing
// file renders the not-found fragment, still with HTTP 200.
func (h *BlogHandler) HandlePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		snap := h.Store.Snapshot()

		data, err := h.readPost(slug)
		if err != nil {
			// missing posts are routine, not worth an error-level entry
			h.Logger.Debug("post not found", "slug", slug, "err", err)

			// The slug is caller-controlled URL input, so unlike the
			// authored fragments it gets escaped before substitution.
			body := strings.ReplaceAll(snap.NotFoundHTML, "{{slug}}", stdhtml.EscapeString(slug))
			writeHTML(w, RenderPage(snap.LayoutHTML, snap.BannerHTML, body, snap.Posts, h.Store.IsDevelopment()))
			return
		}

		fm, mdBody, fmErr := content.ParsePost(data)
		if fmErr != nil {
			h.Logger.Error("front matter parse failed", "slug", slug, "err", fmErr)
		}

		rendered, err := h.Renderer.Render(mdBody)
		if err != nil {
			h.Logger.Error("markdown render failed", "slug", slug, "err", err)
		}

		var body strings.Builder
		if fm == nil {
			body.WriteString("<h1>Error: No Front Matter</h1>")
		} else {
			body.WriteString("<h1>")
			body.WriteString(fm.Title)
			body.WriteString(`</h1><p style="font-size: smaller; color: #888;">`)
			body.WriteString(fm.Date)
			body.WriteString("</p>")
		}
		body.Write(rendered)

		writeHTML(w, RenderPage(snap.LayoutHTML, snap.BannerHTML, body.String(), snap.Posts, h.Store.IsDevelopment()))
	})
}

// readPost opens the post file relative to the posts directory, so a slug can
// never escape it.
func (h *BlogHandler) readPost(slug string) ([]byte, error) {
	file, err := os.OpenInRoot(h.PostsDir, slug+".md")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, page)
}
