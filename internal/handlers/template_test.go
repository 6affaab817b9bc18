package handlers

import (
	"strings"
	"testing"

	"liveblog/internal/content"
)

func TestRenderPageSubstitutesPlaceholders(t *testing.T) {
	t.Parallel()

	layout := `<html><body>{{ banner }}<main>{{ content }}</main><ul>{{ posts }}</ul></body></html>`
	posts := []content.Post{
		{Title: "First", Slug: "first"},
		{Title: "Second", Slug: "second"},
	}

	page := RenderPage(layout, "<header>Blog</header>", "<p>hi</p>", posts, false)

	for _, want := range []string{
		"<header>Blog</header>",
		"<p>hi</p>",
		`<li><a href="/posts/first" class="text-blue no-underline">First</a></li>`,
		`<li><a href="/posts/second" class="text-blue no-underline">Second</a></li>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "{{") {
		t.Errorf("page still contains a placeholder:\n%s", page)
	}
}

func TestRenderPageLeavesUnknownPlaceholders(t *testing.T) {
	t.Parallel()

	page := RenderPage("<p>{{ sidebar }}</p>", "", "", nil, false)
	if page != "<p>{{ sidebar }}</p>" {
		t.Errorf("unknown placeholder should pass through, got %q", page)
	}
}

func TestRenderPageDoesNotEscapeFragments(t *testing.T) {
	t.Parallel()

	page := RenderPage("{{ content }}", "", `<script>let x = 1 < 2;</script>`, nil, false)
	if page != `<script>let x = 1 < 2;</script>` {
		t.Errorf("fragments must be substituted verbatim, got %q", page)
	}
}

func TestRenderPageInjectsReloadScriptInDevelopment(t *testing.T) {
	t.Parallel()

	layout := "<html><body>{{ content }}</body></html>"

	dev := RenderPage(layout, "", "x", nil, true)
	if !strings.Contains(dev, "new WebSocket") {
		t.Error("development page is missing the reload script")
	}
	if !strings.Contains(dev, hotReloadScript+"</body>") {
		t.Error("reload script should sit immediately before </body>")
	}

	prod := RenderPage(layout, "", "x", nil, false)
	if strings.Contains(prod, "new WebSocket") {
		t.Error("production page must not carry the reload script")
	}
}

func TestRenderPageEmptyPostsYieldsNoItems(t *testing.T) {
	t.Parallel()

	page := RenderPage("<ul>{{ posts }}</ul>", "", "", nil, false)
	if page != "<ul></ul>" {
		t.Errorf("expected empty list, got %q", page)
	}
}
