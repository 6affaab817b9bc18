package handlers

import (
	"fmt"
	"strings"

	"liveblog/internal/content"
)

// hotReloadScript is injected just before </body> in development mode. The
// server sends exactly one "reload" frame per content change.
const hotReloadScript = `
<script>
    const socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = (event) => {
        if (event.data === "reload") {
            window.location.reload();
        }
    };
</script>
`

// RenderPage fills the layout's placeholders by literal string replacement.
// There is no template engine and no escaping: the fragments are authored,
// trusted HTML. Placeholders missing from the layout are simply left alone,
// and unknown placeholders pass through unchanged.
func RenderPage(layout, banner, body string, posts []content.Post, isDevelopment bool) string {
	var items strings.Builder
	for _, post := range posts {
		fmt.Fprintf(&items,
			`<li><a href="/posts/%s" class="text-blue no-underline">%s</a></li>`,
			post.Slug, post.Title,
		)
	}

	page := strings.ReplaceAll(layout, "{{ banner }}", banner)
	page = strings.ReplaceAll(page, "{{ content }}", body)
	page = strings.ReplaceAll(page, "{{ posts }}", items.String())

	if isDevelopment {
		page = strings.ReplaceAll(page, "</body>", hotReloadScript+"</body>")
	}

	return page
}
