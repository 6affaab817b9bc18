package content

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"strings"
	"unicode/utf8"

	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type MarkDownRenderer struct {
	engine goldmark.Markdown
}

func NewMarkDownRenderer() *MarkDownRenderer {
	engine := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
			emoji.Emoji,
			mathjax.MathJax,
			highlighting.NewHighlighting(
				// Common themes: "monokai", "dracula", "github", "solarized-dark"
				highlighting.WithStyle("solarized-dark"),
				highlighting.WithGuessLanguage(true),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&mathHTMLRenderer{}, 100),
			),
		),
	)
	return &MarkDownRenderer{engine: engine}
}

// Render converts Markdown to HTML. Math delimiters are normalized first so
// the parser's math extension only ever sees the $ and $$ forms.
func (m *MarkDownRenderer) Render(source []byte) ([]byte, error) {
	normalized := NormalizeMathDelimiters(string(source))

	var buf bytes.Buffer
	// the rendered HTML runs noticeably larger than its source
	buf.Grow(len(normalized) + (len(normalized) / 2))

	if err := m.engine.Convert([]byte(normalized), &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMDConversion, err)
	}

	return bytes.Clone(buf.Bytes()), nil
}

func (m *MarkDownRenderer) RenderString(source string) (string, error) {
	out, err := m.Render([]byte(source))
	return string(out), err
}

// NormalizeMathDelimiters rewrites the LaTeX bracket delimiters \(...\) and
// \[...\] to the $ and $$ forms. An inline \(...\) whose content spans a
// newline becomes display math. Display math is emitted as a fenced block,
// with each $$ on its own line: the block parser discards anything sharing a
// line with the opening fence and only closes on a bare $$ line. An opener
// with no matching close is copied through literally. The function is
// idempotent over its own output.
func NormalizeMathDelimiters(input string) string {
	var out strings.Builder
	out.Grow(len(input))

	i := 0
	for i < len(input) {
		if open, closing, display, ok := mathDelimiterAt(input, i); ok {
			contentStart := i + len(open)
			if at := strings.Index(input[contentStart:], closing); at >= 0 {
				inner := input[contentStart : contentStart+at]
				rest := input[contentStart+at+len(closing):]
				if display || strings.Contains(inner, "\n") {
					if s := out.String(); s != "" && !strings.HasSuffix(s, "\n") {
						out.WriteByte('\n')
					}
					out.WriteString("$$\n")
					if trimmed := strings.Trim(inner, "\n"); trimmed != "" {
						out.WriteString(trimmed)
						out.WriteByte('\n')
					}
					out.WriteString("$$")
					if rest != "" && !strings.HasPrefix(rest, "\n") {
						out.WriteByte('\n')
					}
				} else {
					out.WriteByte('$')
					out.WriteString(inner)
					out.WriteByte('$')
				}
				i = contentStart + at + len(closing)
				continue
			}
		}

		r, size := utf8.DecodeRuneInString(input[i:])
		if size == 0 {
			break
		}
		out.WriteRune(r)
		i += size
	}

	return out.String()
}

func mathDelimiterAt(input string, index int) (open, closing string, display, ok bool) {
	tail := input[index:]
	switch {
	case strings.HasPrefix(tail, `\(`):
		return `\(`, `\)`, false, true
	case strings.HasPrefix(tail, `\[`):
		return `\[`, `\]`, true, true
	default:
		return "", "", false, false
	}
}

// mathHTMLRenderer replaces the mathjax extension's default output with KaTeX
// compatible spans. The math source is emitted escaped but otherwise
// untouched; the TeX itself renders client side, which is also the documented
// fallback when no server side renderer is available.
type mathHTMLRenderer struct{}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(mathjax.KindInlineMath, r.renderInlineMath)
	reg.Register(mathjax.KindMathBlock, r.renderMathBlock)
}

func (r *mathHTMLRenderer) renderInlineMath(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString(`</span>`)
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<span class="math math-inline">`)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			_, _ = w.WriteString(stdhtml.EscapeString(string(t.Segment.Value(source))))
		}
	}
	return ast.WalkSkipChildren, nil
}

func (r *mathHTMLRenderer) renderMathBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</span>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<span class="math math-display">`)
	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		_, _ = w.WriteString(stdhtml.EscapeString(string(line.Value(source))))
	}
	return ast.WalkContinue, nil
}
