package content

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the YAML block at the top of a post file. Date is display
// text only and is never parsed.
type FrontMatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
	Slug  string `yaml:"slug"`
}

// sentinelFrontMatter stands in for a block that failed to parse so one
// malformed file never takes the whole site down.
func sentinelFrontMatter() *FrontMatter {
	return &FrontMatter{Title: "Error", Date: "Error", Slug: "Error"}
}

// ParsePost splits a post file into its front matter and Markdown body.
//
// A file without a leading "---" fence has no front matter: the record is nil
// and the body is the whole file. A fenced but malformed block yields the
// sentinel record, whatever body could be recovered, and a non-nil error for
// the caller to log.
func ParsePost(data []byte) (*FrontMatter, []byte, error) {
	if !bytes.HasPrefix(data, []byte("---")) {
		return nil, data, nil
	}

	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return sentinelFrontMatter(), recoverBody(data), fmt.Errorf("%w: %v", ErrBadFrontMatter, err)
	}
	return &fm, body, nil
}

// recoverBody returns whatever follows the closing fence of a front matter
// block the YAML decoder choked on.
func recoverBody(data []byte) []byte {
	rest, ok := bytes.CutPrefix(data, []byte("---"))
	if !ok {
		return data
	}
	if at := bytes.Index(rest, []byte("\n---")); at >= 0 {
		after := rest[at+len("\n---"):]
		if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
			return after[nl+1:]
		}
		return nil
	}
	return data
}
