package content

import "errors"

var (
	ErrReadingFile  = errors.New("could not read file")
	ErrListingPosts = errors.New("could not list posts directory")
	// markdown
	ErrMDConversion = errors.New("could not convert MD to HTML")
	// frontmatter
	ErrBadFrontMatter = errors.New("could not parse front matter")
)
