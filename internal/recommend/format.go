package recommend

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/recommender/internal/catalog"
)

const (
	// DescriptionWords is how many words of a description a caption keeps
	DescriptionWords = 30

	// UnknownAuthor stands in for an authors field with no names
	UnknownAuthor = "Unknown Author"
)

// Recommendation is one gallery tile
type Recommendation struct {
	Image   string `json:"image" yaml:"image"`
	Caption string `json:"caption" yaml:"caption"`
}

// Format converts books into gallery tiles, preserving order
func Format(books []catalog.Book) []Recommendation {
	out := make([]Recommendation, 0, len(books))
	for _, b := range books {
		out = append(out, Recommendation{
			Image:   b.LargeThumbnail,
			Caption: Caption(b),
		})
	}
	return out
}

// Caption renders "{title} by {authors}: {truncated description}"
func Caption(b catalog.Book) string {
	return fmt.Sprintf("%s by %s: %s", b.Title, FormatAuthors(b.Authors), TruncateDescription(b.Description, DescriptionWords))
}

// TruncateDescription keeps the first n words joined by single spaces and appends "..."
func TruncateDescription(description string, n int) string {
	words := strings.Fields(description)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ") + "..."
}

// FormatAuthors joins a semicolon separated author list for display:
// "A and B" for two names, "A, B, and C" for more. A single name is
// returned unchanged.
func FormatAuthors(authors string) string {
	var names []string
	for _, name := range strings.Split(authors, ";") {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}

	switch len(names) {
	case 0:
		return UnknownAuthor
	case 1:
		if !strings.Contains(authors, ";") {
			return authors
		}
		return strings.TrimSpace(names[0])
	case 2:
		return fmt.Sprintf("%s and %s", names[0], names[1])
	default:
		last := len(names) - 1
		return fmt.Sprintf("%s, and %s", strings.Join(names[:last], ", "), names[last])
	}
}
