package recommend

import (
	"cmp"
	"slices"

	"github.com/lehigh-university-libraries/recommender/internal/catalog"
)

// All is the dropdown sentinel meaning "no filter"
const All = "All"

const (
	ToneHappy       = "Happy"
	ToneSurprising  = "Surprising"
	ToneAngry       = "Angry"
	ToneSuspenseful = "Suspenseful"
	ToneSad         = "Sad"
)

// toneOrder maps a tone to its emotion column and direction.
// Surprising and Suspenseful sort ascending, unlike the other tones.
var toneOrder = map[string]struct {
	score      func(catalog.Book) float64
	descending bool
}{
	ToneHappy:       {func(b catalog.Book) float64 { return b.Joy }, true},
	ToneSurprising:  {func(b catalog.Book) float64 { return b.Surprise }, false},
	ToneAngry:       {func(b catalog.Book) float64 { return b.Anger }, true},
	ToneSuspenseful: {func(b catalog.Book) float64 { return b.Fear }, false},
	ToneSad:         {func(b catalog.Book) float64 { return b.Sadness }, true},
}

// Tones returns the tone choices offered to users, "All" first
func Tones() []string {
	return []string{All, ToneHappy, ToneSurprising, ToneAngry, ToneSuspenseful, ToneSad}
}

// ValidTone reports whether tone is "All" or a known tone
func ValidTone(tone string) bool {
	if tone == All {
		return true
	}
	_, ok := toneOrder[tone]
	return ok
}

// sortByTone reorders books in place by the tone's emotion score.
// Equal scores keep their incoming order.
func sortByTone(books []catalog.Book, tone string) {
	order, ok := toneOrder[tone]
	if !ok {
		return
	}
	slices.SortStableFunc(books, func(a, b catalog.Book) int {
		if order.descending {
			return cmp.Compare(order.score(b), order.score(a))
		}
		return cmp.Compare(order.score(a), order.score(b))
	})
}
