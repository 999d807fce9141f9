// Package knowledge holds the static catalogue of vegetarian dishes the
// genie is primed with, and fuzzy lookup over it.
package knowledge

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Category is a named group of dishes
type Category struct {
	Name   string   `json:"name"`
	Dishes []string `json:"dishes"`
}

// Dish is a single catalogue entry together with its category
type Dish struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// MatchResult describes how a free-text answer resolved to a dish
type MatchResult struct {
	Dish     Dish `json:"dish"`
	Distance int  `json:"distance"`
	Exact    bool `json:"exact"`
}

// Base is an immutable dish catalogue
type Base struct {
	categories []Category
	entries    []entry
}

type entry struct {
	dish Dish
	full string // normalized full name
	base string // normalized name without parenthesised notes
}

// Default returns the built-in catalogue
func Default() *Base {
	return New(defaultCategories)
}

// New builds a catalogue from categories. The slice is copied.
func New(categories []Category) *Base {
	b := &Base{categories: make([]Category, 0, len(categories))}
	for _, c := range categories {
		dishes := append([]string(nil), c.Dishes...)
		b.categories = append(b.categories, Category{Name: c.Name, Dishes: dishes})
		for _, d := range dishes {
			b.entries = append(b.entries, entry{
				dish: Dish{Name: d, Category: c.Name},
				full: normalize(d),
				base: normalize(stripNotes(d)),
			})
		}
	}
	return b
}

// Categories returns a copy of the catalogue's categories in order
func (b *Base) Categories() []Category {
	out := make([]Category, len(b.categories))
	for i, c := range b.categories {
		out[i] = Category{Name: c.Name, Dishes: append([]string(nil), c.Dishes...)}
	}
	return out
}

// Size returns the number of dishes
func (b *Base) Size() int {
	return len(b.entries)
}

// PromptFragment renders the catalogue as markdown list lines, one per category
func (b *Base) PromptFragment() string {
	lines := make([]string, 0, len(b.categories))
	for _, c := range b.categories {
		lines = append(lines, "- **"+c.Name+":** "+strings.Join(c.Dishes, ", "))
	}
	return strings.Join(lines, "\n")
}

// Search returns dishes whose name or category contains query, case-insensitively.
// An empty query returns every dish.
func (b *Base) Search(query string) []Dish {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Dish
	for _, e := range b.entries {
		if q == "" ||
			strings.Contains(strings.ToLower(e.dish.Name), q) ||
			strings.Contains(strings.ToLower(e.dish.Category), q) {
			out = append(out, e.dish)
		}
	}
	return out
}

// Match resolves free text to the closest dish. Containment wins outright;
// otherwise the smallest edit distance within a length-scaled limit is chosen.
func (b *Base) Match(text string) (MatchResult, bool) {
	in := normalize(text)
	if len(in) < 3 {
		return MatchResult{}, false
	}

	// A dish named inside the answer beats an answer that is part of a dish name
	var within, partial []entry
	for _, e := range b.entries {
		if in == e.full || in == e.base {
			return MatchResult{Dish: e.dish, Exact: true}, true
		}
		if len(e.base) < 4 {
			continue
		}
		if strings.Contains(in, e.base) {
			within = append(within, e)
		} else if strings.Contains(e.base, in) {
			partial = append(partial, e)
		}
	}
	if len(within) > 0 {
		sort.SliceStable(within, func(i, j int) bool {
			return len(within[i].base) > len(within[j].base)
		})
		return MatchResult{Dish: within[0].dish}, true
	}
	if len(partial) > 0 {
		sort.SliceStable(partial, func(i, j int) bool {
			return len(partial[i].base) < len(partial[j].base)
		})
		return MatchResult{Dish: partial[0].dish}, true
	}

	best := MatchResult{Distance: -1}
	for _, e := range b.entries {
		dist := levenshtein.ComputeDistance(in, e.base)
		if d := levenshtein.ComputeDistance(in, e.full); d < dist {
			dist = d
		}
		if dist > levenshteinLimit(len(e.base)) {
			continue
		}
		if best.Distance < 0 || dist < best.Distance {
			best = MatchResult{Dish: e.dish, Distance: dist}
		}
	}
	if best.Distance < 0 {
		return MatchResult{}, false
	}
	return best, true
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func stripNotes(name string) string {
	if i := strings.Index(name, "("); i > 0 {
		return name[:i]
	}
	return name
}

// normalize lowercases, maps "&" to "and", drops punctuation and collapses spaces
func normalize(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "&", " and ")
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space = false
			sb.WriteRune(r)
		default:
			space = true
		}
	}
	return sb.String()
}
