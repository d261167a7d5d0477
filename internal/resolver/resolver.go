// Package resolver maps arbitrary statement header labels to the
// canonical column roles.
//
// Every (column, role) pair is scored by the number of distinct role
// keywords found in the normalized label. The leftmost matching column
// wins each role. A column serves at most one role; when roles compete
// for a column, priority order decides and the loser falls back to its
// best scored remaining candidate.
package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

// DefaultKeywords are the substrings that identify each role.
var DefaultKeywords = map[models.Role][]string{
	models.RoleDate:        {"date", "txn"},
	models.RoleAmount:      {"amount", "debit", "spent"},
	models.RoleDescription: {"desc", "particular", "narration"},
}

// Max edit distance for a header to be offered as the closest amount label.
const suggestDistance = 3

// Resolver scores header labels against per-role keyword sets.
// It is safe for concurrent use.
type Resolver struct {
	keywords map[models.Role][]string
	matchers map[models.Role]*ahocorasick.Matcher
}

// New builds a Resolver for the given keyword sets. Keywords are matched
// case-insensitively as substrings.
func New(keywords map[models.Role][]string) *Resolver {
	r := &Resolver{
		keywords: make(map[models.Role][]string, len(keywords)),
		matchers: make(map[models.Role]*ahocorasick.Matcher, len(keywords)),
	}
	for role, words := range keywords {
		norm := make([]string, 0, len(words))
		for _, w := range words {
			if w = normalize(w); w != "" {
				norm = append(norm, w)
			}
		}
		r.keywords[role] = norm
		r.matchers[role] = ahocorasick.NewStringMatcher(norm)
	}
	return r
}

var std = New(DefaultKeywords)

// Resolve maps header to roles with the default keywords.
func Resolve(header []string) (models.RoleMapping, error) {
	return std.Resolve(header)
}

// LooksLikeHeader reports whether some label of row names the amount
// column, the one role a statement table cannot do without.
func (r *Resolver) LooksLikeHeader(row []string) bool {
	for _, label := range row {
		if r.Score(label, models.RoleAmount) > 0 {
			return true
		}
	}
	return false
}

// LooksLikeHeader applies the default keywords.
func LooksLikeHeader(row []string) bool {
	return std.LooksLikeHeader(row)
}

// Score returns how many distinct keywords of role occur in label.
func (r *Resolver) Score(label string, role models.Role) int {
	m, ok := r.matchers[role]
	if !ok {
		return 0
	}
	label = normalize(label)
	if label == "" {
		return 0
	}

	hits := m.MatchThreadSafe([]byte(label))
	seen := make(map[int]struct{}, len(hits))
	for _, h := range hits {
		seen[h] = struct{}{}
	}
	return len(seen)
}

type candidate struct {
	col   int
	score int
}

// Resolve assigns each role at most one column of header: the leftmost
// column matching the role, unless a role of higher priority owns it. The mapping is
// returned even on error so callers can log its diagnostics. A missing
// amount column is a *models.MissingColumnError.
func (r *Resolver) Resolve(header []string) (models.RoleMapping, error) {
	mapping := models.NewRoleMapping()

	ranked := make(map[models.Role][]candidate, len(models.Roles))
	for _, role := range models.Roles {
		var cands []candidate
		for col, label := range header {
			if s := r.Score(label, role); s > 0 {
				cands = append(cands, candidate{col: col, score: s})
			}
		}
		// leftmost match wins; the rest are fallbacks, best score first
		if len(cands) > 2 {
			slices.SortStableFunc(cands[1:], func(a, b candidate) int {
				return b.score - a.score
			})
		}
		ranked[role] = cands

		if len(cands) > 1 {
			cols := make([]int, len(cands))
			for i, c := range cands {
				cols[i] = c.col
			}
			mapping.Diagnostics = append(mapping.Diagnostics, models.Diagnostic{
				Kind:    models.DiagnosticAmbiguous,
				Role:    role,
				Columns: cols,
				Message: fmt.Sprintf("%d columns match %s; using %q", len(cands), role, header[cands[0].col]),
			})
		}
	}

	owner := make(map[int]models.Role)
	for _, role := range models.Roles {
		cands := ranked[role]
		if len(cands) == 0 {
			mapping.Diagnostics = append(mapping.Diagnostics, models.Diagnostic{
				Kind:    models.DiagnosticMissing,
				Role:    role,
				Message: fmt.Sprintf("no header matches %s", role),
			})
			continue
		}

		assigned := false
		for _, c := range cands {
			if taken, ok := owner[c.col]; ok {
				mapping.Diagnostics = append(mapping.Diagnostics, models.Diagnostic{
					Kind:    models.DiagnosticCollision,
					Role:    role,
					Columns: []int{c.col},
					Message: fmt.Sprintf("column %q also matches %s but is assigned to %s", header[c.col], role, taken),
				})
				continue
			}
			owner[c.col] = role
			mapping.Assign(role, c.col)
			assigned = true
			break
		}
		if !assigned {
			mapping.Diagnostics = append(mapping.Diagnostics, models.Diagnostic{
				Kind:    models.DiagnosticMissing,
				Role:    role,
				Message: fmt.Sprintf("every column matching %s is assigned to another role", role),
			})
		}
	}

	if _, ok := mapping.Column(models.RoleAmount); !ok {
		return mapping, &models.MissingColumnError{
			Role:       models.RoleAmount,
			Headers:    slices.Clone(header),
			Suggestion: r.closest(header, models.RoleAmount),
		}
	}
	return mapping, nil
}

// closest returns the header label nearest to any keyword of role, or ""
// when nothing is within suggestDistance edits.
func (r *Resolver) closest(header []string, role models.Role) string {
	best, bestDist := "", suggestDistance+1
	for _, label := range header {
		norm := normalize(label)
		if norm == "" {
			continue
		}
		for _, kw := range r.keywords[role] {
			if d := fuzzy.LevenshteinDistance(norm, kw); d < bestDist {
				best, bestDist = label, d
			}
		}
	}
	return best
}

func normalize(label string) string {
	// cases.Caser keeps state; one per call
	return cases.Lower(language.Und).String(strings.TrimSpace(label))
}
