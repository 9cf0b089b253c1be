package rank

import (
	"github.com/hupe1980/segmenta/internal/text"
	"github.com/hupe1980/segmenta/model"
)

// Group maps a semantic concept ("age-young", "income-high") to the catalog
// codes that express it. Terms are the single-token triggers; a group matches
// a query when any of its terms appears among the query tokens.
type Group struct {
	Name     string
	Category model.Category
	Terms    []string
	Codes    []string
	Weight   float32
}

// SynonymTable is the static keyword-to-variable mapping, loaded once
// alongside the catalog.
type SynonymTable struct {
	groups []Group
	byTerm map[string][]int
}

// NewSynonymTable builds a lookup table from the given groups. Terms are
// normalized through the shared tokenizer; multi-word terms index under each
// of their tokens.
func NewSynonymTable(groups []Group) *SynonymTable {
	t := &SynonymTable{
		groups: groups,
		byTerm: make(map[string][]int),
	}
	for i, g := range groups {
		seen := make(map[string]struct{}, len(g.Terms))
		for _, term := range g.Terms {
			for _, tok := range text.Tokenize(term) {
				if _, dup := seen[tok]; dup {
					continue
				}
				seen[tok] = struct{}{}
				t.byTerm[tok] = append(t.byTerm[tok], i)
			}
		}
	}
	return t
}

// Groups returns the underlying group list.
func (t *SynonymTable) Groups() []Group { return t.groups }

// Match returns the indices of groups triggered by the token.
func (t *SynonymTable) Match(token string) []int {
	return t.byTerm[token]
}

// Group returns the group at index i.
func (t *SynonymTable) Group(i int) *Group { return &t.groups[i] }

// DefaultGroups returns the built-in semantic groups with their trigger
// terms. Codes are empty: binding groups to a concrete catalog is deployment
// data, filled in by the caller before constructing the table.
func DefaultGroups() []Group {
	return []Group{
		{Name: "age-young", Category: model.CategoryDemographic, Weight: 1.0,
			Terms: []string{"young", "youth", "millennial", "millennials", "students", "genz", "teens", "twenties"}},
		{Name: "age-old", Category: model.CategoryDemographic, Weight: 1.0,
			Terms: []string{"senior", "seniors", "elderly", "retired", "retirees", "pensioners", "boomers"}},
		{Name: "family", Category: model.CategoryDemographic, Weight: 0.9,
			Terms: []string{"family", "families", "children", "kids", "parents", "households"}},
		{Name: "income-high", Category: model.CategoryFinancial, Weight: 1.0,
			Terms: []string{"affluent", "wealthy", "rich", "high-income", "prosperous", "premium"}},
		{Name: "income-low", Category: model.CategoryFinancial, Weight: 1.0,
			Terms: []string{"low-income", "budget", "thrifty", "frugal", "discount"}},
		{Name: "environmental", Category: model.CategoryPsychographic, Weight: 1.0,
			Terms: []string{"environmental", "environmentally", "green", "sustainable", "sustainability", "eco", "organic", "climate"}},
		{Name: "tech-savvy", Category: model.CategoryBehavioral, Weight: 0.9,
			Terms: []string{"digital", "online", "tech", "technology", "internet", "mobile", "gadgets"}},
		{Name: "urban", Category: model.CategoryGeographic, Weight: 1.0,
			Terms: []string{"urban", "city", "metropolitan", "downtown"}},
		{Name: "rural", Category: model.CategoryGeographic, Weight: 1.0,
			Terms: []string{"rural", "countryside", "village", "farming"}},
		{Name: "health", Category: model.CategoryBehavioral, Weight: 0.9,
			Terms: []string{"health", "healthy", "fitness", "wellness", "sports", "active"}},
		{Name: "travel", Category: model.CategoryBehavioral, Weight: 0.8,
			Terms: []string{"travel", "travelers", "vacation", "tourism", "abroad"}},
	}
}
