// Package category maps chapter numbers onto clinical specialties.
package category

import (
	"fmt"
	"sort"
)

// DefaultName is returned for chapters outside every range.
const DefaultName = "General Pediatrics"

// Range covers chapters From up to but excluding To.
type Range struct {
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
	Name string `yaml:"name"`
}

// Table is a sorted set of disjoint ranges.
type Table struct {
	ranges   []Range
	fallback string
}

// NewTable validates and sorts ranges. Empty or overlapping ranges are
// rejected.
func NewTable(ranges []Range, fallback string) (*Table, error) {
	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	for i, r := range sorted {
		if r.To <= r.From {
			return nil, fmt.Errorf("category %q: empty range %d-%d", r.Name, r.From, r.To)
		}
		if i > 0 && r.From < sorted[i-1].To {
			return nil, fmt.Errorf("category %q overlaps %q", r.Name, sorted[i-1].Name)
		}
	}
	if fallback == "" {
		fallback = DefaultName
	}
	return &Table{ranges: sorted, fallback: fallback}, nil
}

// Default returns the pediatrics taxonomy.
func Default() *Table {
	t, err := NewTable([]Range{
		{1, 6, "General Pediatrics"},
		{6, 19, "Social & Preventive Medicine"},
		{19, 32, "Child Development"},
		{32, 47, "Behavioral Pediatrics"},
		{47, 57, "Neurodevelopmental Disorders"},
		{57, 73, "Nutrition & Metabolism"},
		{73, 87, "Fluid & Electrolytes"},
		{87, 104, "Emergency Medicine"},
		{104, 111, "Genetics"},
		{111, 200, "Metabolic Diseases"},
		{200, 210, "Neonatal Medicine"},
		{210, 400, "Infectious Diseases"},
		{400, 450, "Immunology"},
		{450, 500, "Allergy"},
		{500, 550, "Rheumatology"},
		{550, 600, "Gastroenterology"},
		{600, 650, "Cardiology"},
		{650, 700, "Pulmonology"},
	}, DefaultName)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the category of chapter n.
func (t *Table) Lookup(n int) string {
	i := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].To > n })
	if i < len(t.ranges) && t.ranges[i].From <= n {
		return t.ranges[i].Name
	}
	return t.fallback
}

// Names lists the distinct category names in range order.
func (t *Table) Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range t.ranges {
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	}
	return out
}
