// Package domain holds the in-memory model of a Catima export: the versioned
// export variants, their tables, and the image files that travel with them.
package domain

import "fmt"

// Version2 is the only export format version this build understands.
const Version2 = 2

// Section names, in the order they appear in catima.csv.
const (
	SectionGroups     = "groups"
	SectionCards      = "cards"
	SectionCardGroups = "card_groups"
)

// Column names the merge engine resolves by header lookup.
const (
	KeyCardID          = "_id"
	KeyCardGroupCardID = "cardId"
)

// Export is one parsed export. Each format version is its own concrete type;
// callers switch on the type, never on a default.
type Export interface {
	Version() int
	Counts() Counts
}

// Table is a header row plus the records aligned to it.
type Table struct {
	Keys    []string
	Records [][]string
}

// Index returns the column position of key in the header.
func (t Table) Index(key string) (int, bool) {
	for i, k := range t.Keys {
		if k == key {
			return i, true
		}
	}
	return -1, false
}

// MustIndex is Index for columns whose absence is a schema error.
func (t Table) MustIndex(section, key string) (int, error) {
	idx, ok := t.Index(key)
	if !ok {
		return -1, Errorf(KindParse, "no %q column in %s", key, section)
	}
	return idx, nil
}

// Len returns the number of data records.
func (t Table) Len() int {
	return len(t.Records)
}

// Clone returns a deep copy whose fields can be rewritten freely.
func (t Table) Clone() Table {
	out := Table{
		Keys:    append([]string(nil), t.Keys...),
		Records: make([][]string, len(t.Records)),
	}
	for i, r := range t.Records {
		out.Records[i] = append([]string(nil), r...)
	}
	return out
}

// ExportV2 is a version 2 export: three tables plus image file names in the
// order they were found in the archive.
type ExportV2 struct {
	Groups     Table
	Cards      Table
	CardGroups Table
	ImageFiles []string
}

// Version implements Export.
func (e *ExportV2) Version() int { return Version2 }

// Counts implements Export.
func (e *ExportV2) Counts() Counts {
	return Counts{
		Groups:     e.Groups.Len(),
		Cards:      e.Cards.Len(),
		CardGroups: e.CardGroups.Len(),
		Images:     len(e.ImageFiles),
	}
}

// Sections returns the tables paired with their section names, in file order.
func (e *ExportV2) Sections() []Section {
	return []Section{
		{Name: SectionGroups, Table: &e.Groups},
		{Name: SectionCards, Table: &e.Cards},
		{Name: SectionCardGroups, Table: &e.CardGroups},
	}
}

// Section names one of the tables of an export.
type Section struct {
	Name  string
	Table *Table
}

// Counts summarises an export for progress output.
type Counts struct {
	Groups     int `json:"groups" yaml:"groups"`
	Cards      int `json:"cards" yaml:"cards"`
	CardGroups int `json:"card_groups" yaml:"card_groups"`
	Images     int `json:"images" yaml:"images"`
}

// String renders counts in the fixed-width form used by verbose output.
func (c Counts) String() string {
	return fmt.Sprintf("%3d group(s), %3d card(s), %3d card group(s), %3d image file(s)",
		c.Groups, c.Cards, c.CardGroups, c.Images)
}
