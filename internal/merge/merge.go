// Package merge combines two Catima exports into one.
//
// The first export is the base: its card ids, links and image names are kept
// as they are. Every card id of the second export is shifted by the highest
// card id of the first, and everything that refers to a card id (card group
// links and image file names) is shifted with it. Groups are identified by
// their label, so the union of both exports' labels needs no renumbering.
package merge

import (
	"strconv"
	"strings"

	"github.com/lherron/catimerge/internal/domain"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/tidwall/btree"
)

// Result is a merged export plus where each of its images comes from.
type Result struct {
	Export *domain.ExportV2
	Images *ImageMap
	// Offset is the amount added to the second export's card ids.
	Offset int
}

// Counts summarises the merged export, counting images from the image map.
func (r *Result) Counts() domain.Counts {
	c := r.Export.Counts()
	c.Images = r.Images.Len()
	return c
}

// Merge combines a and b. Neither input is modified.
func Merge(a, b domain.Export) (*Result, error) {
	a2, okA := a.(*domain.ExportV2)
	b2, okB := b.(*domain.ExportV2)
	switch {
	case okA && okB:
		return mergeV2(a2, b2)
	case a.Version() == b.Version():
		return nil, domain.Errorf(domain.KindUnsupportedVersion, "unsupported version: %d", a.Version())
	default:
		return nil, domain.Errorf(domain.KindIncompatibleVersions, "incompatible versions: %d and %d", a.Version(), b.Version())
	}
}

func mergeV2(a, b *domain.ExportV2) (*Result, error) {
	if err := checkHeaders(a, b); err != nil {
		return nil, err
	}

	out := &domain.ExportV2{}
	out.Groups = mergeGroups(a.Groups, b.Groups)

	cards, offset, err := mergeCards(a.Cards, b.Cards)
	if err != nil {
		return nil, err
	}
	out.Cards = cards

	cardGroups, err := mergeCardGroups(a.CardGroups, b.CardGroups, offset)
	if err != nil {
		return nil, err
	}
	out.CardGroups = cardGroups

	images, err := mergeImages(a.ImageFiles, b.ImageFiles, offset)
	if err != nil {
		return nil, err
	}
	out.ImageFiles = images.Names()

	return &Result{Export: out, Images: images, Offset: offset}, nil
}

// checkHeaders requires the three section headers to match exactly.
func checkHeaders(a, b *domain.ExportV2) error {
	as, bs := a.Sections(), b.Sections()
	for i := range as {
		if equalKeys(as[i].Table.Keys, bs[i].Table.Keys) {
			continue
		}
		err := domain.Errorf(domain.KindSchemaMismatch, "mismatched %s_keys", as[i].Name)
		if diff := headerDiff(as[i].Table.Keys, bs[i].Table.Keys); diff != "" {
			err.Msg += "\n" + diff
		}
		return err
	}
	return nil
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// headerDiff renders a unified diff of two headers, one column per line.
func headerDiff(a, b []string) string {
	diff := difflib.UnifiedDiff{
		A:        keyLines(a),
		B:        keyLines(b),
		FromFile: "first",
		ToFile:   "second",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, "\n")
}

func keyLines(keys []string) []string {
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = strconv.Quote(k) + "\n"
	}
	return lines
}

// mergeGroups returns one single-field record per distinct label, sorted.
func mergeGroups(a, b domain.Table) domain.Table {
	var labels btree.Set[string]
	for _, t := range []domain.Table{a, b} {
		for _, r := range t.Records {
			labels.Insert(r[0])
		}
	}

	out := domain.Table{Keys: append([]string(nil), a.Keys...)}
	labels.Scan(func(label string) bool {
		out.Records = append(out.Records, []string{label})
		return true
	})
	return out
}

// mergeCards copies a's cards as they are and b's with their ids shifted by
// the highest id in a, which it returns as the offset.
func mergeCards(a, b domain.Table) (domain.Table, int, error) {
	idIdx, err := a.MustIndex(domain.SectionCards, domain.KeyCardID)
	if err != nil {
		return domain.Table{}, 0, err
	}

	offset := 0
	for _, card := range a.Records {
		id, err := domain.ParseCardID(card[idIdx])
		if err != nil {
			return domain.Table{}, 0, err
		}
		if id > offset {
			offset = id
		}
	}

	out := a.Clone()
	for _, card := range b.Records {
		id, err := domain.ParseCardID(card[idIdx])
		if err != nil {
			return domain.Table{}, 0, err
		}
		newID, err := domain.ShiftID(id, offset)
		if err != nil {
			return domain.Table{}, 0, err
		}
		shifted := append([]string(nil), card...)
		shifted[idIdx] = strconv.Itoa(newID)
		out.Records = append(out.Records, shifted)
	}
	return out, offset, nil
}

// mergeCardGroups keeps a's links and shifts the card id of b's links.
func mergeCardGroups(a, b domain.Table, offset int) (domain.Table, error) {
	cardIdx, err := a.MustIndex(domain.SectionCardGroups, domain.KeyCardGroupCardID)
	if err != nil {
		return domain.Table{}, err
	}

	out := a.Clone()
	for _, link := range b.Records {
		id, err := domain.ParseID(link[cardIdx])
		if err != nil {
			return domain.Table{}, err
		}
		newID, err := domain.ShiftID(id, offset)
		if err != nil {
			return domain.Table{}, err
		}
		shifted := append([]string(nil), link...)
		shifted[cardIdx] = strconv.Itoa(newID)
		out.Records = append(out.Records, shifted)
	}
	return out, nil
}

// mergeImages maps a's images to themselves and b's to their renamed
// versions, a's first.
func mergeImages(a, b []string, offset int) (*ImageMap, error) {
	images := NewImageMap()

	for _, name := range a {
		if _, err := domain.ParseImageName(name); err != nil {
			return nil, err
		}
		if !images.Add(name, ImageSource{Origin: First, Name: name}) {
			return nil, domain.Errorf(domain.KindImageName, "duplicate image in first import: %q", name)
		}
	}

	for _, name := range b {
		renamed, err := domain.RenameImage(name, offset)
		if err != nil {
			return nil, err
		}
		if !images.Add(renamed, ImageSource{Origin: Second, Name: name}) {
			return nil, domain.Errorf(domain.KindImageName, "duplicate image in output: %q (from %q in second import)", renamed, name)
		}
	}

	return images, nil
}
