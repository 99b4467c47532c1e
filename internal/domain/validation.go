package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TableFile is the archive member holding the export table.
const TableFile = "catima.csv"

// ImageExt is the extension every non-table archive member must carry.
const ImageExt = ".png"

// imageNameRegex matches card_<id>_<front|back|icon>.png.
var imageNameRegex = regexp.MustCompile(`^card_(\d+)_(front|back|icon)\.png$`)

// ImageName is a parsed card image file name.
type ImageName struct {
	CardID int
	Side   string
}

// String formats the image name back into its archive member form.
func (n ImageName) String() string {
	return "card_" + strconv.Itoa(n.CardID) + "_" + n.Side + ImageExt
}

// ParseImageName parses a card image member name.
func ParseImageName(name string) (ImageName, error) {
	m := imageNameRegex.FindStringSubmatch(name)
	if m == nil {
		return ImageName{}, Errorf(KindImageName, "unexpected file name format in import: %q", name)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return ImageName{}, Wrap(KindImageName, err, "unexpected file name format in import: %q", name)
	}
	return ImageName{CardID: id, Side: m[2]}, nil
}

// RenameImage shifts the card id embedded in an image name by offset.
func RenameImage(name string, offset int) (string, error) {
	n, err := ParseImageName(name)
	if err != nil {
		return "", err
	}
	id, err := ShiftID(n.CardID, offset)
	if err != nil {
		return "", err
	}
	n.CardID = id
	return n.String(), nil
}

// ShiftID adds a non-negative offset to id, failing if the result would
// overflow.
func ShiftID(id, offset int) (int, error) {
	if offset > 0 && id > math.MaxInt-offset {
		return 0, Errorf(KindInvalidID, "ID %d too large to shift by %d", id, offset)
	}
	return id + offset, nil
}

// ValidateMemberName checks a non-table archive member name.
func ValidateMemberName(name string) error {
	if !strings.HasSuffix(name, ImageExt) {
		return Errorf(KindParse, "unexpected file in import: %q", name)
	}
	_, err := ParseImageName(name)
	return err
}

// ParseCardID parses a card identifier and requires it to be positive.
func ParseCardID(value string) (int, error) {
	id, err := ParseID(value)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, Errorf(KindInvalidID, "ID < 1: %d", id)
	}
	return id, nil
}

// ParseID parses an integer identifier field.
func ParseID(value string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, Errorf(KindInvalidID, "invalid ID: %q", value)
	}
	return id, nil
}
