package table

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lherron/catimerge/internal/domain"
)

// Parse reads a complete catima.csv: the version line, a blank line, and the
// body for that version.
func Parse(data []byte) (domain.Export, error) {
	if !utf8.Valid(data) {
		return nil, domain.Errorf(domain.KindParse, "table is not valid UTF-8")
	}

	br := bufio.NewReader(bytes.NewReader(data))
	version, err := readLine(br)
	if err != nil {
		return nil, domain.Errorf(domain.KindParse, "empty table")
	}
	version = strings.TrimSpace(version)

	blank, err := readLine(br)
	if err != nil || strings.TrimSpace(blank) != "" {
		return nil, domain.Errorf(domain.KindParse, "expected blank line after version")
	}

	switch version {
	case strconv.Itoa(domain.Version2):
		return parseV2(br, 3)
	default:
		return nil, domain.Errorf(domain.KindUnsupportedVersion, "unexpected version in import: %s", version)
	}
}

// readLine returns the next line including its terminator.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

// parseV2 parses the body of a version 2 table, which starts on line
// firstLine of the file: three sections (groups, cards, card groups), each a
// header record and data records, separated by single blank lines.
func parseV2(r io.Reader, firstLine int) (*domain.ExportV2, error) {
	export := &domain.ExportV2{}
	sections := export.Sections()

	cur := 0
	haveHeader := false
	reader := NewReader(r)
	reader.line = firstLine

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, domain.Wrap(domain.KindParse, err, "malformed %s section", sections[cur].Name)
			}
			return nil, domain.Wrap(domain.KindIO, err, "failed to read table")
		}

		section := sections[cur]
		switch {
		case !haveHeader:
			section.Table.Keys = record
			haveHeader = true
		case len(record) > 0:
			if len(record) != len(section.Table.Keys) {
				return nil, domain.Errorf(domain.KindParse,
					"mismatched row size in %s on line %d: got %d field(s), header has %d",
					section.Name, reader.Line(), len(record), len(section.Table.Keys))
			}
			section.Table.Records = append(section.Table.Records, record)
		default:
			if cur == len(sections)-1 {
				return nil, domain.Errorf(domain.KindParse, "too many sections (line %d)", reader.Line())
			}
			cur++
			haveHeader = false
		}
	}

	if cur < len(sections)-1 || !haveHeader {
		return nil, domain.Errorf(domain.KindParse, "too few sections")
	}

	return export, nil
}

// Marshal serializes an export of any supported version.
func Marshal(e domain.Export) ([]byte, error) {
	switch v := e.(type) {
	case *domain.ExportV2:
		return MarshalV2(v)
	default:
		return nil, domain.Errorf(domain.KindUnsupportedVersion, "unsupported version: %d", e.Version())
	}
}

// MarshalV2 serializes a version 2 export into catima.csv bytes.
func MarshalV2(e *domain.ExportV2) ([]byte, error) {
	var buf bytes.Buffer
	if err := FormatV2(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatV2 writes the version line followed by each section, every section
// preceded by a blank line.
func FormatV2(w io.Writer, e *domain.ExportV2) error {
	cw := NewWriter(w)
	if err := cw.Write([]string{strconv.Itoa(domain.Version2)}); err != nil {
		return err
	}

	for _, section := range e.Sections() {
		if err := cw.WriteBlank(); err != nil {
			return err
		}
		if err := cw.Write(section.Table.Keys); err != nil {
			return err
		}
		for _, record := range section.Table.Records {
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	return cw.Flush()
}
