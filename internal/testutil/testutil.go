// Package testutil builds Catima export fixtures for tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// CRLF joins lines with the exporter's CRLF terminator and appends a final
// terminator.
func CRLF(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

// CardsHeader is the cards header written by the Catima app.
const CardsHeader = "_id,store,note,validfrom,expiry,balance,balancetype,cardid,barcodeid,barcodetype,headercolor,starstatus,lastused,archive"

// FirstTable is a version 2 table with four cards, two groups (one label
// needing quotes) and a multi-line field.
var FirstTable = CRLF(
	"2",
	"",
	"_id",
	"one",
	`"""two'"`,
	"",
	CardsHeader,
	`2,bar,,,,0,," bar "" ",,CODE_128,-2092896,0,1687700491,0`,
	"3,baz,,,,0,,12345678901234567890,,DATA_MATRIX,-14642227,0,1687700517,0",
	"1,foo,,,,5,JPY,foo,,AZTEC,-2092896,0,1687700411,0",
	"4,qux,,,,0,,\"foo\nbar\nbaz\nhttps://example.com\",,QR_CODE,-14642227,0,1687700622,0",
	"",
	"cardId,groupId",
	`2,"""two'"`,
	`3,"""two'"`,
	"1,one",
)

// SecondTable is a version 2 table with two cards whose ids overlap
// FirstTable's.
var SecondTable = CRLF(
	"2",
	"",
	"_id",
	"one",
	"three",
	"",
	CardsHeader,
	"1,baz,,,,0,,\"foo\nbar\nbaz\"\"\",,PDF_417,-2092896,0,1687702090,0",
	"2,quux,\"this\nis\na\n\"\"note\"\"\n\nhttps://catima.app\",,1710370800000,0,,123456789012,,UPC_A,-416706,0,1687700899,0",
	"",
	"cardId,groupId",
	"1,one",
	"1,three",
)

// Member is one archive entry.
type Member struct {
	Name string
	Data []byte
}

// Table returns the catima.csv member for text.
func Table(text string) Member {
	return Member{Name: "catima.csv", Data: []byte(text)}
}

// Image returns an image member whose content is derived from its name, so
// copies can be traced back to their source.
func Image(name, origin string) Member {
	return Member{Name: name, Data: []byte("PNG:" + origin + ":" + name)}
}

// WriteZip writes members, in order, to a zip file in a temp directory.
func WriteZip(t *testing.T, name string, members ...Member) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", m.Name, err)
		}
		if _, err := w.Write(m.Data); err != nil {
			t.Fatalf("Failed to write %s: %v", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish %s: %v", path, err)
	}
	return path
}

// ReadZip returns the members of a zip file in archive order.
func ReadZip(t *testing.T, path string) []Member {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer zr.Close()

	var members []Member
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open member %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read member %s: %v", f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Data: data})
	}
	return members
}

// Names returns the member names in order.
func Names(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes content to a file in a directory
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFileString reads a file and returns its content
func ReadFileString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}
