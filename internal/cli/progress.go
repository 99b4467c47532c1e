package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lherron/catimerge/internal/domain"
	"github.com/rs/zerolog/log"
)

// textProgress prints the verbose merge transcript.
type textProgress struct {
	w io.Writer
}

func newTextProgress(w io.Writer) *textProgress {
	return &textProgress{w: w}
}

func (p *textProgress) Started(first, second, output string) {
	fmt.Fprintf(p.w, "Merging %s and %s into %s...\n", quotePath(first), quotePath(second), quotePath(output))
}

func (p *textProgress) ParsingStarted() {
	fmt.Fprintln(p.w, "Parsing...")
}

func (p *textProgress) Parsed(index, version int, counts domain.Counts) {
	if index == 1 {
		fmt.Fprintf(p.w, "Version: %d\n", version)
	}
	fmt.Fprintf(p.w, "ZIP #%d has %s\n", index, counts)
	if index == 2 {
		fmt.Fprintln(p.w, "Merging...")
	}
}

func (p *textProgress) Merged(counts domain.Counts) {
	fmt.Fprintf(p.w, "Output has %s\n", counts)
}

func (p *textProgress) WritingStarted() {
	fmt.Fprintln(p.w, "Writing...")
}

func (p *textProgress) Written(output string, size int64) {
	log.Info().Str("path", output).Str("size", humanize.Bytes(uint64(size))).Msg("wrote output")
}

// quotePath quotes s with single quotes, or double quotes when s contains a
// single quote but no double quote.
func quotePath(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	var b strings.Builder
	b.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case string(r) == q:
			b.WriteString(`\` + q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(q)
	return b.String()
}
