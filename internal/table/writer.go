package table

import (
	"bufio"
	"io"
	"strings"
)

// lineTerminator is what the exporting app writes after every record.
const lineTerminator = "\r\n"

// Writer writes records with minimal quoting and CRLF line endings.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record. A record of a single empty field is written as ""
// so it cannot be mistaken for a blank line.
func (w *Writer) Write(record []string) error {
	if len(record) == 1 && record[0] == "" {
		_, err := w.w.WriteString(`""` + lineTerminator)
		return err
	}

	for i, field := range record {
		if i > 0 {
			if err := w.w.WriteByte(delimiter); err != nil {
				return err
			}
		}
		if err := w.writeField(field); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString(lineTerminator)
	return err
}

// WriteBlank writes an empty line.
func (w *Writer) WriteBlank() error {
	_, err := w.w.WriteString(lineTerminator)
	return err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeField(field string) error {
	if !fieldNeedsQuotes(field) {
		_, err := w.w.WriteString(field)
		return err
	}

	if err := w.w.WriteByte(quote); err != nil {
		return err
	}
	if _, err := w.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
		return err
	}
	return w.w.WriteByte(quote)
}

// fieldNeedsQuotes reports whether field contains a delimiter, quote or line
// break. Leading spaces do not force quoting.
func fieldNeedsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}
