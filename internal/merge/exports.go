package merge

import (
	"context"

	"github.com/lherron/catimerge/internal/archive"
	"github.com/lherron/catimerge/internal/domain"
	"github.com/lherron/catimerge/internal/table"
	"github.com/rs/zerolog/log"
)

// Progress observes MergeExports. Its methods must not affect the merge.
type Progress interface {
	Started(first, second, output string)
	ParsingStarted()
	// Parsed is called once per input, index 1 for the first and 2 for the
	// second.
	Parsed(index, version int, counts domain.Counts)
	Merged(counts domain.Counts)
	WritingStarted()
	Written(output string, size int64)
}

// NopProgress ignores every notification.
type NopProgress struct{}

func (NopProgress) Started(string, string, string) {}
func (NopProgress) ParsingStarted() {}
func (NopProgress) Parsed(int, int, domain.Counts) {}
func (NopProgress) Merged(domain.Counts) {}
func (NopProgress) WritingStarted() {}
func (NopProgress) Written(string, int64) {}

// Options configures MergeExports.
type Options struct {
	Progress         Progress
	CompressionLevel int
}

// MergeExports merges the export archives first and second into output.
// The output file is only created once both inputs have been parsed and
// merged in memory; on any error it is left untouched.
func MergeExports(ctx context.Context, first, second, output string, opts Options) error {
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	progress.Started(first, second, output)
	progress.ParsingStarted()

	src1, err := archive.Open(first)
	if err != nil {
		return err
	}
	defer src1.Close()

	src2, err := archive.Open(second)
	if err != nil {
		return err
	}
	defer src2.Close()

	e1, e2 := src1.Export(), src2.Export()
	progress.Parsed(1, e1.Version(), e1.Counts())
	progress.Parsed(2, e2.Version(), e2.Counts())

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := Merge(e1, e2)
	if err != nil {
		return err
	}
	log.Debug().Int("offset", result.Offset).Msg("merged exports")

	tableData, err := table.Marshal(result.Export)
	if err != nil {
		return err
	}
	progress.Merged(result.Counts())

	if err := ctx.Err(); err != nil {
		return err
	}

	progress.WritingStarted()
	members := make([]archive.Member, 0, result.Images.Len())
	for _, e := range result.Images.Entries() {
		from := src1
		if e.Source.Origin == Second {
			from = src2
		}
		log.Debug().Str("name", e.Name).Stringer("origin", e.Source.Origin).Msg("queued image")
		members = append(members, archive.Member{Name: e.Name, From: from, SourceName: e.Source.Name})
	}

	size, err := archive.Write(output, tableData, members, archive.WriteOptions{
		CompressionLevel: opts.CompressionLevel,
	})
	if err != nil {
		return err
	}
	progress.Written(output, size)

	return nil
}
