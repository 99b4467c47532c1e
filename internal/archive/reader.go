// Package archive reads Catima export zips and writes merged ones.
package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/lherron/catimerge/internal/domain"
	"github.com/lherron/catimerge/internal/table"
	"github.com/rs/zerolog/log"
)

// Source is an open export archive. Image bytes are read from it lazily, so
// it must stay open until the merged archive has been written.
type Source struct {
	path      string
	zr        *zip.ReadCloser
	files     map[string]*zip.File
	export    domain.Export
	tableData []byte
}

// MemberInfo describes one archive member.
type MemberInfo struct {
	Name string
	Size uint64
}

// Open opens and parses the export archive at path. The caller must Close
// the returned Source.
func Open(path string) (*Source, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, domain.Wrap(domain.KindIO, err, "failed to open %s", path)
	}

	export, tableData, err := read(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	return &Source{path: path, zr: zr, files: files, export: export, tableData: tableData}, nil
}

// Path returns the file the source was opened from.
func (s *Source) Path() string {
	return s.path
}

// Export returns the parsed export.
func (s *Source) Export() domain.Export {
	return s.export
}

// TableData returns the raw bytes of catima.csv.
func (s *Source) TableData() []byte {
	return s.tableData
}

// Members lists every member in archive order.
func (s *Source) Members() []MemberInfo {
	if s.zr == nil {
		return nil
	}
	members := make([]MemberInfo, len(s.zr.File))
	for i, f := range s.zr.File {
		members[i] = MemberInfo{Name: f.Name, Size: f.UncompressedSize64}
	}
	return members
}

// OpenMember opens the named member for reading.
func (s *Source) OpenMember(name string) (io.ReadCloser, error) {
	f, ok := s.files[name]
	if !ok {
		return nil, domain.Errorf(domain.KindIO, "%s: no member %q", s.path, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, domain.Wrap(domain.KindIO, err, "%s: failed to open member %q", s.path, name)
	}
	return rc, nil
}

// Close releases the underlying zip file. Safe to call more than once.
func (s *Source) Close() error {
	if s.zr == nil {
		return nil
	}
	err := s.zr.Close()
	s.zr = nil
	return err
}

// read parses the table of an export zip and collects its image member names
// in archive order. Any member that is neither the table nor a card image
// rejects the archive.
func read(zr *zip.Reader) (domain.Export, []byte, error) {
	var export domain.Export
	var tableData []byte
	var images []string

	for _, f := range zr.File {
		if f.Name == domain.TableFile {
			if export != nil {
				return nil, nil, domain.Errorf(domain.KindParse, "more than one %s in import", domain.TableFile)
			}
			data, err := readMember(f)
			if err != nil {
				return nil, nil, err
			}
			tableData = data
			export, err = table.Parse(data)
			if err != nil {
				return nil, nil, err
			}
			log.Debug().Int("version", export.Version()).Int("bytes", len(data)).Msg("parsed table")
			continue
		}

		if err := domain.ValidateMemberName(f.Name); err != nil {
			return nil, nil, err
		}
		images = append(images, f.Name)
	}

	if export == nil {
		return nil, nil, domain.Errorf(domain.KindParse, "no %s in import", domain.TableFile)
	}

	switch e := export.(type) {
	case *domain.ExportV2:
		e.ImageFiles = images
	default:
		return nil, nil, domain.Errorf(domain.KindUnsupportedVersion, "unsupported version: %d", export.Version())
	}

	return export, tableData, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, domain.Wrap(domain.KindIO, err, "failed to open %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, domain.Wrap(domain.KindIO, err, "failed to read %s", f.Name)
	}
	return data, nil
}
