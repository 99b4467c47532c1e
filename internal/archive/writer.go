package archive

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/lherron/catimerge/internal/domain"
	"github.com/rs/zerolog/log"
)

// MemberSource streams the bytes of a named member.
type MemberSource interface {
	OpenMember(name string) (io.ReadCloser, error)
}

// Member is one image to copy into the output: written as Name, read from
// From under SourceName.
type Member struct {
	Name       string
	From       MemberSource
	SourceName string
}

// WriteOptions configures Write.
type WriteOptions struct {
	// CompressionLevel is a flate level from -2 to 9. Zero stores members
	// uncompressed.
	CompressionLevel int
}

// Write creates the zip at path holding table as catima.csv followed by
// members in order. The archive is assembled in a temporary file next to path
// and renamed into place only once complete, so on failure path is left as
// it was. It returns the size of the written archive.
func Write(path string, tableData []byte, members []Member, opts WriteOptions) (int64, error) {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, domain.Wrap(domain.KindIO, err, "failed to create output")
	}

	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err := writeZip(f, tableData, members, opts); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, domain.Wrap(domain.KindIO, err, "failed to stat output")
	}
	if err := f.Close(); err != nil {
		return 0, domain.Wrap(domain.KindIO, err, "failed to close output")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		committed = true
		return 0, domain.Wrap(domain.KindIO, err, "failed to move output into place")
	}
	committed = true

	return info.Size(), nil
}

func writeZip(w io.Writer, tableData []byte, members []Member, opts WriteOptions) error {
	level := opts.CompressionLevel
	method := zip.Deflate
	if level == flate.NoCompression {
		method = zip.Store
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	now := time.Now()
	create := func(name string) (io.Writer, error) {
		hw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   method,
			Modified: now,
		})
		if err != nil {
			return nil, domain.Wrap(domain.KindIO, err, "failed to add %s", name)
		}
		return hw, nil
	}

	tw, err := create(domain.TableFile)
	if err != nil {
		return err
	}
	if _, err := tw.Write(tableData); err != nil {
		return domain.Wrap(domain.KindIO, err, "failed to write %s", domain.TableFile)
	}

	for _, m := range members {
		log.Debug().Str("name", m.Name).Str("source", m.SourceName).Msg("copying image")
		if err := copyMember(create, m); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return domain.Wrap(domain.KindIO, err, "failed to finish output")
	}
	return nil
}

func copyMember(create func(string) (io.Writer, error), m Member) error {
	rc, err := m.From.OpenMember(m.SourceName)
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := create(m.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, rc); err != nil {
		return domain.Wrap(domain.KindIO, err, "failed to copy %s", m.SourceName)
	}
	return nil
}
