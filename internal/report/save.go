package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/golang/snappy"

	apperrors "github.com/arkilian/syncbench/internal/errors"
	"github.com/arkilian/syncbench/internal/storage"
)

// CompressedExt is appended to snappy-framed report files.
const CompressedExt = ".sz"

// FileName returns the base name of the report file for f.
func (r *Report) FileName(f Format, compress bool) string {
	name := fmt.Sprintf("report-%s.%s", r.RunID, f)
	if compress {
		name += CompressedExt
	}
	return name
}

// ObjectPath returns where a saved report file is published.
func (r *Report) ObjectPath(localPath string) string {
	return path.Join("reports", r.RunID, filepath.Base(localPath))
}

// Save writes the report in every format into dir and returns the file
// paths in format order. With compress each file is snappy-framed.
func Save(r *Report, dir string, formats []Format, compress bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewReportError(apperrors.CodeReportWriteFailed,
			"failed to create report directory", err)
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := filepath.Join(dir, r.FileName(f, compress))
		if err := saveOne(p, f, r, compress); err != nil {
			return paths, apperrors.NewReportError(apperrors.CodeReportWriteFailed,
				fmt.Sprintf("failed to write %s report", f), err).
				WithDetails(map[string]interface{}{"path": p})
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func saveOne(p string, f Format, r *Report, compress bool) error {
	file, err := os.Create(p)
	if err != nil {
		return err
	}

	var w io.Writer = file
	var sw *snappy.Writer
	if compress {
		sw = snappy.NewBufferedWriter(file)
		w = sw
	}

	if err := writeFormat(w, f, r); err != nil {
		file.Close()
		return err
	}
	if sw != nil {
		if err := sw.Close(); err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}

// Open opens a saved report file, transparently decompressing .sz files.
func Open(p string) (io.ReadCloser, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(p) != CompressedExt {
		return file, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{snappy.NewReader(file), file}, nil
}

// Publish uploads saved report files to sink under reports/<run id>/ and
// returns the object paths. The first failed upload stops publishing.
func Publish(ctx context.Context, sink storage.ObjectStorage, r *Report, paths []string) ([]string, error) {
	objects := make([]string, 0, len(paths))
	for _, p := range paths {
		obj := r.ObjectPath(p)
		if err := sink.Upload(ctx, p, obj); err != nil {
			return objects, apperrors.NewReportError(apperrors.CodeReportPublishFailed,
				fmt.Sprintf("failed to publish %s", filepath.Base(p)), err).
				WithDetails(map[string]interface{}{"object": obj})
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
