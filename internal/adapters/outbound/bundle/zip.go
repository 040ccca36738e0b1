package bundle

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/openkraft/buildgate/internal/domain"
)

const manifest = "Manifest-Version: 1.0\r\nCreated-By: buildgate\r\n\r\n"

// ZipBundler implements domain.Bundler. It writes a jar-style archive of the
// bundle roots with a META-INF/MANIFEST.MF entry.
type ZipBundler struct {
	// ModTime is stamped on every entry so archives are reproducible.
	ModTime time.Time
}

func New() *ZipBundler {
	return &ZipBundler{ModTime: time.Date(1980, 2, 1, 0, 0, 0, 0, time.UTC)}
}

// Bundle writes b.Output and returns its size. Missing roots are skipped;
// when two roots contain the same relative path the first one wins.
func (z *ZipBundler) Bundle(ctx context.Context, b domain.Bundle) (int64, error) {
	entries, err := z.collect(b.Roots)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(b.Output), 0755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", filepath.Dir(b.Output), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.Output), "."+filepath.Base(b.Output)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", b.Output, err)
	}
	defer os.Remove(tmp.Name())

	if err := z.write(ctx, tmp, entries); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing %s: %w", b.Output, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("writing %s: %w", b.Output, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), b.Output); err != nil {
		return 0, fmt.Errorf("writing %s: %w", b.Output, err)
	}

	info, err := os.Stat(b.Output)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

type entry struct {
	name string
	path string
}

func (z *ZipBundler) collect(roots []string) ([]entry, error) {
	seen := make(map[string]bool)
	var entries []entry
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			if seen[name] || name == "META-INF/MANIFEST.MF" {
				return nil
			}
			seen[name] = true
			entries = append(entries, entry{name: name, path: path})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

func (z *ZipBundler) write(ctx context.Context, w io.Writer, entries []entry) error {
	zw := zip.NewWriter(w)

	mf, err := zw.CreateHeader(&zip.FileHeader{Name: "META-INF/MANIFEST.MF", Method: zip.Deflate, Modified: z.ModTime})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mf, manifest); err != nil {
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: z.ModTime})
		if err != nil {
			return err
		}
		if err := copyFile(fw, e.path); err != nil {
			return err
		}
	}
	return zw.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
