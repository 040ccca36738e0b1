package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/openkraft/buildgate/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	".gradle":      true,
	".idea":        true,
	".buildgate":   true,
	"build":        true,
	"out":          true,
	"dist":         true,
	"bin":          true,
}

// FileScanner implements domain.ModuleScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan resolves the modules of the workspace. When the file declares no
// modules, every top-level directory with a main source root is one.
func (s *FileScanner) Scan(root string, file domain.WorkspaceFile) ([]domain.Module, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	specs := file.Modules
	if len(specs) == 0 {
		specs, err = discover(absRoot, file.SourceSets[domain.SourceSetMain])
		if err != nil {
			return nil, fmt.Errorf("discovering modules: %w", err)
		}
	}

	modules := make([]domain.Module, 0, len(specs))
	for _, spec := range specs {
		m, err := scanModule(absRoot, spec, file)
		if err != nil {
			return nil, fmt.Errorf("scanning module %s: %w", spec.Name, err)
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func scanModule(root string, spec domain.ModuleSpec, file domain.WorkspaceFile) (domain.Module, error) {
	dir := filepath.Join(root, spec.DirName())
	m := domain.Module{
		Name:         spec.Name,
		Path:         dir,
		ArtifactID:   spec.ArtifactID,
		CompilerArgs: spec.CompilerArgs,
		Capabilities: spec.Capabilities,
		TestCommand:  spec.TestCommand,
	}
	if spec.Artifact != "" {
		m.Artifact = filepath.Join(dir, spec.Artifact)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		// Reported as a missing source set by Configure.
		return m, nil
	}

	for _, name := range []string{domain.SourceSetMain, domain.SourceSetTest} {
		set := domain.SourceSet{Name: name}
		for _, rel := range file.SourceSets[name] {
			abs := filepath.Join(dir, rel)
			if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
				continue
			}
			set.Roots = append(set.Roots, abs)
			files, err := collect(abs, file.License.Include)
			if err != nil {
				return m, err
			}
			set.Files = append(set.Files, files...)
		}
		if len(set.Roots) > 0 {
			sort.Strings(set.Files)
			m.SourceSets = append(m.SourceSets, set)
		}
	}
	return m, nil
}

// collect returns the files under dir whose base name matches one of the
// include patterns.
func collect(dir string, include []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if Matches(d.Name(), include) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Matches reports whether name matches any of the glob patterns.
func Matches(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func discover(root string, mainRoots []string) ([]domain.ModuleSpec, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var specs []domain.ModuleSpec
	for _, e := range entries {
		if !e.IsDir() || skipDirs[e.Name()] || e.Name()[0] == '.' {
			continue
		}
		for _, rel := range mainRoots {
			if fi, err := os.Stat(filepath.Join(root, e.Name(), rel)); err == nil && fi.IsDir() {
				specs = append(specs, domain.ModuleSpec{Name: e.Name()})
				break
			}
		}
	}
	return specs, nil
}
