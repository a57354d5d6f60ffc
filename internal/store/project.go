package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"phichain/internal/model"
)

const (
	ChartFile = "chart.json"
	MetaFile  = "meta.json"
)

var (
	MusicExtensions        = []string{"wav", "mp3", "ogg", "flac"}
	IllustrationExtensions = []string{"png", "jpg", "jpeg"}
)

// ProjectPath is a validated project directory.
type ProjectPath struct {
	Root string
}

// OpenProjectPath checks that root has chart.json, meta.json and exactly one music and
// one illustration file.
func OpenProjectPath(root string) (ProjectPath, error) {
	root = filepath.Clean(root)
	st, err := os.Stat(root)
	if err != nil {
		return ProjectPath{}, ProjectError{Path: root, Reason: "cannot open directory", Err: err}
	}
	if !st.IsDir() {
		return ProjectPath{}, ProjectError{Path: root, Reason: "not a directory"}
	}
	p := ProjectPath{Root: root}
	for _, name := range []string{ChartFile, MetaFile} {
		if !fileExists(filepath.Join(root, name)) {
			return ProjectPath{}, ProjectError{Path: root, Reason: "missing " + name}
		}
	}
	if _, err := p.MusicPath(); err != nil {
		return ProjectPath{}, err
	}
	if _, err := p.IllustrationPath(); err != nil {
		return ProjectPath{}, err
	}
	return p, nil
}

func (p ProjectPath) ChartPath() string { return filepath.Join(p.Root, ChartFile) }

func (p ProjectPath) MetaPath() string { return filepath.Join(p.Root, MetaFile) }

func (p ProjectPath) MusicPath() (string, error) {
	return p.uniqueAsset("music", MusicExtensions)
}

func (p ProjectPath) IllustrationPath() (string, error) {
	return p.uniqueAsset("illustration", IllustrationExtensions)
}

func (p ProjectPath) uniqueAsset(stem string, exts []string) (string, error) {
	var found []string
	for _, ext := range exts {
		path := filepath.Join(p.Root, stem+"."+ext)
		if fileExists(path) {
			found = append(found, path)
		}
	}
	switch len(found) {
	case 0:
		return "", ProjectError{Path: p.Root, Reason: fmt.Sprintf("missing %s.{%s}", stem, strings.Join(exts, "|"))}
	case 1:
		return found[0], nil
	default:
		return "", ProjectError{Path: p.Root, Reason: fmt.Sprintf("more than one %s file", stem)}
	}
}

// Project is a loaded project: its location, metadata and chart.
type Project struct {
	Path  ProjectPath
	Meta  model.ProjectMeta
	Chart model.Chart
	// MigratedFrom is the chart format on disk before migration.
	MigratedFrom uint32
}

// LoadProject validates the directory and reads meta.json and chart.json. Errors carry an
// ftag kind and a user facing message (see Describe).
func LoadProject(root string) (*Project, error) {
	p, err := OpenProjectPath(root)
	if err != nil {
		return nil, tag(err)
	}
	meta, err := ReadMeta(p)
	if err != nil {
		return nil, tag(err)
	}
	data, err := os.ReadFile(p.ChartPath())
	if err != nil {
		return nil, tag(ProjectError{Path: p.Root, Reason: "cannot read " + ChartFile, Err: err})
	}
	c, from, err := MigrateChartBytes(data)
	if err != nil {
		return nil, tag(err)
	}
	return &Project{Path: p, Meta: meta, Chart: c, MigratedFrom: from}, nil
}

func ReadMeta(p ProjectPath) (model.ProjectMeta, error) {
	b, err := os.ReadFile(p.MetaPath())
	if err != nil {
		return model.ProjectMeta{}, ProjectError{Path: p.Root, Reason: "cannot read " + MetaFile, Err: err}
	}
	var meta model.ProjectMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return model.ProjectMeta{}, ProjectError{Path: p.Root, Reason: "malformed " + MetaFile, Err: err}
	}
	return meta, nil
}

// SaveProject writes chart.json and meta.json, each atomically.
func SaveProject(p ProjectPath, meta model.ProjectMeta, c model.Chart) error {
	chartBytes, err := EncodeChart(c)
	if err != nil {
		return tag(err)
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return tag(err)
	}
	if err := atomicWriteFile(p.Root, ChartFile+".*.tmp", p.ChartPath(), chartBytes, 0o644); err != nil {
		return tag(err)
	}
	if err := atomicWriteFile(p.Root, MetaFile+".*.tmp", p.MetaPath(), metaBytes, 0o644); err != nil {
		return tag(err)
	}
	return nil
}

// WriteChart rewrites chart.json alone, atomically.
func WriteChart(p ProjectPath, c model.Chart) error {
	b, err := EncodeChart(c)
	if err != nil {
		return tag(err)
	}
	return tag(atomicWriteFile(p.Root, ChartFile+".*.tmp", p.ChartPath(), b, 0o644))
}

// CreateProject makes a new project in root (which must be empty or absent), copying the
// music and illustration files in with their extensions preserved.
func CreateProject(root, music, illustration string, meta model.ProjectMeta) (ProjectPath, error) {
	root = filepath.Clean(root)
	musicExt, err := assetExt(music, MusicExtensions)
	if err != nil {
		return ProjectPath{}, tag(err)
	}
	illustrationExt, err := assetExt(illustration, IllustrationExtensions)
	if err != nil {
		return ProjectPath{}, tag(err)
	}
	if entries, err := os.ReadDir(root); err == nil && len(entries) > 0 {
		return ProjectPath{}, tag(ProjectError{Path: root, Reason: "directory is not empty"})
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ProjectPath{}, tag(IOError{Op: "read", Path: root, Err: err})
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return ProjectPath{}, tag(IOError{Op: "create directory", Path: root, Err: err})
	}

	p := ProjectPath{Root: root}
	if err := CopyFile(music, filepath.Join(root, "music."+musicExt)); err != nil {
		return ProjectPath{}, tag(err)
	}
	if err := CopyFile(illustration, filepath.Join(root, "illustration."+illustrationExt)); err != nil {
		return ProjectPath{}, tag(err)
	}
	if err := SaveProject(p, meta, NewChart()); err != nil {
		return ProjectPath{}, err
	}
	return p, nil
}

func assetExt(path string, allowed []string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, a := range allowed {
		if a == ext {
			return ext, nil
		}
	}
	return "", ProjectError{Path: path, Reason: fmt.Sprintf("unsupported file type %q (want %s)", ext, strings.Join(allowed, ", "))}
}
