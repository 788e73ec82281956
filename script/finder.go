package script

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/pranas/storyrunner"
)

// Finder lists the step scripts under a directory as step candidates.
type Finder struct {
	fs   afero.Fs
	root string
}

func NewFinder(fs afero.Fs, root string) *Finder {
	return &Finder{fs: fs, root: root}
}

// Candidates returns one candidate per .yaml or .yml file, named by its
// path with dots for separators: etsy/pages/home.yaml is etsy.pages.home.
// A missing directory yields no candidates.
func (f *Finder) Candidates() ([]storyrunner.Candidate, error) {
	var candidates []storyrunner.Candidate

	if _, err := f.fs.Stat(f.root); os.IsNotExist(err) {
		return candidates, nil
	}

	err := afero.Walk(f.fs, f.root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(strings.TrimSuffix(rel, ext)), "/", ".")

		candidates = append(candidates, &candidate{fs: f.fs, path: path, name: name})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "find step scripts in %s", f.root)
	}

	return candidates, nil
}

type candidate struct {
	fs   afero.Fs
	path string
	name string
}

func (c *candidate) Name() string {
	return c.name
}

func (c *candidate) Instantiate() (storyrunner.Bundle, error) {
	src, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return nil, err
	}
	b, err := Compile(c.name, src)
	if err != nil {
		return nil, err
	}
	return b, nil
}
