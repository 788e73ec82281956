package storyrunner

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	storyFileExtension = ".story"
)

// StoryLocator finds story files on a filesystem.
type StoryLocator struct {
	fs afero.Fs
}

func NewStoryLocator(fs afero.Fs) *StoryLocator {
	return &StoryLocator{fs: fs}
}

// Find walks root and returns the stories matching **/*<filter>*.story,
// relative to root and in lexical order. No match is not an error.
func (l *StoryLocator) Find(root, filter string) ([]string, error) {
	pattern := "*" + filter + "*" + storyFileExtension
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.Wrapf(err, "story filter %q", filter)
	}

	paths := []string{}

	err := afero.Walk(l.fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		ok, _ := filepath.Match(pattern, fi.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "find stories in %s", root)
	}

	return paths, nil
}
