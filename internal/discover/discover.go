// Package discover finds the file manim produced. manim does not report its
// output path, so it is inferred from the media/videos/<script>/<quality>/
// layout manim uses.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"manimark/internal/model"
)

// ErrNotFound is returned when no file named after the scene exists under the
// media tree.
var ErrNotFound = errors.New("rendered video not found")

// VideosDir returns the directory manim writes videos under.
func VideosDir(mediaDir string) string {
	return filepath.Join(mediaDir, "videos")
}

// DefaultMediaDir is manim's media directory for a script rendered from its own directory.
func DefaultMediaDir(scriptPath string) string {
	return filepath.Join(filepath.Dir(scriptPath), "media")
}

// VideoName is the file name manim gives a scene's final video.
func VideoName(scene string) string {
	return scene + ".mp4"
}

// Find walks <mediaDir>/videos in lexical order and returns the first
// <scene>.mp4 whose path contains the quality's directory fragment. If none
// does, the first <scene>.mp4 anywhere in the tree is returned with
// Fallback set. A missing tree or no match yields ErrNotFound.
func Find(fsys afero.Fs, mediaDir, scene string, q model.Quality) (model.RenderedVideo, error) {
	root := VideosDir(mediaDir)
	if fi, err := fsys.Stat(root); err != nil || !fi.IsDir() {
		return model.RenderedVideo{}, fmt.Errorf("%w: %s does not exist", ErrNotFound, root)
	}

	name := VideoName(scene)
	fragment := q.DirFragment()
	var first, preferred string

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || info.Name() != name {
			return nil
		}
		if first == "" {
			first = path
		}
		if strings.Contains(path, fragment) {
			preferred = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) && !errors.Is(err, filepath.SkipDir) {
		return model.RenderedVideo{}, fmt.Errorf("walk %s: %w", root, err)
	}

	switch {
	case preferred != "":
		return model.RenderedVideo{Path: preferred}, nil
	case first != "":
		return model.RenderedVideo{Path: first, Fallback: true}, nil
	default:
		return model.RenderedVideo{}, fmt.Errorf("%w: no %s under %s", ErrNotFound, name, root)
	}
}
