package portrait

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoPortraits is returned when an author has no prepared portrait.
var ErrNoPortraits = errors.New("no portraits available")

// portraitExtensions are the prepared portrait formats.
var portraitExtensions = []string{".jpg", ".jpeg"}

// Pool lists the prepared portraits under Dir, one subdirectory per author.
type Pool struct {
	Dir string
}

// List returns the sorted portrait paths for author. It returns an error
// wrapping ErrNoPortraits when the author has none.
func (p Pool) List(author string) ([]string, error) {
	return sortedPortraits(filepath.Join(p.Dir, author))
}

// Pick chooses one of author's portraits uniformly at random. A nil rng uses
// the global source.
func (p Pool) Pick(author string, rng *rand.Rand) (string, error) {
	paths, err := p.List(author)
	if err != nil {
		return "", err
	}
	if rng == nil {
		return paths[rand.IntN(len(paths))], nil
	}
	return paths[rng.IntN(len(paths))], nil
}

// sortedPortraits lists prepared portraits in dir.
func sortedPortraits(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoPortraits, dir)
		}
		return nil, fmt.Errorf("read portrait dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), portraitExtensions) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoPortraits, dir)
	}
	return paths, nil
}
