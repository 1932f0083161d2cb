package run

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/chriserin/cuke/internal/ast"
)

// Target is a feature file and the lines selected in it. No lines means
// the whole file.
type Target struct {
	Path  string
	Lines []int
}

// Filter is the line filter for the target's feature.
func (t Target) Filter() ast.LineFilter {
	return ast.NewLineFilter(t.Lines...)
}

// ParseTarget splits "path[:line[:line...]]".
func ParseTarget(arg string) (Target, error) {
	parts := strings.Split(arg, ":")
	end := len(parts)
	for end > 1 {
		if _, err := strconv.Atoi(parts[end-1]); err != nil {
			break
		}
		end--
	}
	t := Target{Path: strings.Join(parts[:end], ":")}
	if t.Path == "" {
		return t, fmt.Errorf("invalid target %q", arg)
	}
	for _, p := range parts[end:] {
		n, _ := strconv.Atoi(p)
		if n <= 0 {
			return t, fmt.Errorf("invalid line %d in %q", n, arg)
		}
		t.Lines = append(t.Lines, n)
	}
	return t, nil
}

// Resolve turns command line arguments into feature file targets.
// Directories expand to the files below them matching glob. Targets naming
// the same file are merged.
func Resolve(args []string, glob string) ([]Target, error) {
	var (
		targets []Target
		index   = make(map[string]int)
	)
	add := func(t Target) {
		if i, ok := index[t.Path]; ok {
			// A whole-file target wins over line targets.
			if len(targets[i].Lines) == 0 || len(t.Lines) == 0 {
				targets[i].Lines = nil
			} else {
				targets[i].Lines = append(targets[i].Lines, t.Lines...)
			}
			return
		}
		index[t.Path] = len(targets)
		targets = append(targets, t)
	}

	for _, arg := range args {
		t, err := ParseTarget(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(t.Path)
		if err != nil {
			return nil, fmt.Errorf("feature path: %w", err)
		}
		if !info.IsDir() {
			add(t)
			continue
		}
		files, err := expand(t.Path, glob)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(Target{Path: f})
		}
	}
	return targets, nil
}

func expand(dir, glob string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %s/%s: %w", dir, glob, err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}
