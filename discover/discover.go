// Package discover walks a folder tree looking for files that can serve as
// the folder's icon.
package discover

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/schollz/logger"
	"golang.org/x/time/rate"

	"github.com/dentalwings/folderstyle/iconpath"
)

// Checker reports whether a module file carries icons.
type Checker interface {
	HasIcons(path string) bool
}

type Options struct {
	MaxDepth int
	Workers  int
	// Exclude holds gitignore-style patterns matched against paths
	// relative to the scanned root.
	Exclude []string
	// Interval throttles Progress; the final report is always delivered.
	Interval time.Duration
	Progress func(found []string, done bool)
}

type Scanner struct {
	check   Checker
	opts    Options
	exclude *ignore.GitIgnore
}

func NewScanner(c Checker, opts Options) *Scanner {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 6
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	s := &Scanner{check: c, opts: opts}
	if len(opts.Exclude) > 0 {
		s.exclude = ignore.CompileIgnoreLines(opts.Exclude...)
	}
	return s
}

type dir struct {
	path  string
	depth int
}

// Scan walks root breadth first and returns the icon sources found, ranked.
// Symlinked directories are not followed and unreadable directories are
// skipped. On cancellation the files found so far are returned together
// with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	var (
		found    []string
		sometime = rate.Sometimes{Interval: s.opts.Interval}
	)
	report := func(done bool) {
		if s.opts.Progress == nil {
			return
		}
		snapshot := Rank(append([]string(nil), found...))
		if done {
			s.opts.Progress(snapshot, true)
			return
		}
		sometime.Do(func() { s.opts.Progress(snapshot, false) })
	}

	queue := []dir{{path: root}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return Rank(found), err
		}
		cur := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(cur.path)
		if err != nil {
			if cur.path == root {
				return nil, err
			}
			log.Debugf("skipping %s: %v", cur.path, err)
			continue
		}

		var files []string
		for _, e := range entries {
			p := filepath.Join(cur.path, e.Name())
			if s.excluded(root, p) {
				continue
			}
			switch {
			case e.Type()&fs.ModeSymlink != 0:
				// never followed, whether it points at a file or a directory
			case e.IsDir():
				if cur.depth < s.opts.MaxDepth {
					queue = append(queue, dir{path: p, depth: cur.depth + 1})
				}
			case e.Type().IsRegular() && iconpath.IsIconSource(p):
				files = append(files, p)
			}
		}

		hits, err := s.checkAll(ctx, files)
		found = append(found, hits...)
		if err != nil {
			return Rank(found), err
		}
		if len(hits) > 0 {
			report(false)
		}
	}
	found = Rank(found)
	report(true)
	return found, nil
}

func (s *Scanner) excluded(root, path string) bool {
	if s.exclude == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return s.exclude.MatchesPath(filepath.ToSlash(rel))
}

// checkAll tests files with a bounded number of workers and keeps the
// directory order of the hits.
func (s *Scanner) checkAll(ctx context.Context, files []string) ([]string, error) {
	ok := make([]bool, len(files))
	sem := make(chan struct{}, s.opts.Workers)
	var wg sync.WaitGroup
	for i, f := range files {
		if !iconpath.IsModule(f) {
			ok[i] = true
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			defer func() { <-sem }()
			ok[i] = s.check.HasIcons(f)
		}(i, f)
	}
	wg.Wait()

	var hits []string
	for i, f := range files {
		if ok[i] {
			hits = append(hits, f)
		}
	}
	return hits, ctx.Err()
}

// Rank orders candidates the way they are offered: executables first,
// uninstallers last, otherwise by path.
func Rank(paths []string) []string {
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := rankOf(paths[i]), rankOf(paths[j])
		if a != b {
			return a < b
		}
		return paths[i] < paths[j]
	})
	return dedupe(paths)
}

func rankOf(path string) int {
	name := strings.ToLower(filepath.Base(path))
	r := 1
	if strings.HasSuffix(name, ".exe") {
		r = 0
	}
	if strings.Contains(name, "uninstall") || strings.HasPrefix(name, "unins") {
		r += 2
	}
	return r
}

func dedupe(paths []string) []string {
	out := paths[:0]
	for i, p := range paths {
		if i > 0 && p == paths[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ErrNotDir is returned when the scan root is not a directory.
var ErrNotDir = errors.New("discover: not a directory")

// Check validates root before a scan.
func Check(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return ErrNotDir
	}
	return nil
}
