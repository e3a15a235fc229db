package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-knawledge/internal/fileutil"
	"github.com/alnah/go-knawledge/internal/log"
)

// Sentinel errors for library operations.
var (
	ErrNotDirectory = errors.New("library root is not a directory")
	ErrNotFound     = errors.New("document not found")
)

// namespace seeds name-based document IDs, so an unchanged relative path
// always maps to the same ID.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("knawledge:document"))

// Entry is one indexed document.
type Entry struct {
	ID      string
	RelPath string // slash-separated, relative to the library root
	Slug    string // RelPath without its extension
	Meta    Meta
	ModTime time.Time
}

// Library is an immutable index of the Markdown files under one root.
type Library struct {
	fsys    fs.FS
	entries []*Entry
	byID    map[string]*Entry
	bySlug  map[string]*Entry
}

// Scan indexes every Markdown file in fsys. Hidden directories are skipped.
// A file that cannot be read or parsed is logged and left out.
func Scan(ctx context.Context, fsys fs.FS, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = log.Discard()
	}

	info, err := fs.Stat(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("scanning library: %w", err)
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}

	paths, err := markdownPaths(ctx, fsys)
	if err != nil {
		return nil, err
	}

	parsed := make([]*Entry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := loadEntry(fsys, p)
			if err != nil {
				logger.Warn("skipping document", "path", p, "error", err)
				return nil
			}
			parsed[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lib := &Library{
		fsys:   fsys,
		byID:   make(map[string]*Entry, len(paths)),
		bySlug: make(map[string]*Entry, len(paths)),
	}
	for _, e := range parsed {
		if e == nil {
			continue
		}
		lib.add(e, logger)
	}
	logger.Debug("library scanned", "documents", len(lib.entries))
	return lib, nil
}

// markdownPaths lists Markdown files in walk order (lexical).
func markdownPaths(ctx context.Context, fsys fs.FS) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if fileutil.IsMarkdownFile(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning library: %w", err)
	}
	return paths, nil
}

func loadEntry(fsys fs.FS, p string) (*Entry, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(fsys, p)
	if err != nil {
		return nil, err
	}
	meta, _, err := Parse(string(data))
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSuffix(p, path.Ext(p))
	if meta.Title == "" {
		meta.Title = path.Base(slug)
	}
	return &Entry{
		RelPath: p,
		Slug:    slug,
		Meta:    meta,
		ModTime: info.ModTime(),
	}, nil
}

// add assigns the entry its ID and indexes it. A front matter id wins unless
// an earlier document already claimed it.
func (l *Library) add(e *Entry, logger *slog.Logger) {
	id := e.Meta.ID
	if id != "" {
		if _, taken := l.byID[id]; taken {
			logger.Warn("duplicate document id, using generated id", "id", id, "path", e.RelPath)
			id = ""
		}
	}
	if id == "" {
		id = uuid.NewSHA1(namespace, []byte(e.RelPath)).String()
	}
	e.ID = id

	l.entries = append(l.entries, e)
	l.byID[id] = e
	if _, ok := l.bySlug[e.Slug]; !ok {
		l.bySlug[e.Slug] = e
	}
}

// Entries returns every document sorted by title, then path.
func (l *Library) Entries() []*Entry {
	out := append([]*Entry(nil), l.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := strings.ToLower(out[i].Meta.Title), strings.ToLower(out[j].Meta.Title)
		if ti != tj {
			return ti < tj
		}
		return out[i].RelPath < out[j].RelPath
	})
	return out
}

// Len returns the number of indexed documents.
func (l *Library) Len() int { return len(l.entries) }

// Lookup finds a document by ID.
func (l *Library) Lookup(id string) (*Entry, error) {
	if e, ok := l.byID[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// LookupSlug finds a document by slug.
func (l *Library) LookupSlug(slug string) (*Entry, error) {
	if e, ok := l.bySlug[slug]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
}

// Read returns the current source of e.
func (l *Library) Read(e *Entry) (string, error) {
	data, err := fs.ReadFile(l.fsys, e.RelPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", e.RelPath, err)
	}
	return string(data), nil
}
