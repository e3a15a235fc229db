package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-knawledge"
	"github.com/alnah/go-knawledge/internal/config"
	"github.com/alnah/go-knawledge/internal/document"
	"github.com/alnah/go-knawledge/internal/log"
)

// shutdownTimeout bounds graceful shutdown after the context ends.
const shutdownTimeout = 5 * time.Second

// runServeCmd parses flags and runs the serve command.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runServe(ctx, positional, flags, env)
}

// runServe indexes the docs directory and serves it until ctx ends.
func runServe(ctx context.Context, positional []string, flags *serveFlags, env *Environment) error {
	cfg, _, err := loadCommandConfig(ctx, flags.common.config, env)
	if err != nil {
		return err
	}
	mergePageFlags(&flags.page, cfg)
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}

	logger := env.Logger(flags.common.verbose)
	s, err := newServer(ctx, cfg, os.DirFS(dir), logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return &listenError{addr: cfg.Server.Addr, err: err}
	}

	srv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return log.IntoContext(ctx, logger) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %d documents from %s on http://%s\n", s.library.Load().Len(), dir, ln.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// server is the interactive preview host. It is one interactive context:
// its renderer registers the copy-code script into its ScriptSet once,
// and every page it serves carries those scripts.
type server struct {
	cfg      *config.Config
	docs     fs.FS
	library  atomic.Pointer[document.Library]
	renderer *knawledge.Renderer
	scripts  *knawledge.ScriptSet
	pages    *pageBuilder
	index    *template.Template
	logger   *slog.Logger
}

// newServer scans docs and prepares the renderer and page builder.
func newServer(ctx context.Context, cfg *config.Config, docs fs.FS, logger *slog.Logger) (*server, error) {
	pages, err := newPageBuilder(cfg)
	if err != nil {
		return nil, err
	}

	copyScript, err := pages.copyScript()
	if err != nil {
		return nil, err
	}

	scripts := knawledge.NewScriptSet()
	opts := append(cfg.RendererOptions(),
		knawledge.WithScriptRegistrar(scripts),
		knawledge.WithGuard(&knawledge.Guard{}),
		knawledge.WithCopyScript(copyScript),
		knawledge.WithLogger(logger),
	)
	renderer, err := knawledge.NewRenderer(opts...)
	if err != nil {
		return nil, err
	}

	lib, err := document.Scan(ctx, docs, logger)
	if err != nil {
		return nil, err
	}

	s := &server{
		cfg:      cfg,
		docs:     docs,
		renderer: renderer,
		scripts:  scripts,
		pages:    pages,
		index:    template.Must(template.New("index").Parse(indexTemplate)),
		logger:   logger,
	}
	s.library.Store(lib)
	return s, nil
}

// routes builds the HTTP handler.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.Index)
	r.Get("/page/*", s.Page)
	r.Get("/doc/{id}", s.Doc)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) { s.write404(w) })

	return r
}

// logRequests logs one line per request and stores the request logger in
// the context.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(log.IntoContext(r.Context(), l)))

		l.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// indexEntry is one row of the index page.
type indexEntry struct {
	Title       string
	Href        string
	Tags        []string
	ReadingTime string
	Idle        string
}

const indexTemplate = `<h1>{{.Title}}</h1>
{{- if .Entries}}
<ul class="doc-index">
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Title}}</a>
{{- if .ReadingTime}} <span class="reading-time">{{.ReadingTime}}</span>{{end}}
{{- if .Idle}} <span class="updated">{{.Idle}}</span>{{end}}
{{- range .Tags}} <span class="tag">{{.}}</span>{{end}}</li>
{{- end}}
</ul>
{{- else}}
<p>No documents.</p>
{{- end}}
`

// Index lists every document. The library is rescanned first so new
// files show up without a restart; a failed rescan keeps the last index.
func (s *server) Index(w http.ResponseWriter, r *http.Request) {
	l := log.FromContext(r.Context())

	if lib, err := document.Scan(r.Context(), s.docs, l); err != nil {
		l.Warn("rescanning library", "error", err)
	} else {
		s.library.Store(lib)
	}

	entries := s.library.Load().Entries()
	rows := make([]indexEntry, 0, len(entries))
	for _, e := range entries {
		row := indexEntry{
			Title:       e.Meta.Title,
			Href:        pageHref(e.Slug),
			Tags:        e.Meta.Tags,
			ReadingTime: readingTimeLabel(e.Meta.ReadingTime),
		}
		if !e.ModTime.IsZero() {
			row.Idle = humanize.Time(e.ModTime)
		}
		rows = append(rows, row)
	}

	var body strings.Builder
	data := struct {
		Title   string
		Entries []indexEntry
	}{Title: s.cfg.Server.Title, Entries: rows}
	if err := s.index.Execute(&body, data); err != nil {
		l.Error("index template", "error", err)
		s.write500(w)
		return
	}

	page, err := s.pages.wrap(s.cfg.Server.Title, body.String())
	if err != nil {
		l.Error("index page", "error", err)
		s.write500(w)
		return
	}
	writeHTML(w, page)
}

// Page renders the document whose slug is the rest of the path.
func (s *server) Page(w http.ResponseWriter, r *http.Request) {
	l := log.FromContext(r.Context())
	slug := strings.TrimSuffix(chi.URLParam(r, "*"), "/")

	lib := s.library.Load()
	e, err := lib.LookupSlug(slug)
	if err != nil {
		s.write404(w)
		return
	}

	content, err := lib.Read(e)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.write404(w)
			return
		}
		l.Error("reading document", "path", e.RelPath, "error", err)
		s.write500(w)
		return
	}

	res, err := s.renderer.Render(content)
	if err != nil {
		l.Warn("rendering document", "path", e.RelPath, "error", err)
		s.write500(w)
		return
	}
	if res.Meta.Title == "" {
		res.Meta.Title = e.Meta.Title
	}

	// Tags are read after rendering: the first interactive render is
	// what registers the copy-code script.
	page, err := s.pages.build(res, e.ModTime, s.scripts.Tags())
	if err != nil {
		l.Error("building page", "path", e.RelPath, "error", err)
		s.write500(w)
		return
	}
	writeHTML(w, page)
}

// Doc redirects a stable document ID to its page.
func (s *server) Doc(w http.ResponseWriter, r *http.Request) {
	e, err := s.library.Load().Lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.write404(w)
		return
	}
	http.Redirect(w, r, pageHref(e.Slug), http.StatusFound)
}

// pageHref returns the escaped URL path of a slug.
func pageHref(slug string) string {
	return (&url.URL{Path: "/page/" + slug}).EscapedPath()
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

func (s *server) write404(w http.ResponseWriter) {
	s.writeError(w, http.StatusNotFound, "Document not found.")
}

func (s *server) write500(w http.ResponseWriter) {
	s.writeError(w, http.StatusInternalServerError, "Something went wrong.")
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	page, err := s.pages.wrap(http.StatusText(status), "<h1>"+http.StatusText(status)+"</h1>\n<p>"+msg+"</p>\n")
	if err != nil {
		page = msg
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}
