package export

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/voltable/pkg/loader"
	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
	"github.com/vanderheijden86/voltable/pkg/watcher"
)

// Query parameters understood by the page and /api/view
const (
	ParamSort   = "sort"
	ParamDir    = "dir"
	ParamQuery  = "q"
	ParamFilter = "f." // prefix; the column follows
)

// ServerOptions configures a Server
type ServerOptions struct {
	Source      string // CSV path or URL served at /data.csv and reloaded on change
	Title       string
	Description string
	LoadErr     error // initial load failure, shown on the page
	LiveReload  bool
	Logger      *slog.Logger
}

// Server renders the opportunities table as an HTML page. Each request
// derives its own view from the query string; the dataset is shared.
type Server struct {
	source      string
	title       string
	description string
	logger      *slog.Logger
	hub         *LiveReloadHub
	page        *template.Template

	mu      sync.RWMutex
	ds      *model.Dataset
	cols    model.Columns
	mat     *view.Materializer
	loadErr error
}

// NewServer creates a server over ds
func NewServer(ds *model.Dataset, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source:      opts.Source,
		title:       opts.Title,
		description: opts.Description,
		logger:      logger,
		page:        template.Must(template.New("page").Parse(pageTemplate)),
	}
	if s.title == "" {
		s.title = "Volunteer Opportunities"
	}
	if opts.LiveReload {
		s.hub = NewLiveReloadHub(logger)
	}
	s.SetDataset(ds, opts.LoadErr)
	return s
}

// SetDataset swaps the served dataset. A non-nil err is shown on the page
// and keeps the previous dataset when ds is nil.
func (s *Server) SetDataset(ds *model.Dataset, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadErr = err
	if ds == nil {
		if s.ds != nil {
			return
		}
		ds = model.EmptyDataset()
	}
	cols := model.VolunteerColumns().Resolve(ds.Columns())
	s.ds = ds
	s.cols = cols
	s.mat = view.NewMaterializer(cols)
}

func (s *Server) snapshot() (*model.Dataset, model.Columns, *view.Materializer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.cols, s.mat, s.loadErr
}

// Reload loads the source again and notifies live-reload clients
func (s *Server) Reload(ctx context.Context) error {
	if s.source == "" {
		return nil
	}
	ds, err := loader.Load(ctx, s.source)
	if err != nil {
		s.logger.Warn("reload failed", "source", s.source, "err", err)
		s.SetDataset(nil, err)
		return err
	}
	s.SetDataset(ds, nil)
	s.logger.Info("dataset reloaded", "source", s.source, "records", ds.Len())
	if s.hub != nil {
		s.hub.Notify()
	}
	return nil
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	var page http.Handler = http.HandlerFunc(s.handlePage)
	if s.hub != nil {
		page = liveReloadMiddleware(page)
		mux.Handle(LiveReloadPath, s.hub.SSEHandler())
	}
	mux.Handle("/{$}", page)
	mux.HandleFunc("/data.csv", s.handleData)
	mux.HandleFunc("/api/view", s.handleAPI)
	return mux
}

// Serve listens on addr until ctx is done. When w is non-nil its change
// events reload the dataset.
func (s *Server) Serve(ctx context.Context, addr string, w *watcher.Watcher) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", "addr", addr, "source", s.source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if s.hub != nil {
			s.hub.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if w != nil {
		g.Go(func() error {
			if err := w.Start(); err != nil {
				return fmt.Errorf("watch %s: %w", w.Path(), err)
			}
			defer w.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-w.Changed():
					_ = s.Reload(ctx)
				}
			}
		})
	}
	return g.Wait()
}

// currentView derives the view requested by the query string
func (s *Server) currentView(q url.Values) (view.View, *model.Dataset, error) {
	ds, cols, mat, loadErr := s.snapshot()
	return mat.View(ds, ParseQuery(q, cols)), ds, loadErr
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v, ds, loadErr := s.currentView(r.URL.Query())
	data := newPageData(s.title, s.description, v, ds, loadErr)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	v, _, _ := s.currentView(r.URL.Query())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewViewPayload(v)); err != nil {
		s.logger.Error("encode view", "err", err)
	}
}

// handleData serves the raw resource: the file itself, or a redirect to
// the remote URL.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	switch {
	case s.source == "":
		http.NotFound(w, r)
	case loader.IsURL(s.source):
		http.Redirect(w, r, s.source, http.StatusFound)
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		http.ServeFile(w, r, s.source)
	}
}

// ParseQuery builds a view state from query parameters. Column names may
// be titles, keys or aliases; an unknown sort column or direction is
// ignored.
func ParseQuery(q url.Values, cols model.Columns) view.State {
	state := view.NewState().WithQuery(strings.TrimSpace(q.Get(ParamQuery)))

	for name, values := range q {
		col, ok := strings.CutPrefix(name, ParamFilter)
		if !ok || col == "" {
			continue
		}
		if spec, found := cols.Find(col); found {
			col = spec.Key
		}
		state = state.WithFilter(col, append(state.Filters.Values(col), values...))
	}

	if name := q.Get(ParamSort); name != "" {
		if spec, ok := cols.Find(name); ok && spec.Sortable() {
			dir, err := model.ParseDirection(q.Get(ParamDir))
			if err != nil {
				dir = model.Ascending
			}
			state = state.WithSort(model.SortSelection{Column: spec.Key, Direction: dir})
		}
	}
	return state
}

// EncodeQuery is the inverse of ParseQuery
func EncodeQuery(state view.State) url.Values {
	q := url.Values{}
	if query := strings.TrimSpace(state.Query); query != "" {
		q.Set(ParamQuery, query)
	}
	for _, col := range state.Filters.Columns() {
		for _, v := range state.Filters.Values(col) {
			q.Add(ParamFilter+col, v)
		}
	}
	if state.Sort.Active() {
		q.Set(ParamSort, state.Sort.Column)
		q.Set(ParamDir, state.Sort.Direction.String())
	}
	return q
}

func stateURL(state view.State) string {
	if enc := EncodeQuery(state).Encode(); enc != "" {
		return "/?" + enc
	}
	return "/"
}
