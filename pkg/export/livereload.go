package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// LiveReloadPath is the SSE endpoint browsers subscribe to
const LiveReloadPath = "/__preview__/events"

// LiveReloadHub manages SSE connections and tells browsers to reload the
// page after the dataset changed.
type LiveReloadHub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[chan struct{}]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewLiveReloadHub creates a hub with no clients
func NewLiveReloadHub(logger *slog.Logger) *LiveReloadHub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LiveReloadHub{
		logger:  logger,
		clients: make(map[chan struct{}]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Stop disconnects every client
func (h *LiveReloadHub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		close(ch)
	}
	h.clients = make(map[chan struct{}]struct{})
}

// ClientCount returns the number of connected clients.
func (h *LiveReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify sends a reload event to every connected client. Clients that
// already have one pending are skipped.
func (h *LiveReloadHub) Notify() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.logger.Debug("live reload", "clients", len(h.clients))
	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SSEHandler returns an HTTP handler for the SSE endpoint.
func (h *LiveReloadHub) SSEHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		clientCh := make(chan struct{}, 1)
		h.mu.Lock()
		h.clients[clientCh] = struct{}{}
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			delete(h.clients, clientCh)
			h.mu.Unlock()
		}()

		fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-h.ctx.Done():
				return
			case _, ok := <-clientCh:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: {\"action\":\"reload\"}\n\n")
				flusher.Flush()
			}
		}
	}
}

// LiveReloadScript reconnects with backoff and reloads the page on events.
const LiveReloadScript = `<script>
(function() {
  if (typeof(EventSource) === 'undefined') return;
  var delay = 1000;
  function connect() {
    var es = new EventSource('` + LiveReloadPath + `');
    es.addEventListener('connected', function() { delay = 1000; });
    es.addEventListener('reload', function() { location.reload(); });
    es.onerror = function() {
      es.close();
      setTimeout(connect, delay);
      delay = Math.min(delay * 2, 30000);
    };
  }
  connect();
})();
</script>`

// liveReloadMiddleware injects LiveReloadScript into HTML responses.
func liveReloadMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		irw := &injectingResponseWriter{
			ResponseWriter: w,
			inject:         []byte(LiveReloadScript),
		}
		next.ServeHTTP(irw, r)
		irw.Flush()
	})
}

// injectingResponseWriter buffers an HTML body and inserts the script
// before the last </body>. Non-HTML responses pass through.
type injectingResponseWriter struct {
	http.ResponseWriter
	inject    []byte
	buf       []byte
	committed bool
}

func (w *injectingResponseWriter) isHTML() bool {
	ct := w.Header().Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "text/html")
}

func (w *injectingResponseWriter) Write(b []byte) (int, error) {
	if w.committed || !w.isHTML() {
		w.committed = true
		return w.ResponseWriter.Write(b)
	}
	w.buf = append(w.buf, b...)
	return len(b), nil
}

// Flush writes the buffered body with the script injected.
func (w *injectingResponseWriter) Flush() {
	if !w.committed && len(w.buf) > 0 {
		w.committed = true
		out := w.buf
		if idx := bytes.LastIndex(out, []byte("</body>")); idx >= 0 {
			out = make([]byte, 0, len(w.buf)+len(w.inject))
			out = append(out, w.buf[:idx]...)
			out = append(out, w.inject...)
			out = append(out, w.buf[idx:]...)
		} else {
			out = append(out, w.inject...)
		}
		w.ResponseWriter.Write(out)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
