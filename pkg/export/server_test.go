package export

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestParseQuery(t *testing.T) {
	cols := model.VolunteerColumns().Resolve(testHeaders)
	q := url.Values{
		"sort":          {"minimum age"},
		"dir":           {"desc"},
		"q":             {"  bank "},
		"f.Minimum age": {"under12", "12-17"},
		"f.Group size":  {"21+"},
		"f.":            {"ignored"},
		"unrelated":     {"x"},
	}

	state := ParseQuery(q, cols)
	assert.Equal(t, "bank", state.Query)
	assert.Equal(t, model.SortSelection{Column: "Minimum age", Direction: model.Descending}, state.Sort)
	assert.Equal(t, []string{"under12", "12-17"}, state.Filters.Values("Minimum age"))
	assert.Equal(t, []string{"21+"}, state.Filters.Values("Max group size"), "aliases resolve to the key")
	assert.Equal(t, []string{"Max group size", "Minimum age"}, state.Filters.Columns())
}

func TestParseQuery_IgnoresBadSort(t *testing.T) {
	cols := model.VolunteerColumns().Resolve(testHeaders)

	state := ParseQuery(url.Values{"sort": {"Nope"}}, cols)
	assert.False(t, state.Sort.Active())

	state = ParseQuery(url.Values{"sort": {"Service"}, "dir": {"sideways"}}, cols)
	assert.Equal(t, model.SortSelection{Column: "Service"}, state.Sort)
}

func TestEncodeQuery_RoundTrip(t *testing.T) {
	cols := model.VolunteerColumns().Resolve(testHeaders)
	state := view.NewState().
		WithFilter("Minimum age", []string{"18+", "no-minimum"}).
		WithQuery("park").
		WithSort(model.SortSelection{Column: "Service", Direction: model.Descending})

	back := ParseQuery(EncodeQuery(state), cols)
	assert.Equal(t, state.Key(), back.Key())
	assert.Equal(t, "/", stateURL(view.NewState()))
}

func TestServer_Page(t *testing.T) {
	s := NewServer(testDataset(), ServerOptions{Title: "Opportunities", Description: "Find a shift."})
	rec := get(t, s.Handler(), "/?sort=Service&dir=asc")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()

	assert.Contains(t, body, "<h1>Opportunities</h1>")
	assert.Contains(t, body, "Find a shift.")
	assert.Contains(t, body, "Showing 4 of 4 opportunities")
	assert.Contains(t, body, `<a href="https://example.org/food">Food bank</a>`)
	assert.Contains(t, body, "<td>Trail care</td>", "blank URL renders the label only")
	assert.Contains(t, body, "Service ▲")
	assert.Contains(t, body, `dir=desc&amp;sort=Service`, "active header links to the toggled sort")
	assert.Contains(t, body, `name="f.Minimum age" value="under12"`)
	assert.NotContains(t, body, "__preview__")

	assert.Less(t, strings.Index(body, "Feeding"), strings.Index(body, "Food bank"))
	assert.Less(t, strings.Index(body, "Reading buddy"), strings.Index(body, "Trail care"))
}

func TestServer_PageFiltersAndSearch(t *testing.T) {
	s := NewServer(testDataset(), ServerOptions{})
	h := s.Handler()

	body := get(t, h, "/?f.Minimum+age=under12&f.Minimum+age=no-minimum").Body.String()
	assert.Contains(t, body, "Showing 2 of 4 opportunities")
	assert.Contains(t, body, `value="under12" checked`)
	assert.NotContains(t, body, "Food bank")

	body = get(t, h, "/?q=HARVEST").Body.String()
	assert.Contains(t, body, "Showing 1 of 4 opportunities")
	assert.Contains(t, body, `value="HARVEST"`)

	body = get(t, h, "/?q=nothing-matches").Body.String()
	assert.Contains(t, body, "No opportunities match the current filters.")
}

func TestServer_EmptyDatasetWithError(t *testing.T) {
	s := NewServer(nil, ServerOptions{LoadErr: errors.New("fetch failed")})
	body := get(t, s.Handler(), "/").Body.String()

	assert.Contains(t, body, "Could not load opportunities: fetch failed")
	assert.Contains(t, body, "No opportunities loaded.")
	assert.Contains(t, body, "<th>")
}

func TestServer_API(t *testing.T) {
	s := NewServer(testDataset(), ServerOptions{})
	rec := get(t, s.Handler(), "/api/view?sort=Minimum+age&dir=desc")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var p ViewPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Len(t, p.Records, 4)
	assert.Equal(t, "Trail care", p.Records[0]["Service"], "blank sorts last ascending, first descending")
	assert.Equal(t, "Reading buddy", p.Records[3]["Service"])
}

func TestServer_DataCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Service\nFood bank\n"), 0644))

	s := NewServer(testDataset(), ServerOptions{Source: path})
	rec := get(t, s.Handler(), "/data.csv")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service\nFood bank\n", rec.Body.String())

	remote := NewServer(testDataset(), ServerOptions{Source: "https://example.org/sheet.csv"})
	rec = get(t, remote.Handler(), "/data.csv")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.org/sheet.csv", rec.Header().Get("Location"))

	none := NewServer(testDataset(), ServerOptions{})
	assert.Equal(t, http.StatusNotFound, get(t, none.Handler(), "/data.csv").Code)
}

func TestServer_ReloadKeepsDatasetOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Organization,Service\nA,One\nB,Two\n"), 0644))

	s := NewServer(nil, ServerOptions{Source: path})
	require.NoError(t, s.Reload(context.Background()))
	assert.Contains(t, get(t, s.Handler(), "/").Body.String(), "Showing 2 of 2 opportunities")

	require.NoError(t, os.Remove(path))
	require.Error(t, s.Reload(context.Background()))

	body := get(t, s.Handler(), "/").Body.String()
	assert.Contains(t, body, "Showing 2 of 2 opportunities")
	assert.Contains(t, body, "Could not load opportunities")
}

func TestServer_LiveReloadInjectsScript(t *testing.T) {
	s := NewServer(testDataset(), ServerOptions{LiveReload: true})
	body := get(t, s.Handler(), "/").Body.String()

	idx := strings.Index(body, "EventSource('"+LiveReloadPath+"')")
	require.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, strings.LastIndex(body, "</body>"))
}

func TestServer_ReloadNotifiesClients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Organization\nA\n"), 0644))

	s := NewServer(nil, ServerOptions{Source: path, LiveReload: true})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.hub.Stop()

	resp, err := http.Get(ts.URL + LiveReloadPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 4)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
				events <- line
			}
		}
		close(events)
	}()

	assert.Equal(t, "connected", <-events)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Reload(context.Background()))
	select {
	case ev := <-events:
		assert.Equal(t, "reload", ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload event")
	}
}

func TestInjectingResponseWriter_PassesNonHTML(t *testing.T) {
	h := liveReloadMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"a":1}`)
	}))
	rec := get(t, h, "/")
	assert.Equal(t, `{"a":1}`, rec.Body.String())

	h = liveReloadMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<p>no body tag</p>")
	}))
	rec = get(t, h, "/")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<p>no body tag</p><script>"))
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	s := NewServer(testDataset(), ServerOptions{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, "127.0.0.1:0", nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
