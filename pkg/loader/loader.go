// Package loader reads the opportunities sheet into a model.Dataset.
//
// The source is either a local CSV file or an http(s) URL. Loading is a single
// attempt: callers that must always render use LoadOrEmpty, which turns any
// failure into an empty dataset and a log line.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/voltable/pkg/model"
)

// DefaultFetchTimeout bounds a URL fetch when the context has no deadline.
const DefaultFetchTimeout = 15 * time.Second

// ErrMissingHeader is returned when the source has no header line
var ErrMissingHeader = errors.New("missing header row")

// LoadError wraps a load failure with the phase it happened in.
type LoadError struct {
	Source string
	Phase  string // "open", "fetch", "parse"
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Phase, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// IsURL reports whether source should be fetched over HTTP
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads and parses the source.
func Load(ctx context.Context, source string) (*model.Dataset, error) {
	var (
		data  []byte
		err   error
		phase = "open"
	)
	if IsURL(source) {
		phase = "fetch"
		data, err = fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Phase: phase, Cause: err}
	}

	ds, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: source, Phase: "parse", Cause: err}
	}
	return ds, nil
}

// LoadOrEmpty loads the source once. On failure it logs the error and returns
// an empty dataset; the error is still returned for callers that want to show it.
func LoadOrEmpty(ctx context.Context, source string, logger *slog.Logger) (*model.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	ds, err := Load(ctx, source)
	if err != nil {
		logger.Error("dataset load failed", "source", source, "err", err)
		return model.EmptyDataset(), err
	}
	logger.Debug("dataset loaded",
		"source", source,
		"records", ds.Len(),
		"columns", len(ds.Columns()),
		"took", time.Since(start))
	return ds, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// ParseCSV parses delimited text with a header line into a dataset.
//
// Blank lines and rows whose fields are all blank are skipped. Short rows leave
// the trailing columns absent and extra fields are dropped. Values stay strings.
func ParseCSV(r io.Reader) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
	}
	if allBlank(columns) {
		return nil, ErrMissingHeader
	}

	var rows []map[string]string
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if allBlank(fields) {
			continue
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i >= len(fields) {
				break
			}
			if col == "" {
				continue
			}
			row[col] = fields[i]
		}
		rows = append(rows, row)
	}

	return model.NewDataset(columns, rows), nil
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
