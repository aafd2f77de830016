package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/la-fiesta/storefront/internal/domain"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxSourceBytes      = 16 << 20
)

// preferredSheets lists worksheet names tried in order before falling back to
// the workbook's first sheet.
var preferredSheets = []string{"Products", "products", "Productos", "productos", "Sheet1"}

var errSourceTooLarge = errors.New("catalog: source exceeds size limit")

// LoaderDeps wires the sources and transport for catalog loading.
type LoaderDeps struct {
	// SpreadsheetURL locates the primary source: an http(s) URL or a local
	// file path.
	SpreadsheetURL string
	// JSONURL locates the fallback source, same addressing rules.
	JSONURL string
	Client  *http.Client
	// FetchTimeout bounds each source attempt so a hung fetch falls through
	// to the next source instead of stalling the session.
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// Loader populates the in-memory catalog from a spreadsheet source, falling
// back to a JSON array. Total failure of both sources degrades to an empty
// catalog rather than an error: the storefront stays renderable with zero
// data.
type Loader struct {
	sheetURL string
	jsonURL  string
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
}

// NewLoader constructs a Loader, defaulting the transport, timeout and
// logger.
func NewLoader(deps LoaderDeps) *Loader {
	client := deps.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := deps.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		sheetURL: strings.TrimSpace(deps.SpreadsheetURL),
		jsonURL:  strings.TrimSpace(deps.JSONURL),
		client:   client,
		timeout:  timeout,
		logger:   logger,
	}
}

// Load runs the two-step source sequence: spreadsheet first, JSON on any
// spreadsheet failure. The error return is reserved for a cancelled context;
// source failures are logged and absorbed.
func (l *Loader) Load(ctx context.Context) (domain.Catalog, error) {
	if catalog, err := l.loadSpreadsheet(ctx); err == nil {
		return catalog, nil
	} else {
		if ctx.Err() != nil {
			return domain.Catalog{}, ctx.Err()
		}
		l.logger.Warn("spreadsheet source failed, trying json fallback",
			zap.String("source", l.sheetURL), zap.Error(err))
	}

	if catalog, err := l.loadJSON(ctx); err == nil {
		return catalog, nil
	} else {
		if ctx.Err() != nil {
			return domain.Catalog{}, ctx.Err()
		}
		l.logger.Warn("json source failed, rendering empty catalog",
			zap.String("source", l.jsonURL), zap.Error(err))
	}

	return domain.Catalog{LoadedAt: time.Now().UTC()}, nil
}

func (l *Loader) loadSpreadsheet(ctx context.Context) (domain.Catalog, error) {
	if l.sheetURL == "" {
		return domain.Catalog{}, errors.New("catalog: no spreadsheet source configured")
	}

	data, err := l.fetch(ctx, l.sheetURL)
	if err != nil {
		return domain.Catalog{}, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return domain.Catalog{}, errors.New("catalog: workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: read sheet %q: %w", sheet, err)
	}

	products := rowsToProducts(rows)
	return domain.Catalog{
		Products: products,
		Source:   l.sheetURL,
		LoadedAt: time.Now().UTC(),
	}, nil
}

func (l *Loader) loadJSON(ctx context.Context) (domain.Catalog, error) {
	if l.jsonURL == "" {
		return domain.Catalog{}, errors.New("catalog: no json source configured")
	}

	data, err := l.fetch(ctx, l.jsonURL)
	if err != nil {
		return domain.Catalog{}, err
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: json payload is not an array of records: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for i, record := range records {
		products = append(products, NormalizeProduct(record, i+1))
	}
	return domain.Catalog{
		Products: products,
		Source:   l.jsonURL,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// fetch retrieves the source bytes from an http(s) URL or the local
// filesystem.
func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if !isURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", source, err)
		}
		if len(data) > maxSourceBytes {
			return nil, errSourceTooLarge
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request for %s: %w", source, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: fetch %s: unexpected status %d", source, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("catalog: read body of %s: %w", source, err)
	}
	if len(data) > maxSourceBytes {
		return nil, errSourceTooLarge
	}
	return data, nil
}

func pickSheet(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}
	for _, preferred := range preferredSheets {
		for _, name := range sheets {
			if name == preferred {
				return name
			}
		}
	}
	return sheets[0]
}

// rowsToProducts treats the first row as the header and maps every following
// row to a record with empty-string defaults for blank or missing cells, the
// way sheet-to-record conversion behaves in spreadsheet tooling.
func rowsToProducts(rows [][]string) []domain.Product {
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	products := make([]domain.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record := make(map[string]any, len(header))
		for col, key := range header {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			value := ""
			if col < len(row) {
				value = row[col]
			}
			record[key] = value
		}
		products = append(products, NormalizeProduct(record, i+1))
	}
	return products
}
