// Package testutil provides testing utilities for the MPDS client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// PageResponse scripts the body served for one (phases, page) pair of
// the facet endpoint.
type PageResponse struct {
	Records []map[string]any
	Count   int
	NPages  int
}

// MockMPDS is a configurable mock MPDS facet server for testing.
type MockMPDS struct {
	server *httptest.Server
	mu     sync.RWMutex

	// pages maps "<phases>|<page>" to a scripted page.
	pages   map[string]PageResponse
	handler func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	LastKey      string
	LastQuery    string
	LastPageSize int
}

// NewMockMPDS creates a mock facet server with no scripted pages;
// unscripted requests answer with an empty result set ("no hits").
func NewMockMPDS() *MockMPDS {
	mock := &MockMPDS{
		pages: make(map[string]PageResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastKey = r.Header.Get("Key")
		mock.LastQuery = r.URL.Query().Get("q")
		mock.LastPageSize, _ = strconv.Atoi(r.URL.Query().Get("pagesize"))
		handler := mock.handler
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL, used as the client endpoint.
func (m *MockMPDS) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMPDS) Close() {
	m.server.Close()
}

// Reset clears tracking counters and scripted pages.
func (m *MockMPDS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastKey = ""
	m.LastQuery = ""
	m.LastPageSize = 0
	m.pages = make(map[string]PageResponse)
	m.handler = nil
}

// SetHandler overrides all request handling with a custom handler.
func (m *MockMPDS) SetHandler(handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// SetPage scripts the response for one page of one phase filter. Use
// phases == "" for unfiltered queries.
func (m *MockMPDS) SetPage(phases string, page int, resp PageResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[pageKey(phases, page)] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockMPDS) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

func pageKey(phases string, page int) string {
	return phases + "|" + strconv.Itoa(page)
}

// defaultHandler serves scripted pages and answers "no hits" for
// anything unscripted.
func (m *MockMPDS) defaultHandler(w http.ResponseWriter, r *http.Request) {
	phases := r.URL.Query().Get("phases")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	m.mu.RLock()
	resp, ok := m.pages[pageKey(phases, page)]
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if !ok {
		fmt.Fprint(w, EmptyBody())
		return
	}
	fmt.Fprint(w, PageBody(resp))
}

// PageBody renders a scripted page as a facet response body.
func PageBody(resp PageResponse) string {
	records := resp.Records
	if records == nil {
		records = []map[string]any{}
	}
	body, err := json.Marshal(map[string]any{
		"out":    records,
		"count":  resp.Count,
		"npages": resp.NPages,
	})
	if err != nil {
		panic(err)
	}
	return string(body)
}

// EmptyBody renders the empty result set ("no hits") body.
func EmptyBody() string {
	return `{"out": [], "count": 0, "npages": 0}`
}

// ErrorBody renders a body carrying an application-level error field.
func ErrorBody(message string) string {
	body, err := json.Marshal(map[string]any{"error": message})
	if err != nil {
		panic(err)
	}
	return string(body)
}

// StructureRecord builds a minimal S-entry for scripted pages.
func StructureRecord(entry, formula string) map[string]any {
	return map[string]any{
		"object_type":      "S",
		"entry":            entry,
		"chemical_formula": formula,
		"phase_id":         1,
		"sg_n":             225,
	}
}
