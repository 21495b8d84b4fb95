// Package backendtest provides an in-memory translation API for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/colonyops/mtdock/internal/core/translation"
)

// Server serves the endpoints the backend client calls from in-memory data.
// Lookups past the last translation answer 400, like the real API.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	articles     map[int]translation.Article
	translations map[int][]translation.Candidate // by providers_id
	final        []translation.Candidate
	queue        []translation.QueueItem
	submissions  []map[string]any
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		articles:     map[int]translation.Article{},
		translations: map[int][]translation.Candidate{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /get-first", s.getFirst)
	mux.HandleFunc("GET /get-translation", s.getTranslation)
	mux.HandleFunc("GET /get-article", s.getArticle)
	mux.HandleFunc("POST /push-to-fifo", s.pushToFIFO)
	mux.HandleFunc("GET /get-status", s.getStatus)
	mux.HandleFunc("DELETE /delete-translation", s.deleteTranslation)
	mux.HandleFunc("POST /put-final", s.putFinal)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// AddArticle stores an original article.
func (s *Server) AddArticle(a translation.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = a
}

// AddTranslation stores a translation served to the given providers_id.
func (s *Server) AddTranslation(providerID int, c translation.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translations[providerID] = append(s.translations[providerID], c)
}

// AddFinal stores a submitted final translation.
func (s *Server) AddFinal(c translation.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.final = append(s.final, c)
}

// AddQueueItem stores a queue status row.
func (s *Server) AddQueueItem(it translation.QueueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, it)
}

// Queue returns a copy of the queue.
func (s *Server) Queue() []translation.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queue)
}

// Submissions returns the decoded bodies posted to put-final.
func (s *Server) Submissions() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.submissions)
}

func (s *Server) getFirst(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	providerID, _ := strconv.Atoi(q.Get("providers_id"))

	s.mu.Lock()
	var pool []translation.Candidate
	for _, c := range s.translations[providerID] {
		if c.LangTo == "" || c.LangTo == q.Get("to_lang") {
			pool = append(pool, c)
		}
	}
	s.mu.Unlock()

	c, ok := step(pool, q)
	if !ok {
		http.Error(w, "no more translations", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"id":        c.ID,
		"status":    c.Status,
		"lang_to":   c.LangTo,
		"lang_from": c.LangFrom,
		"text":      map[string]string{"title": c.Title, "text": c.Text},
	})
}

func (s *Server) getTranslation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pool := slices.Clone(s.final)
	s.mu.Unlock()

	c, ok := step(pool, r.URL.Query())
	if !ok {
		http.Error(w, "no more translations", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{"id": c.ID, "title": c.Title, "text": c.Text})
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))

	s.mu.Lock()
	a, ok := s.articles[id]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, map[string]any{"id": a.ID, "title": a.Title, "text": a.Text})
}

func (s *Server) pushToFIFO(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.Atoi(q.Get("id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, translation.QueueItem{
		ID:       id,
		Status:   "pending",
		Title:    s.articles[id].Title,
		LangFrom: q.Get("from_lang"),
		LangTo:   q.Get("to_lang"),
	})
	s.mu.Unlock()

	_, _ = w.Write([]byte("queued"))
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	items := slices.Clone(s.queue)
	s.mu.Unlock()

	if items == nil {
		items = []translation.QueueItem{}
	}
	writeJSON(w, items)
}

func (s *Server) deleteTranslation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, _ := strconv.Atoi(q.Get("id"))

	s.mu.Lock()
	s.queue = slices.DeleteFunc(s.queue, func(it translation.QueueItem) bool {
		return it.ID == id && it.LangFrom == q.Get("lang_from") && it.LangTo == q.Get("lang_to")
	})
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putFinal(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, body)
	s.mu.Unlock()

	_, _ = w.Write([]byte("stored"))
}

// step picks the nearest candidate after (next) or before (prev) the id query
// parameter.
func step(pool []translation.Candidate, q map[string][]string) (translation.Candidate, bool) {
	pos, _ := strconv.Atoi(first(q["id"]))
	prev := first(q["direction"]) == translation.Previous.String()

	var best translation.Candidate
	found := false
	for _, c := range pool {
		switch {
		case prev && c.ID < pos && (!found || c.ID > best.ID):
			best, found = c, true
		case !prev && c.ID > pos && (!found || c.ID < best.ID):
			best, found = c, true
		}
	}
	return best, found
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
