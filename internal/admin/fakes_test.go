package admin

import (
	"context"
	"sync"

	"library-admin/internal/models"
)

type call struct {
	Method string
	Path   string
	Query  string
	Body   interface{}
}

// fakeBackend records every call and answers through optional hooks
type fakeBackend struct {
	mu    sync.Mutex
	calls []call

	list func(path, query string) (*models.Page, error)
	get  func(path string) (models.Record, error)
	send func(method, path string, payload interface{}) (models.Record, error)
}

func (b *fakeBackend) List(_ context.Context, path, query string) (*models.Page, error) {
	b.record(call{Method: "GET", Path: path, Query: query})
	if b.list == nil {
		return &models.Page{}, nil
	}
	return b.list(path, query)
}

func (b *fakeBackend) Get(_ context.Context, path string) (models.Record, error) {
	b.record(call{Method: "GET", Path: path})
	if b.get == nil {
		return models.Record{}, nil
	}
	return b.get(path)
}

func (b *fakeBackend) Send(_ context.Context, method, path string, payload interface{}) (models.Record, error) {
	b.record(call{Method: method, Path: path, Body: payload})
	if b.send == nil {
		return models.Record{}, nil
	}
	return b.send(method, path, payload)
}

func (b *fakeBackend) record(c call) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
}

func (b *fakeBackend) Calls() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]call, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *fakeBackend) Lists() []call {
	var out []call
	for _, c := range b.Calls() {
		if c.Method == "GET" && c.Query != "" {
			out = append(out, c)
		}
	}
	return out
}

// fakeSurface records what was drawn
type fakeSurface struct {
	mu      sync.Mutex
	screens []Screen
	forms   []FormScreen
	details []DetailScreen
	closed  int
	prompts []string
	alerts  []string
	confirm bool
}

func (s *fakeSurface) Draw(screen Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screens = append(s.screens, screen)
}

func (s *fakeSurface) ShowForm(f FormScreen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, f)
}

func (s *fakeSurface) ShowDetail(d DetailScreen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = append(s.details, d)
}

func (s *fakeSurface) CloseDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

func (s *fakeSurface) Confirm(_ context.Context, prompt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.confirm
}

func (s *fakeSurface) Alert(_ context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, text)
}

func (s *fakeSurface) LastScreen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screens[len(s.screens)-1]
}

func (s *fakeSurface) LastForm() FormScreen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forms[len(s.forms)-1]
}

func (s *fakeSurface) LastDetail() DetailScreen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details[len(s.details)-1]
}

// record decodes a JSON literal the way the transport does
func record(js string) models.Record {
	rec, err := models.DecodeRecord([]byte(js))
	if err != nil {
		panic(err)
	}
	return rec
}

func page(current, total int, records ...models.Record) *models.Page {
	return &models.Page{
		Data:       records,
		Pagination: &models.Pagination{CurrentPage: current, TotalPages: total},
	}
}
