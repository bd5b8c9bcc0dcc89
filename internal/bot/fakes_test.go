package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"library-admin/internal/admin"
	"library-admin/internal/models"
	"library-admin/internal/storage/stubs"
)

const (
	testUserID = int64(123)
	testChatID = int64(456)
)

// fakeSender records everything the bot sends to Telegram
type fakeSender struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every sent or edited message
func (s *fakeSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, c := range s.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (s *fakeSender) lastText() string {
	texts := s.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// sawText reports whether any sent text contains substr
func (s *fakeSender) sawText(substr string) bool {
	for _, text := range s.texts() {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

// button finds the callback data of the most recent button labelled label
func (s *fakeSender) button(label string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sent) - 1; i >= 0; i-- {
		var markup *tgbotapi.InlineKeyboardMarkup
		switch m := s.sent[i].(type) {
		case tgbotapi.MessageConfig:
			if k, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				markup = &k
			}
		case tgbotapi.EditMessageTextConfig:
			markup = m.ReplyMarkup
		}
		if markup == nil {
			continue
		}
		for _, row := range markup.InlineKeyboard {
			for _, b := range row {
				if b.Text == label && b.CallbackData != nil {
					return *b.CallbackData, true
				}
			}
		}
	}
	return "", false
}

// callbackAnswers returns the texts of answered callback queries
func (s *fakeSender) callbackAnswers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, c := range s.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

// deleted returns the IDs of deleted messages
func (s *fakeSender) deleted() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []int
	for _, c := range s.requests {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, d.MessageID)
		}
	}
	return out
}

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

// find returns the calls with method and path
func (b *fakeBackend) find(method, path string) []call {
	var out []call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func decodeRecord(t *testing.T, js string) models.Record {
	t.Helper()
	rec, err := models.DecodeRecord([]byte(js))
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return rec
}

// booksBackend serves a single page holding one book
func booksBackend(t *testing.T) *fakeBackend {
	dune := decodeRecord(t, `{"id": 7, "title": "Dune", "isbn": "978", "numCopiesAvailable": 2}`)
	return &fakeBackend{
		list: func(path, query string) (*models.Page, error) {
			return &models.Page{
				Data:       []models.Record{dune},
				Pagination: &models.Pagination{CurrentPage: 1, TotalPages: 2},
			}, nil
		},
	}
}

func newTestBot(backend admin.Backend) (*Bot, *fakeSender, *stubs.MockDB) {
	sender := &fakeSender{}
	db := stubs.NewMockDB()
	b := newBot(sender, "test-token", db, func() (admin.Backend, error) {
		return backend, nil
	}, Options{AllowedUserIDs: []int64{testUserID}}, zap.NewNop())
	return b, sender, db
}

var messageIDs struct {
	sync.Mutex
	next int
}

func textUpdate(text string) tgbotapi.Update {
	messageIDs.Lock()
	messageIDs.next++
	id := 1000 + messageIDs.next
	messageIDs.Unlock()

	message := &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: testUserID},
		Chat:      &tgbotapi.Chat{ID: testChatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		length := strings.Index(text, " ")
		if length < 0 {
			length = len(text)
		}
		message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{Message: message}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testUserID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: testChatID}},
		Data:    data,
	}}
}

// press clicks the most recent button labelled label
func press(t *testing.T, b *Bot, sender *fakeSender, label string) {
	t.Helper()
	data, ok := sender.button(label)
	if !ok {
		t.Fatalf("no %q button was sent", label)
	}
	b.HandleUpdate(context.Background(), callbackUpdate(data))
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
