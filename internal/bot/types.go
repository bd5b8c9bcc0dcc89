package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"library-admin/internal/admin"
	"library-admin/internal/storage"
)

// Sender is the part of the Telegram API the bot talks through
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// BackendFactory creates the catalogue client of one console.
// Every chat gets its own client so backend session cookies are never shared.
type BackendFactory func() (admin.Backend, error)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          Sender
	client       *tgbotapi.BotAPI // nil in tests
	token        string
	db           storage.Storage
	newBackend   BackendFactory
	allowedUsers map[int64]bool
	consoles     map[int64]*Console
	consolesMu   sync.Mutex
	limiter      *rate.Limiter
	adminOpts    []admin.Option
	updates      *prometheus.CounterVec
	logger       *zap.Logger

	confirmTimeout time.Duration

	ctxMu   sync.Mutex
	baseCtx context.Context
	wg      sync.WaitGroup
}

// ConversationState tracks what the console expects the next text message to be
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}

// Conversation commands
const (
	convForm   = "form"
	convSearch = "search"
	convFilter = "filter"
)
