package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"library-admin/internal/admin"
	"library-admin/internal/storage"
)

// Options configures the bot
type Options struct {
	AllowedUserIDs []int64
	SendRateLimit  float64 // messages per second, zero disables throttling
	SuccessDelay   time.Duration
	Registerer     prometheus.Registerer // optional
}

// NewBot creates a new Telegram bot
func NewBot(token string, db storage.Storage, newBackend BackendFactory, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(api, token, db, newBackend, opts, logger)
	b.client = api
	return b, nil
}

func newBot(api Sender, token string, db storage.Storage, newBackend BackendFactory, opts Options, logger *zap.Logger) *Bot {
	allowedUsers := make(map[int64]bool)
	for _, id := range opts.AllowedUserIDs {
		allowedUsers[id] = true
	}

	var limiter *rate.Limiter
	if opts.SendRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SendRateLimit), 1)
	}

	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_admin",
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Telegram updates handled, by kind.",
	}, []string{"kind"})
	if opts.Registerer != nil {
		opts.Registerer.MustRegister(updates)
	}

	return &Bot{
		api:          api,
		token:        token,
		db:           db,
		newBackend:   newBackend,
		allowedUsers: allowedUsers,
		consoles:     make(map[int64]*Console),
		limiter:      limiter,
		adminOpts: []admin.Option{
			admin.WithLogger(logger),
			admin.WithSuccessDelay(opts.SuccessDelay),
		},
		updates:        updates,
		logger:         logger,
		confirmTimeout: ConfirmTimeout,
		baseCtx:        context.Background(),
	}
}

// IsAllowed reports whether the Telegram user may use the console
func (b *Bot) IsAllowed(userID int64) bool {
	return b.allowedUsers[userID]
}

// Token returns the bot token, used to validate Mini App init data
func (b *Bot) Token() string {
	return b.token
}
