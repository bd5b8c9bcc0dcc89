package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start runs the bot in polling mode until ctx is done, then waits for
// in-flight updates to finish
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no Telegram client")
	}
	b.logger.Info("Starting bot in polling mode")
	b.setContext(ctx)

	// Remove webhook (if any was set previously)
	if _, err := b.client.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}
	b.registerCommands()

	// Create update configuration
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	// Get updates channel
	updates := b.client.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	// Handle updates (blocks here)
	b.handleUpdates(updates)
	b.wg.Wait()
	return nil
}

// StartWebhook sets up the bot to receive updates via webhook.
// Updates are dispatched with ctx as their parent context.
func (b *Bot) StartWebhook(ctx context.Context, webhookURL string) error {
	if b.client == nil {
		return errors.New("bot has no Telegram client")
	}
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))
	b.setContext(ctx)

	// Configure webhook
	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + "/telegram-webhook")
	if err != nil {
		return err
	}
	webhookConfig.MaxConnections = 40

	if _, err := b.client.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	// Get webhook info to verify
	info, err := b.client.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}
	b.registerCommands()

	b.logger.Info("Bot configured for webhook mode")
	return nil
}

// Wait blocks until dispatched updates have been handled
func (b *Bot) Wait() {
	b.wg.Wait()
}

// Dispatch handles update in the background
func (b *Bot) Dispatch(update tgbotapi.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.HandleUpdate(b.baseContext(), update)
	}()
}

// HandleUpdate processes a single update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Handle regular messages
	if update.Message != nil && update.Message.From != nil {
		userID := update.Message.From.ID
		if !b.allowedUsers[userID] {
			b.logger.Warn("Unauthorized access attempt",
				zap.Int64("user_id", userID),
				zap.String("username", update.Message.From.UserName),
				zap.String("first_name", update.Message.From.FirstName),
				zap.String("last_name", update.Message.From.LastName),
				zap.String("text", update.Message.Text),
			)
			b.updates.WithLabelValues("unauthorized").Inc()
			b.sendText(update.Message.Chat.ID, "Sorry, you are not authorized to use this bot.")
			return
		}
		b.handleMessage(ctx, update.Message)
	}

	// Handle callback queries (inline keyboard button clicks)
	if update.CallbackQuery != nil {
		userID := update.CallbackQuery.From.ID
		if !b.allowedUsers[userID] {
			b.logger.Warn("Unauthorized callback query attempt",
				zap.Int64("user_id", userID),
				zap.String("username", update.CallbackQuery.From.UserName),
				zap.String("callback_data", update.CallbackQuery.Data),
			)
			b.updates.WithLabelValues("unauthorized").Inc()
			return
		}
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// handleUpdates processes incoming updates from polling mode.
// Updates run concurrently so a pending confirmation can be answered.
func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		b.Dispatch(update)
	}
}

func (b *Bot) registerCommands() {
	if _, err := b.client.Request(tgbotapi.NewSetMyCommands(commandList()...)); err != nil {
		b.logger.Warn("Failed to register bot commands", zap.Error(err))
	}
}

func (b *Bot) setContext(ctx context.Context) {
	b.ctxMu.Lock()
	defer b.ctxMu.Unlock()
	b.baseCtx = ctx
}

// baseContext is the parent context of dispatched updates
func (b *Bot) baseContext() context.Context {
	b.ctxMu.Lock()
	defer b.ctxMu.Unlock()
	return b.baseCtx
}
