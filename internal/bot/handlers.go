package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage",
				zap.Any("panic", r),
				zap.Int64("chat_id", message.Chat.ID),
			)
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	c, err := b.console(message.Chat.ID)
	if err != nil {
		b.logger.Error("Failed to open console", zap.Error(err), zap.Int64("chat_id", message.Chat.ID))
		b.sendText(message.Chat.ID, "The console is unavailable right now.")
		return
	}

	// Any command interrupts an ongoing conversation
	if message.IsCommand() {
		c.clearConversation()
		b.updates.WithLabelValues("command").Inc()
		b.handleCommand(ctx, c, message)
		return
	}

	if message.Text == "" {
		return
	}
	b.updates.WithLabelValues("text").Inc()
	c.handleConversation(ctx, message)
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery",
				zap.Any("panic", r),
				zap.String("callback_data", query.Data),
			)
		}
	}()

	b.updates.WithLabelValues("callback").Inc()
	if query.Message == nil {
		b.request(ctx, tgbotapi.NewCallback(query.ID, ""))
		return
	}

	c, err := b.console(query.Message.Chat.ID)
	if err != nil {
		b.logger.Error("Failed to open console", zap.Error(err), zap.Int64("chat_id", query.Message.Chat.ID))
		b.request(ctx, tgbotapi.NewCallback(query.ID, "The console is unavailable right now."))
		return
	}

	action, ok := c.actions.lookup(query.Data)
	if !ok {
		b.request(ctx, tgbotapi.NewCallback(query.ID, "This button has expired."))
		return
	}

	// Answer the callback query to remove loading state
	b.request(ctx, tgbotapi.NewCallback(query.ID, ""))
	action(ctx)
}
