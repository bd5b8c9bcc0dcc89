package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageLength keeps rendered text under Telegram's 4096 character limit
const maxMessageLength = 4000

// send delivers c through the rate limiter and returns the resulting message
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.api == nil {
		return tgbotapi.Message{}, nil // For testing
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return tgbotapi.Message{}, err
		}
	}

	msg, err := b.api.Send(c)
	if err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return msg, nil
		}
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
	return msg, err
}

// request performs a call whose result is not a message (callback answers, deletes)
func (b *Bot) request(ctx context.Context, c tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return
		}
	}
	if _, err := b.api.Request(c); err != nil {
		b.logger.Debug("Telegram request failed", zap.Error(err))
	}
}

// sendMessage sends msg and discards the result
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	b.send(context.Background(), msg)
}

// sendText sends plain text to chatID
func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, truncate(text)))
}

// upsert edits messageID in place, or sends a new message when it is zero.
// It returns the ID of the message now showing text.
func (b *Bot) upsert(ctx context.Context, chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) int {
	text = truncate(text)
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
		if _, err := b.send(ctx, edit); err == nil {
			return messageID
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard.InlineKeyboard) > 0 {
		msg.ReplyMarkup = keyboard
	}
	sent, err := b.send(ctx, msg)
	if err != nil {
		return 0
	}
	return sent.MessageID
}

// deleteMessage removes a message the bot sent earlier
func (b *Bot) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	b.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID))
}

// emptyKeyboard is a markup without buttons; an edit with it removes the keyboard
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

// chunkButtons lays buttons out in rows of at most perRow
func chunkButtons(buttons []tgbotapi.InlineKeyboardButton, perRow int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > 0 {
		n := perRow
		if len(buttons) < n {
			n = len(buttons)
		}
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	return rows
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return text
	}
	return string(runes[:maxMessageLength-1]) + "…"
}
