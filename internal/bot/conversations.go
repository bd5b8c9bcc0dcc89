package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"library-admin/internal/admin"
)

// Conversation input markers
const (
	keepValue  = "."
	clearValue = "-"
)

// handleConversation feeds a text message into whatever the console is waiting for
func (c *Console) handleConversation(ctx context.Context, message *tgbotapi.Message) {
	c.mu.Lock()
	state := c.state
	if state == nil {
		c.mu.Unlock()
		c.bot.sendText(c.chatID, "Use /start to see available commands.")
		return
	}

	switch state.Command {
	case convForm:
		form := c.form
		if form == nil || form.State != admin.DialogReady || form.Set == nil || state.Step < 0 || state.Step >= len(form.Fields) {
			c.mu.Unlock()
			c.bot.sendText(c.chatID, "Tap a field to change it, or Submit.")
			return
		}
		field := form.Fields[state.Step]
		state.Step++
		if state.Step >= len(form.Fields) {
			state.Step = -1
		}
		set := form.Set
		c.mu.Unlock()

		// Passwords should not stay in the chat history
		if field.Kind == admin.KindPassword {
			c.bot.deleteMessage(ctx, c.chatID, message.MessageID)
		}

		if strings.TrimSpace(message.Text) == keepValue {
			c.redrawForm()
			return
		}
		value := message.Text
		if strings.TrimSpace(value) == clearValue {
			value = ""
		}
		if err := set(field.Name, value); err != nil {
			c.bot.sendText(c.chatID, "The form is not accepting input right now.")
		}

	case convSearch:
		c.state = nil
		list := c.current
		c.mu.Unlock()
		if list == nil {
			c.bot.sendText(c.chatID, "Open a list first.")
			return
		}
		list.Search(ctx, clearable(message.Text))

	case convFilter:
		key, _ := state.Data["key"].(string)
		c.state = nil
		list := c.current
		c.mu.Unlock()
		if list == nil {
			c.bot.sendText(c.chatID, "Open a list first.")
			return
		}
		list.SetFilter(ctx, key, clearable(message.Text))

	default:
		c.state = nil
		c.mu.Unlock()
	}
}

func (c *Console) redrawForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form != nil {
		c.drawFormLocked()
	}
}

// clearable maps the clear marker to an empty value
func clearable(text string) string {
	text = strings.TrimSpace(text)
	if text == clearValue {
		return ""
	}
	return text
}
