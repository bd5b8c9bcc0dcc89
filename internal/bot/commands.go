package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"library-admin/internal/admin"
)

// handleCommand dispatches a slash command to the chat's console
func (b *Bot) handleCommand(ctx context.Context, c *Console, message *tgbotapi.Message) {
	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())

	switch command {
	case "start":
		c.showNav(ctx, c.currentUser(ctx))
	case "books", "authors", "presses", "tags", "loans", "users":
		c.openList(ctx, command)
	case "search":
		b.handleSearch(ctx, c, args)
	case "filter":
		b.handleFilter(ctx, c, args)
	case "page":
		b.handlePage(ctx, c, args)
	case "new":
		b.handleNew(ctx, c)
	case "refresh":
		if c.currentList() == nil {
			b.sendText(c.chatID, "Open a list first.")
			return
		}
		c.refresh(ctx)
	case "login":
		c.openLogin(ctx)
	case "register":
		c.openRegister(ctx)
	case "logout":
		c.logout(ctx)
	case "cancel":
		c.closeDialogs()
		b.sendText(c.chatID, "Cancelled.")
	default:
		b.sendText(c.chatID, "Unknown command. Use /start to see available commands.")
	}
}

// handleSearch searches the current list, or asks for the term when none is given
func (b *Bot) handleSearch(ctx context.Context, c *Console, term string) {
	list := c.currentList()
	if list == nil {
		b.sendText(c.chatID, "Open a list first.")
		return
	}
	d := list.Descriptor()
	if !d.Searchable {
		b.sendText(c.chatID, d.Title+" cannot be searched.")
		return
	}
	if term == "" {
		c.promptSearch(ctx, d.SearchHint)
		return
	}
	if !list.Search(ctx, clearable(term)) {
		b.sendText(c.chatID, "Search unchanged.")
	}
}

// handleFilter sets a filter of the current list: /filter <key> <value>
func (b *Bot) handleFilter(ctx context.Context, c *Console, args string) {
	list := c.currentList()
	if list == nil {
		b.sendText(c.chatID, "Open a list first.")
		return
	}
	d := list.Descriptor()
	if len(d.Filters) == 0 {
		b.sendText(c.chatID, d.Title+" have no filters.")
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 || !d.HasFilter(fields[0]) {
		keys := make([]string, 0, len(d.Filters))
		for _, f := range d.Filters {
			keys = append(keys, fmt.Sprintf("%s (%s)", f.Key, f.Label))
		}
		b.sendText(c.chatID, "Usage: /filter <key> <value>, - clears it.\nFilters: "+strings.Join(keys, ", "))
		return
	}
	value := clearable(strings.Join(fields[1:], " "))
	if !list.SetFilter(ctx, fields[0], value) {
		b.sendText(c.chatID, "Filter unchanged.")
	}
}

// handlePage jumps to a page of the current list
func (b *Bot) handlePage(ctx context.Context, c *Console, args string) {
	list := c.currentList()
	if list == nil {
		b.sendText(c.chatID, "Open a list first.")
		return
	}
	page, err := strconv.Atoi(args)
	if err != nil || page < 1 {
		b.sendText(c.chatID, "Usage: /page <n>")
		return
	}
	list.LoadPage(ctx, page)
}

// handleNew opens the create form of the current list
func (b *Bot) handleNew(ctx context.Context, c *Console) {
	list := c.currentList()
	if list == nil {
		b.sendText(c.chatID, "Open a list first.")
		return
	}
	if d := list.Descriptor(); !d.Can.Create {
		b.sendText(c.chatID, fmt.Sprintf("New %s cannot be created here.", d.Noun))
		return
	}
	list.OpenCreate(ctx)
}

// commandList is registered with Telegram for the command menu
func commandList() []tgbotapi.BotCommand {
	commands := []tgbotapi.BotCommand{{Command: "start", Description: "Show the navigation bar"}}
	for _, d := range admin.Catalog() {
		commands = append(commands, tgbotapi.BotCommand{Command: d.Name, Description: "Open " + strings.ToLower(d.Title)})
	}
	return append(commands,
		tgbotapi.BotCommand{Command: "search", Description: "Search the current list"},
		tgbotapi.BotCommand{Command: "filter", Description: "Filter the current list"},
		tgbotapi.BotCommand{Command: "page", Description: "Go to a page"},
		tgbotapi.BotCommand{Command: "new", Description: "Create a record"},
		tgbotapi.BotCommand{Command: "refresh", Description: "Reload the current page"},
		tgbotapi.BotCommand{Command: "login", Description: "Log in"},
		tgbotapi.BotCommand{Command: "register", Description: "Register"},
		tgbotapi.BotCommand{Command: "logout", Description: "Log out"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Close the open dialog"},
	)
}
