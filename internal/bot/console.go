package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"library-admin/internal/admin"
	"library-admin/internal/models"
)

// ConfirmTimeout is how long a confirmation waits before it counts as declined
const ConfirmTimeout = 2 * time.Minute

// Console is the admin console of one chat and the surface its lists and
// dialogs draw into. The list region is a single message edited in place;
// dialogs live in a second message.
type Console struct {
	bot     *Bot
	chatID  int64
	backend admin.Backend
	actions *actionRegistry
	logger  *zap.Logger
	auth    *admin.FormDialog

	// drawMu serializes list region draws
	drawMu  sync.Mutex
	drawSeq uint64

	mu          sync.Mutex
	lists       map[string]*admin.ListController
	current     *admin.ListController
	listMsgID   int
	dialogMsgID int
	form        *admin.FormScreen
	convGen     uint64
	state       *ConversationState
}

func newConsole(b *Bot, chatID int64, backend admin.Backend) *Console {
	c := &Console{
		bot:     b,
		chatID:  chatID,
		backend: backend,
		actions: newActionRegistry(),
		logger:  b.logger.With(zap.Int64("chat_id", chatID)),
		lists:   make(map[string]*admin.ListController),
	}
	c.auth = admin.NewFormDialog(backend, c, b.adminOpts...)
	return c
}

// console returns the console of chatID, creating it on first use
func (b *Bot) console(chatID int64) (*Console, error) {
	b.consolesMu.Lock()
	defer b.consolesMu.Unlock()

	if c, ok := b.consoles[chatID]; ok {
		return c, nil
	}
	backend, err := b.newBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	c := newConsole(b, chatID, backend)
	b.consoles[chatID] = c
	return c, nil
}

// Draw renders a list screen into the list message.
// Screens of a list that is no longer current are dropped.
func (c *Console) Draw(s admin.Screen) {
	c.drawMu.Lock()
	defer c.drawMu.Unlock()

	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	if current != nil && current.Descriptor().Name != s.Entity {
		return
	}

	c.drawLocked(s)
}

func (c *Console) drawLocked(s admin.Screen) {
	c.drawSeq++
	seq := c.drawSeq

	c.actions.reset(scopeList)
	keyboard := c.listKeyboard(s)

	c.mu.Lock()
	msgID := c.listMsgID
	c.mu.Unlock()

	msgID = c.bot.upsert(c.bot.baseContext(), c.chatID, msgID, renderScreen(s), keyboard)

	c.mu.Lock()
	c.listMsgID = msgID
	c.mu.Unlock()

	if s.Banner != nil && s.Banner.TTL > 0 {
		time.AfterFunc(s.Banner.TTL, func() { c.dismissBanner(seq, s) })
	}
}

// dismissBanner redraws s without its banner if nothing was drawn since
func (c *Console) dismissBanner(seq uint64, s admin.Screen) {
	c.drawMu.Lock()
	defer c.drawMu.Unlock()

	if seq != c.drawSeq {
		return
	}
	s.Banner = nil
	c.drawLocked(s)
}

func actionIcon(kind admin.ActionKind) string {
	switch kind {
	case admin.ActionDetail:
		return "🔍"
	case admin.ActionEdit:
		return "✏️"
	case admin.ActionDelete:
		return "🗑"
	case admin.ActionCreate:
		return "➕"
	default:
		return "📝"
	}
}

func (c *Console) button(scope, label string, fn func(ctx context.Context)) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, c.actions.bind(scope, fn))
}

func (c *Console) listKeyboard(s admin.Screen) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if s.Table != nil {
		for _, row := range s.Table.Rows {
			var buttons []tgbotapi.InlineKeyboardButton
			for _, action := range row.Actions {
				label := fmt.Sprintf("%s #%d", actionIcon(action.Kind), row.ID)
				buttons = append(buttons, c.button(scopeList, label, action.Run))
			}
			if len(buttons) > 0 {
				rows = append(rows, buttons)
			}
		}
	}

	if s.Pager != nil {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, link := range s.Pager.Links {
			label := link.Label
			if link.Active {
				label = "· " + label + " ·"
			}
			buttons = append(buttons, c.button(scopeList, label, link.Run))
		}
		rows = append(rows, chunkButtons(buttons, 8)...)
	}

	var tools []tgbotapi.InlineKeyboardButton
	for _, action := range s.Toolbar {
		tools = append(tools, c.button(scopeList, actionIcon(action.Kind)+" "+action.Label, action.Run))
	}
	if s.Searchable {
		hint := s.SearchHint
		tools = append(tools, c.button(scopeList, "🔎 Search", func(ctx context.Context) {
			c.promptSearch(ctx, hint)
		}))
	}
	for _, f := range s.Filters {
		filter := f.Filter
		tools = append(tools, c.button(scopeList, "🏷 "+filter.Label, func(ctx context.Context) {
			c.promptFilter(ctx, filter)
		}))
	}
	tools = append(tools, c.button(scopeList, "🔄 Refresh", c.refresh))
	rows = append(rows, chunkButtons(tools, 2)...)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ShowForm renders a form dialog. A newly opened form starts asking for
// its fields in order.
func (c *Console) ShowForm(f admin.FormScreen) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.State == admin.DialogReady && f.Gen != c.convGen {
		c.convGen = f.Gen
		c.state = &ConversationState{Command: convForm, Step: 0, Data: map[string]interface{}{}}
	}
	c.form = &f
	c.drawFormLocked()
}

func (c *Console) drawFormLocked() {
	f := *c.form
	step := -1
	if c.state != nil && c.state.Command == convForm {
		step = c.state.Step
	}

	c.actions.reset(scopeDialog)
	var rows [][]tgbotapi.InlineKeyboardButton
	switch f.State {
	case admin.DialogReady:
		var fields []tgbotapi.InlineKeyboardButton
		for i, field := range f.Fields {
			i := i
			fields = append(fields, c.button(scopeDialog, "✏️ "+field.Label, func(ctx context.Context) {
				c.selectField(i)
			}))
		}
		rows = append(rows, chunkButtons(fields, 2)...)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			c.button(scopeDialog, "💾 Submit", f.Submit),
			c.button(scopeDialog, "✖️ Cancel", f.Cancel),
		))
	case admin.DialogPopulating, admin.DialogFailed:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(c.button(scopeDialog, "✖️ Cancel", f.Cancel)))
	}

	keyboard := emptyKeyboard()
	if len(rows) > 0 {
		keyboard = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	c.dialogMsgID = c.bot.upsert(c.bot.baseContext(), c.chatID, c.dialogMsgID, renderForm(f, step), keyboard)
}

// selectField makes the form ask for field i next
func (c *Console) selectField(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form == nil || c.form.State != admin.DialogReady || i < 0 || i >= len(c.form.Fields) {
		return
	}
	c.state = &ConversationState{Command: convForm, Step: i, Data: map[string]interface{}{}}
	c.drawFormLocked()
}

// ShowDetail renders a detail dialog
func (c *Console) ShowDetail(d admin.DetailScreen) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = nil
	c.convGen = 0
	c.clearFormConversationLocked()

	c.actions.reset(scopeDialog)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		c.button(scopeDialog, "✖️ Close", func(ctx context.Context) { c.closeDialogs() }),
	))
	c.dialogMsgID = c.bot.upsert(c.bot.baseContext(), c.chatID, c.dialogMsgID, renderDetail(d), keyboard)
}

// CloseDialog removes the dialog message
func (c *Console) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.actions.reset(scopeDialog)
	c.bot.deleteMessage(c.bot.baseContext(), c.chatID, c.dialogMsgID)
	c.dialogMsgID = 0
	c.form = nil
	c.convGen = 0
	c.clearFormConversationLocked()
}

func (c *Console) clearFormConversationLocked() {
	if c.state != nil && c.state.Command == convForm {
		c.state = nil
	}
}

// Confirm asks a yes/no question and blocks until it is answered,
// the confirmation times out or ctx is done. Only "Yes" confirms.
func (c *Console) Confirm(ctx context.Context, prompt string) bool {
	answer := make(chan bool, 1)
	reply := func(v bool) func(context.Context) {
		return func(context.Context) {
			select {
			case answer <- v:
			default:
			}
		}
	}

	c.actions.reset(scopeConfirm)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		c.button(scopeConfirm, "✅ Yes", reply(true)),
		c.button(scopeConfirm, "❌ No", reply(false)),
	))
	text := "❓ " + prompt
	msgID := c.bot.upsert(ctx, c.chatID, 0, text, keyboard)
	if msgID == 0 {
		c.actions.reset(scopeConfirm)
		return false
	}

	timer := time.NewTimer(c.bot.confirmTimeout)
	defer timer.Stop()

	var confirmed bool
	select {
	case confirmed = <-answer:
	case <-timer.C:
	case <-ctx.Done():
	}
	c.actions.reset(scopeConfirm)

	verdict := "❌ No"
	if confirmed {
		verdict = "✅ Yes"
	}
	c.bot.upsert(c.bot.baseContext(), c.chatID, msgID, text+"\n\n"+verdict, emptyKeyboard())
	return confirmed
}

// Alert sends a message to the chat
func (c *Console) Alert(ctx context.Context, text string) {
	c.bot.send(ctx, tgbotapi.NewMessage(c.chatID, truncate(text)))
}

// currentList returns the list shown last, nil before any was opened
func (c *Console) currentList() *admin.ListController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// openList switches the console to the named list and loads its first page
func (c *Console) openList(ctx context.Context, name string) bool {
	d, ok := admin.Lookup(name)
	if !ok {
		return false
	}
	c.closeDialogs()

	c.drawMu.Lock()
	c.mu.Lock()
	list, ok := c.lists[name]
	if !ok {
		list = admin.NewListController(d, c.backend, c, c.bot.adminOpts...)
		c.lists[name] = list
	}
	c.current = list
	c.listMsgID = 0
	c.state = nil
	c.mu.Unlock()
	c.drawMu.Unlock()

	list.Show(ctx)
	return true
}

// closeDialogs closes every dialog the console may be showing
func (c *Console) closeDialogs() {
	c.mu.Lock()
	lists := make([]*admin.ListController, 0, len(c.lists))
	for _, list := range c.lists {
		lists = append(lists, list)
	}
	c.mu.Unlock()

	for _, list := range lists {
		list.CloseDialogs()
	}
	c.auth.Close()
}

func (c *Console) clearConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = nil
}

func (c *Console) refresh(ctx context.Context) {
	if list := c.currentList(); list != nil {
		list.Refresh(ctx)
	}
}

func (c *Console) promptSearch(ctx context.Context, hint string) {
	c.mu.Lock()
	c.state = &ConversationState{Command: convSearch, Data: map[string]interface{}{}}
	c.mu.Unlock()

	text := "🔎 Send the search term"
	if hint != "" {
		text += " (" + hint + ")"
	}
	c.Alert(ctx, text+", or - to clear it.")
}

func (c *Console) promptFilter(ctx context.Context, f admin.Filter) {
	c.mu.Lock()
	c.state = &ConversationState{Command: convFilter, Data: map[string]interface{}{"key": f.Key}}
	c.mu.Unlock()

	c.Alert(ctx, "🏷 Send the "+f.Label+", or - to clear it.")
}

// currentUser reads the login marker of the chat, nil when logged out
func (c *Console) currentUser(ctx context.Context) *models.User {
	user, err := c.bot.db.CurrentUser(ctx, c.chatID)
	if err != nil {
		c.logger.Warn("Failed to read login marker", zap.Error(err))
		return nil
	}
	return user
}

// showNav sends the navigation bar for user
func (c *Console) showNav(ctx context.Context, user *models.User) {
	nav := admin.Navbar(user)

	c.actions.reset(scopeNav)
	var pages, account []tgbotapi.InlineKeyboardButton
	for _, item := range nav.Pages {
		command := item.Command
		pages = append(pages, c.button(scopeNav, item.Label, func(ctx context.Context) {
			c.run(ctx, command)
		}))
	}
	for _, item := range nav.Account {
		command := item.Command
		account = append(account, c.button(scopeNav, item.Label, func(ctx context.Context) {
			c.run(ctx, command)
		}))
	}
	rows := chunkButtons(pages, 3)
	rows = append(rows, account)

	msg := tgbotapi.NewMessage(c.chatID, renderNav(nav))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	c.bot.send(ctx, msg)
}

// run executes a navigation command
func (c *Console) run(ctx context.Context, command string) {
	switch command {
	case "login":
		c.openLogin(ctx)
	case "register":
		c.openRegister(ctx)
	case "logout":
		c.logout(ctx)
	default:
		c.openList(ctx, command)
	}
}

func (c *Console) openLogin(ctx context.Context) {
	c.closeDialogs()
	c.auth.Open(ctx, admin.Login, c.loggedIn)
}

func (c *Console) loggedIn(ctx context.Context, rec models.Record) {
	user, err := admin.UserFromLogin(rec)
	if err != nil {
		c.logger.Warn("Login response carried no user", zap.Error(err))
		c.Alert(ctx, "Logged in, but the response carried no user.")
		return
	}
	if err := c.bot.db.SaveUser(ctx, c.chatID, *user); err != nil {
		c.logger.Error("Failed to save login marker", zap.Error(err))
	}
	c.logger.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("account", user.Account))

	c.showNav(ctx, user)
	c.openList(ctx, admin.Books.Name)
}

func (c *Console) openRegister(ctx context.Context) {
	c.closeDialogs()
	c.auth.Open(ctx, admin.Register, func(ctx context.Context, _ models.Record) {
		c.openLogin(ctx)
	})
}

// logout ends the backend session best-effort and clears the login marker
func (c *Console) logout(ctx context.Context) {
	c.closeDialogs()
	if _, err := c.backend.Send(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		c.logger.Debug("Backend logout failed", zap.Error(err))
	}
	if err := c.bot.db.ClearUser(ctx, c.chatID); err != nil {
		c.logger.Error("Failed to clear login marker", zap.Error(err))
	}

	c.showNav(ctx, nil)
	c.openLogin(ctx)
}
