package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-admin/internal/admin"
)

func TestRenderScreen(t *testing.T) {
	screen := admin.Screen{
		Title:   "Books",
		Search:  "dune",
		Filters: []admin.FilterValue{{Filter: admin.Filter{Key: "tag", Label: "Tag ID"}, Value: "3"}, {Filter: admin.Filter{Key: "press", Label: "Press ID"}}},
		Table: &admin.Table{
			Headers: []string{"ID", "Title"},
			Rows:    []admin.Row{{ID: 7, Cells: []string{"7", "Dune"}}},
		},
		Pager: &admin.Pager{Current: 2, Total: 3},
	}

	text := renderScreen(screen)

	assert.Equal(t, "📚 Books\nSearch: \"dune\" · Tag ID: 3\n\nID | Title\n7 | Dune\n\nPage 2 of 3", text)
}

func TestRenderScreen_States(t *testing.T) {
	assert.Contains(t, renderScreen(admin.Screen{Title: "Tags", Loading: true}), "Loading")
	assert.Contains(t, renderScreen(admin.Screen{Title: "Tags", Empty: "No tags yet."}), "No tags yet.")
	assert.Contains(t, renderScreen(admin.Screen{
		Title:  "Tags",
		Banner: &admin.Banner{Kind: admin.BannerError, Text: "Server error"},
	}), "⚠️ Server error")
}

func TestRenderForm(t *testing.T) {
	form := admin.FormScreen{
		Title: "Log in",
		State: admin.DialogReady,
		Fields: []admin.FieldValue{
			{Field: admin.Field{Name: "account", Label: "Account", Required: true}, Value: "alice"},
			{Field: admin.Field{Name: "password", Label: "Password", Kind: admin.KindPassword, Required: true}, Value: "secret"},
		},
	}

	text := renderForm(form, 1)

	assert.Contains(t, text, "Account*: alice")
	assert.Contains(t, text, "Password*: ••••••")
	assert.NotContains(t, text, "secret")
	assert.Contains(t, text, "👉 Send Password")

	form.State = admin.DialogSubmitting
	assert.NotContains(t, renderForm(form, 1), "👉")
}

func TestRenderDetail(t *testing.T) {
	text := renderDetail(admin.DetailScreen{
		Title: "Book #7",
		Lines: []admin.DetailLine{{Label: "Title", Value: "Dune"}, {Label: "ISBN"}},
	})
	assert.Equal(t, "🔍 Book #7\n\nTitle: Dune\nISBN: —", text)
}

func TestActionRegistry(t *testing.T) {
	r := newActionRegistry()
	var ran []string

	list := r.bind(scopeList, func(context.Context) { ran = append(ran, "list") })
	dialog := r.bind(scopeDialog, func(context.Context) { ran = append(ran, "dialog") })
	assert.True(t, strings.HasPrefix(list, actionPrefix))
	assert.LessOrEqual(t, len(list), 64)

	fn, ok := r.lookup(list)
	require.True(t, ok)
	fn(context.Background())

	r.reset(scopeList)
	_, ok = r.lookup(list)
	assert.False(t, ok)
	_, ok = r.lookup(dialog)
	assert.True(t, ok)
	_, ok = r.lookup("date:today")
	assert.False(t, ok)

	assert.Equal(t, []string{"list"}, ran)
	assert.Equal(t, 1, r.size())
}

func TestChunkButtons(t *testing.T) {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, label := range []string{"«", "1", "2", "3", "»"} {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, label))
	}

	rows := chunkButtons(buttons, 2)

	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[2], 1)
	assert.Equal(t, "»", rows[2][0].Text)
	assert.Empty(t, chunkButtons(nil, 2))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxMessageLength+10)
	out := truncate(long)
	assert.Equal(t, maxMessageLength, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.Equal(t, "short", truncate("short"))
}
