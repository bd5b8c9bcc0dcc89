package bot

import (
	"fmt"
	"strings"

	"library-admin/internal/admin"
)

func bannerIcon(kind admin.BannerKind) string {
	switch kind {
	case admin.BannerError:
		return "⚠️"
	case admin.BannerSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// renderScreen draws a list screen as message text
func renderScreen(s admin.Screen) string {
	var b strings.Builder
	b.WriteString("📚 " + s.Title + "\n")

	var state []string
	if s.Search != "" {
		state = append(state, fmt.Sprintf("Search: %q", s.Search))
	}
	for _, f := range s.Filters {
		if f.Value != "" {
			state = append(state, f.Label+": "+f.Value)
		}
	}
	if len(state) > 0 {
		b.WriteString(strings.Join(state, " · ") + "\n")
	}
	b.WriteString("\n")

	switch {
	case s.Loading:
		b.WriteString("⏳ Loading…")
	case s.Banner != nil:
		b.WriteString(bannerIcon(s.Banner.Kind) + " " + s.Banner.Text)
	case s.Table != nil:
		b.WriteString(strings.Join(s.Table.Headers, " | ") + "\n")
		for _, row := range s.Table.Rows {
			b.WriteString(strings.Join(row.Cells, " | ") + "\n")
		}
		if s.Pager != nil {
			fmt.Fprintf(&b, "\nPage %d of %d", s.Pager.Current, s.Pager.Total)
		}
	case s.Empty != "":
		b.WriteString(s.Empty)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderForm draws a form dialog. step is the index of the field the console
// is waiting for, -1 when none.
func renderForm(f admin.FormScreen, step int) string {
	var b strings.Builder
	b.WriteString("📝 " + f.Title + "\n\n")

	switch f.State {
	case admin.DialogPopulating:
		b.WriteString("⏳ Loading…\n")
	case admin.DialogSubmitting:
		b.WriteString("⏳ Saving…\n")
	}

	for _, field := range f.Fields {
		label := field.Label
		if field.Required {
			label += "*"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, displayValue(field))
	}

	if f.Message != nil {
		b.WriteString("\n" + bannerIcon(f.Message.Kind) + " " + f.Message.Text + "\n")
	}

	if f.State == admin.DialogReady && step >= 0 && step < len(f.Fields) {
		field := f.Fields[step]
		fmt.Fprintf(&b, "\n👉 Send %s. \".\" keeps the current value, \"-\" clears it.", field.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayValue(field admin.FieldValue) string {
	switch {
	case field.Value == "":
		return "—"
	case field.Kind == admin.KindPassword:
		return strings.Repeat("•", 6)
	default:
		return field.Value
	}
}

// renderDetail draws a detail dialog
func renderDetail(d admin.DetailScreen) string {
	var b strings.Builder
	b.WriteString("🔍 " + d.Title + "\n\n")
	if d.Loading {
		b.WriteString("⏳ Loading…")
	}
	for _, line := range d.Lines {
		value := line.Value
		if value == "" {
			value = "—"
		}
		fmt.Fprintf(&b, "%s: %s\n", line.Label, value)
	}
	if d.Message != nil {
		b.WriteString(bannerIcon(d.Message.Kind) + " " + d.Message.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderNav draws the navigation bar message
func renderNav(nav admin.Nav) string {
	greeting := nav.Greeting
	if greeting == "" {
		greeting = "You are not logged in."
	}
	return `Library admin console 📚

` + greeting + `

Commands:
/books /authors /presses /tags /loans /users - open a list
/search <term> - search the current list
/filter <key> <value> - filter the current list
/page <n> - go to a page
/new - create a record in the current list
/refresh - reload the current page
/login /register /logout - account
/cancel - close the open dialog`
}
