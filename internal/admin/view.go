package admin

import (
	"context"
	"time"
)

// BannerTTL is how long transient list banners stay visible
const BannerTTL = 3 * time.Second

// ActionKind identifies what an action button does
type ActionKind string

const (
	ActionDetail ActionKind = "detail"
	ActionEdit   ActionKind = "edit"
	ActionDelete ActionKind = "delete"
	ActionCreate ActionKind = "create"
	ActionForm   ActionKind = "form"
)

// Action is a button bound at render time to the record (or form) it acts on
type Action struct {
	Label string
	Kind  ActionKind
	Run   func(ctx context.Context)
}

// Row is one rendered record
type Row struct {
	ID      int64
	Cells   []string
	Actions []Action
}

// Table is the rendered form of one page of records
type Table struct {
	Headers []string
	Rows    []Row
}

// PageLink is one pagination control.
// Disabled links (previous on the first page, next on the last) run nothing.
type PageLink struct {
	Label    string
	Page     int
	Active   bool
	Disabled bool
	Run      func(ctx context.Context)
}

// Pager is the pagination widget: previous, one link per page, next
type Pager struct {
	Current int
	Total   int
	Links   []PageLink
}

// BannerKind is the tone of a banner
type BannerKind string

const (
	BannerError   BannerKind = "error"
	BannerSuccess BannerKind = "success"
	BannerInfo    BannerKind = "info"
)

// Banner is a short message shown inside a region.
// A non-zero TTL asks the view to dismiss it after that long.
type Banner struct {
	Kind BannerKind
	Text string
	TTL  time.Duration
}

// FilterValue is the current value of one descriptor filter
type FilterValue struct {
	Filter
	Value string
}

// Screen is everything a list view draws. The view replaces its whole
// region on every Draw.
type Screen struct {
	Entity     string
	Title      string
	Searchable bool
	SearchHint string
	Search     string
	Filters    []FilterValue
	Toolbar    []Action
	Loading    bool
	Table      *Table
	Empty      string
	Pager      *Pager
	Banner     *Banner
}

// FieldValue is a form field with its current input
type FieldValue struct {
	Field
	Value string
}

// DialogState is the lifecycle of a form dialog
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogPopulating
	DialogReady
	DialogSubmitting
	// DialogFailed is an open dialog whose record could not be loaded
	DialogFailed
)

func (s DialogState) String() string {
	switch s {
	case DialogPopulating:
		return "populating"
	case DialogReady:
		return "ready"
	case DialogSubmitting:
		return "submitting"
	case DialogFailed:
		return "failed"
	default:
		return "closed"
	}
}

// FormScreen is what a dialog view draws for a form.
// Gen changes every time the dialog is opened.
type FormScreen struct {
	Gen     uint64
	Title   string
	State   DialogState
	Fields  []FieldValue
	Message *Banner
	Set     func(name, value string) error
	Submit  func(ctx context.Context)
	Cancel  func(ctx context.Context)
}

// DetailLine is one label/value pair of a detail dialog
type DetailLine struct {
	Label string
	Value string
}

// DetailScreen is what a dialog view draws for a detail view
type DetailScreen struct {
	Title   string
	Loading bool
	Lines   []DetailLine
	Message *Banner
}

// View is the region a list controller owns
type View interface {
	Draw(s Screen)
}

// DialogView is the overlay region dialogs own. Showing a dialog replaces
// whatever the overlay displayed before.
type DialogView interface {
	ShowForm(f FormScreen)
	ShowDetail(d DetailScreen)
	CloseDialog()
}

// Prompter provides blocking confirmations and alerts
type Prompter interface {
	Confirm(ctx context.Context, prompt string) bool
	Alert(ctx context.Context, text string)
}

// Surface is a complete console surface
type Surface interface {
	View
	DialogView
	Prompter
}
