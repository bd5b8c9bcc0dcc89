package admin

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"library-admin/internal/api"
	"library-admin/internal/models"
)

// PageState is the page, search and filter state of one list
type PageState struct {
	Page    int
	Size    int
	Search  string
	Filters map[string]string
}

// Query encodes the state as the list query string:
// page, size, then search and the descriptor's filters when non-empty.
func (s PageState) Query(d *Descriptor) string {
	size := s.Size
	if size <= 0 {
		size = PageSize
	}
	parts := []string{
		"page=" + strconv.Itoa(s.Page),
		"size=" + strconv.Itoa(size),
	}
	if s.Search != "" {
		parts = append(parts, "search="+url.QueryEscape(s.Search))
	}
	for _, f := range d.Filters {
		if v := s.Filters[f.Key]; v != "" {
			parts = append(parts, url.QueryEscape(f.Key)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

func (s PageState) clone() PageState {
	filters := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = v
	}
	s.Filters = filters
	return s
}

// ListController loads, renders and pages through one entity collection.
// It owns the list's dialogs so row actions can reload the list they came from.
type ListController struct {
	desc    *Descriptor
	backend Backend
	view    View
	logger  *zap.Logger

	form    *FormDialog
	detail  *DetailDialog
	mutator *Mutator
	toolbar []Action

	mu     sync.Mutex
	state  PageState
	seq    uint64
	screen Screen
}

// NewListController creates a controller for d drawing into surface
func NewListController(d *Descriptor, backend Backend, surface Surface, opts ...Option) *ListController {
	s := newSettings(opts)
	c := &ListController{
		desc:    d,
		backend: backend,
		view:    surface,
		logger:  s.logger.With(zap.String("entity", d.Name)),
		form:    NewFormDialog(backend, surface, opts...),
		detail:  NewDetailDialog(backend, surface, opts...),
		mutator: NewMutator(backend, surface, opts...),
		state:   PageState{Page: 1, Size: PageSize, Filters: map[string]string{}},
	}
	c.toolbar = c.buildToolbar()
	return c
}

// Descriptor returns the entity the controller lists
func (c *ListController) Descriptor() *Descriptor {
	return c.desc
}

// Form returns the controller's form dialog
func (c *ListController) Form() *FormDialog {
	return c.form
}

// Show draws the empty list region and loads the first page
func (c *ListController) Show(ctx context.Context) {
	c.mu.Lock()
	c.state = PageState{Page: 1, Size: PageSize, Filters: map[string]string{}}
	c.drawLocked(c.baseScreenLocked())
	c.mu.Unlock()

	c.LoadPage(ctx, 1)
}

// LoadPage requests page and renders the result. Errors are shown as a
// banner in the list region. When loads overlap, only the most recently
// issued one is drawn.
func (c *ListController) LoadPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.state.Page = page
	c.seq++
	seq := c.seq
	query := c.state.Query(c.desc)
	loading := c.baseScreenLocked()
	loading.Loading = true
	c.drawLocked(loading)
	c.mu.Unlock()

	result, err := c.backend.List(ctx, c.desc.Path, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("Dropping stale page", zap.String("query", query))
		return
	}

	screen := c.baseScreenLocked()
	switch {
	case err != nil:
		c.logger.Warn("Failed to load page", zap.Error(err), zap.String("query", query))
		screen.Banner = &Banner{
			Kind: BannerError,
			Text: api.Message(err, "Failed to load "+strings.ToLower(c.desc.Title)),
			TTL:  BannerTTL,
		}
	case result == nil || len(result.Data) == 0:
		screen.Empty = c.desc.emptyText()
	default:
		screen.Table = Render(result.Data, c.desc, c.rowActions)
		screen.Pager = BuildPager(result.Pagination, c.LoadPage)
	}
	c.drawLocked(screen)
}

// Search sets the search term and reloads page 1 if it changed.
// It reports whether a reload happened.
func (c *ListController) Search(ctx context.Context, term string) bool {
	if !c.desc.Searchable {
		return false
	}
	term = strings.TrimSpace(term)

	c.mu.Lock()
	if term == c.state.Search {
		c.mu.Unlock()
		return false
	}
	c.state.Search = term
	c.mu.Unlock()

	c.LoadPage(ctx, 1)
	return true
}

// SetFilter sets a descriptor filter and reloads page 1 if it changed.
// An empty value clears the filter.
func (c *ListController) SetFilter(ctx context.Context, key, value string) bool {
	if !c.desc.HasFilter(key) {
		return false
	}
	value = strings.TrimSpace(value)

	c.mu.Lock()
	if c.state.Filters[key] == value {
		c.mu.Unlock()
		return false
	}
	if value == "" {
		delete(c.state.Filters, key)
	} else {
		c.state.Filters[key] = value
	}
	c.mu.Unlock()

	c.LoadPage(ctx, 1)
	return true
}

// Navigate replaces search and filters and loads page with a single request.
// Unknown filter keys are ignored.
func (c *ListController) Navigate(ctx context.Context, state PageState) {
	c.mu.Lock()
	c.state.Search = ""
	if c.desc.Searchable {
		c.state.Search = strings.TrimSpace(state.Search)
	}
	c.state.Filters = map[string]string{}
	for _, f := range c.desc.Filters {
		if v := strings.TrimSpace(state.Filters[f.Key]); v != "" {
			c.state.Filters[f.Key] = v
		}
	}
	c.mu.Unlock()

	c.LoadPage(ctx, state.Page)
}

// Refresh reloads the current page keeping search and filters
func (c *ListController) Refresh(ctx context.Context) {
	c.mu.Lock()
	page := c.state.Page
	c.mu.Unlock()

	c.LoadPage(ctx, page)
}

// State returns a copy of the page state
func (c *ListController) State() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Screen returns the last drawn screen
func (c *ListController) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// OpenCreate opens the create form; a saved record reloads page 1
func (c *ListController) OpenCreate(ctx context.Context) {
	c.detail.Close()
	c.form.OpenCreate(ctx, c.desc, c.reloadFirst)
}

// OpenForm opens one of the descriptor's action forms; success reloads page 1
func (c *ListController) OpenForm(ctx context.Context, spec FormSpec) {
	c.detail.Close()
	c.form.Open(ctx, spec, c.reloadFirst)
}

// OpenEdit opens the edit form for id; a saved record reloads the current page
func (c *ListController) OpenEdit(ctx context.Context, id int64) {
	c.detail.Close()
	c.form.OpenEdit(ctx, c.desc, id, c.reloadCurrent)
}

// OpenDetail shows the detail dialog for id
func (c *ListController) OpenDetail(ctx context.Context, id int64) {
	c.form.Close()
	c.detail.Open(ctx, c.desc, id)
}

// CloseDialogs closes the list's form and detail dialogs
func (c *ListController) CloseDialogs() {
	c.form.Close()
	c.detail.Close()
}

// Delete deletes id after confirmation and reloads page 1
func (c *ListController) Delete(ctx context.Context, id int64) bool {
	return c.mutator.Delete(ctx, c.desc, id, func(ctx context.Context) {
		c.LoadPage(ctx, 1)
	})
}

func (c *ListController) reloadFirst(ctx context.Context, _ models.Record) {
	c.LoadPage(ctx, 1)
}

func (c *ListController) reloadCurrent(ctx context.Context, _ models.Record) {
	c.Refresh(ctx)
}

func (c *ListController) rowActions(id int64) []Action {
	var actions []Action
	if c.desc.Can.Detail {
		actions = append(actions, Action{Label: "Detail", Kind: ActionDetail, Run: func(ctx context.Context) {
			c.OpenDetail(ctx, id)
		}})
	}
	if c.desc.Can.Edit {
		actions = append(actions, Action{Label: "Edit", Kind: ActionEdit, Run: func(ctx context.Context) {
			c.OpenEdit(ctx, id)
		}})
	}
	if c.desc.Can.Delete {
		actions = append(actions, Action{Label: "Delete", Kind: ActionDelete, Run: func(ctx context.Context) {
			c.Delete(ctx, id)
		}})
	}
	return actions
}

func (c *ListController) buildToolbar() []Action {
	var toolbar []Action
	if c.desc.Can.Create {
		toolbar = append(toolbar, Action{Label: "New " + c.desc.Noun, Kind: ActionCreate, Run: c.OpenCreate})
	}
	for _, spec := range c.desc.Forms {
		spec := spec
		toolbar = append(toolbar, Action{Label: spec.Title, Kind: ActionForm, Run: func(ctx context.Context) {
			c.OpenForm(ctx, spec)
		}})
	}
	return toolbar
}

func (c *ListController) baseScreenLocked() Screen {
	filters := make([]FilterValue, 0, len(c.desc.Filters))
	for _, f := range c.desc.Filters {
		filters = append(filters, FilterValue{Filter: f, Value: c.state.Filters[f.Key]})
	}
	return Screen{
		Entity:     c.desc.Name,
		Title:      c.desc.Title,
		Searchable: c.desc.Searchable,
		SearchHint: c.desc.SearchHint,
		Search:     c.state.Search,
		Filters:    filters,
		Toolbar:    c.toolbar,
	}
}

func (c *ListController) drawLocked(s Screen) {
	c.screen = s
	c.view.Draw(s)
}
