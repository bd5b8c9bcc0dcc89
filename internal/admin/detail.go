package admin

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"library-admin/internal/api"
)

// DetailDialog shows a single record as label/value lines
type DetailDialog struct {
	backend Backend
	view    DialogView
	logger  *zap.Logger

	mu   sync.Mutex
	gen  uint64
	open bool
}

// NewDetailDialog creates a closed detail dialog drawing into view
func NewDetailDialog(backend Backend, view DialogView, opts ...Option) *DetailDialog {
	s := newSettings(opts)
	return &DetailDialog{
		backend: backend,
		view:    view,
		logger:  s.logger,
	}
}

// Open fetches the record and shows the descriptor's detail columns
func (d *DetailDialog) Open(ctx context.Context, desc *Descriptor, id int64) {
	title := detailTitle(desc, id)

	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.open = true
	d.view.ShowDetail(DetailScreen{Title: title, Loading: true})
	d.mu.Unlock()

	rec, err := d.backend.Get(ctx, desc.ItemPath(id))

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	if err != nil {
		d.logger.Warn("Failed to load record details",
			zap.Error(err),
			zap.String("entity", desc.Name),
			zap.Int64("id", id),
		)
		d.view.ShowDetail(DetailScreen{
			Title:   title,
			Message: &Banner{Kind: BannerError, Text: api.Message(err, "Failed to load "+desc.Noun+" details")},
		})
		return
	}

	cols := desc.detailColumns()
	screen := DetailScreen{Title: title, Lines: make([]DetailLine, 0, len(cols))}
	for _, col := range cols {
		screen.Lines = append(screen.Lines, DetailLine{Label: col.Label, Value: col.Accessor(rec)})
	}
	d.view.ShowDetail(screen)
}

// Close hides the dialog if it is open
func (d *DetailDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	d.gen++
	d.open = false
	d.view.CloseDialog()
}

func detailTitle(desc *Descriptor, id int64) string {
	noun := desc.Noun
	if noun != "" {
		noun = strings.ToUpper(noun[:1]) + noun[1:]
	}
	return noun + " #" + strconv.FormatInt(id, 10)
}
