package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"library-admin/internal/api"
	"library-admin/internal/models"
)

// ValidationError is returned for input rejected before any request is made
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BuildBody converts raw form input into a request body.
// Strings are trimmed (passwords are sent as typed), numbers are parsed,
// id lists are split on commas. Empty optional fields are left out.
func BuildBody(fields []Field, values map[string]string) (map[string]interface{}, error) {
	body := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		raw := values[f.Name]
		if f.Kind != KindPassword {
			raw = strings.TrimSpace(raw)
		}

		switch f.Kind {
		case KindIDList:
			ids, err := parseIDList(f, raw)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				if f.Required {
					return nil, required(f)
				}
				continue
			}
			body[f.Name] = ids

		case KindNumber:
			if raw == "" {
				if f.Required {
					return nil, required(f)
				}
				continue
			}
			n, err := parseNumber(raw)
			if err != nil {
				return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("%s must be a number", f.Label)}
			}
			body[f.Name] = n

		default:
			if raw == "" {
				if f.Required {
					return nil, required(f)
				}
				continue
			}
			body[f.Name] = raw
		}
	}
	return body, nil
}

func required(f Field) error {
	return &ValidationError{Field: f.Name, Message: fmt.Sprintf("%s is required", f.Label)}
}

func parseNumber(raw string) (interface{}, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseIDList(f Field, raw string) ([]int64, error) {
	ids := []int64{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("%s: %q is not a number", f.Label, token)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// fieldValue reads the initial edit value of a field from a fetched record
func fieldValue(f Field, rec models.Record) string {
	if f.Source != nil {
		return f.Source(rec)
	}
	return rec.String(f.Name)
}

// FormDialog is the create/edit/action dialog of one console.
// There is a single instance per owner; opening it again replaces whatever it showed.
type FormDialog struct {
	backend Backend
	view    DialogView
	logger  *zap.Logger
	delay   time.Duration

	mu      sync.Mutex
	gen     uint64
	state   DialogState
	spec    FormSpec
	values  map[string]string
	message *Banner
	onSaved func(ctx context.Context, rec models.Record)
}

// NewFormDialog creates a closed dialog drawing into view
func NewFormDialog(backend Backend, view DialogView, opts ...Option) *FormDialog {
	s := newSettings(opts)
	return &FormDialog{
		backend: backend,
		view:    view,
		logger:  s.logger,
		delay:   s.successDelay,
		state:   DialogClosed,
	}
}

// OpenCreate shows an empty form built from the descriptor's fields
func (f *FormDialog) OpenCreate(ctx context.Context, d *Descriptor, onSaved func(ctx context.Context, rec models.Record)) {
	f.Open(ctx, d.createSpec(), onSaved)
}

// Open shows an empty form for spec
func (f *FormDialog) Open(_ context.Context, spec FormSpec, onSaved func(ctx context.Context, rec models.Record)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resetLocked(spec, onSaved)
	f.state = DialogReady
	f.drawLocked()
}

// OpenEdit fetches the record and shows the form populated with its values
func (f *FormDialog) OpenEdit(ctx context.Context, d *Descriptor, id int64, onSaved func(ctx context.Context, rec models.Record)) {
	spec := d.editSpec(id)

	f.mu.Lock()
	gen := f.resetLocked(spec, onSaved)
	f.state = DialogPopulating
	f.drawLocked()
	f.mu.Unlock()

	rec, err := f.backend.Get(ctx, d.ItemPath(id))

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	if err != nil {
		f.logger.Warn("Failed to load record for editing",
			zap.Error(err),
			zap.String("entity", d.Name),
			zap.Int64("id", id),
		)
		f.state = DialogFailed
		f.message = &Banner{Kind: BannerError, Text: api.Message(err, "Failed to load "+d.Noun)}
		f.drawLocked()
		return
	}

	for _, field := range spec.Fields {
		f.values[field.Name] = fieldValue(field, rec)
	}
	f.state = DialogReady
	f.drawLocked()
}

// Set stores raw input for a field of the open form and redraws it
func (f *FormDialog) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != DialogReady {
		return fmt.Errorf("form is %s", f.state)
	}
	for _, field := range f.spec.Fields {
		if field.Name == name {
			f.values[name] = value
			f.drawLocked()
			return nil
		}
	}
	return fmt.Errorf("unknown field %q", name)
}

// Submit validates the input and sends it. On failure the dialog stays open
// with the message and the entered values; on success it shows the success
// message, closes after the success delay and calls onSaved.
func (f *FormDialog) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.state != DialogReady {
		f.mu.Unlock()
		return
	}
	body, err := BuildBody(f.spec.Fields, f.values)
	if err != nil {
		f.message = &Banner{Kind: BannerError, Text: err.Error()}
		f.drawLocked()
		f.mu.Unlock()
		return
	}
	f.state = DialogSubmitting
	f.message = nil
	gen, spec := f.gen, f.spec
	f.drawLocked()
	f.mu.Unlock()

	rec, err := f.backend.Send(ctx, spec.Method, spec.Path, body)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.logger.Info("Form submission failed",
			zap.Error(err),
			zap.String("form", spec.Name),
			zap.String("path", spec.Path),
		)
		f.state = DialogReady
		f.message = &Banner{Kind: BannerError, Text: api.Message(err, spec.FailureText)}
		f.drawLocked()
		f.mu.Unlock()
		return
	}
	f.message = &Banner{Kind: BannerSuccess, Text: spec.SuccessText}
	f.drawLocked()
	onSaved := f.onSaved
	f.mu.Unlock()

	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	f.mu.Lock()
	if gen == f.gen {
		f.closeLocked()
	}
	f.mu.Unlock()

	if onSaved != nil {
		onSaved(ctx, rec)
	}
}

// Close hides the dialog. Results of requests still in flight are dropped.
func (f *FormDialog) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == DialogClosed {
		return
	}
	f.closeLocked()
}

// State returns the dialog's lifecycle state
func (f *FormDialog) State() DialogState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Screen returns what the dialog currently shows
func (f *FormDialog) Screen() FormScreen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screenLocked()
}

func (f *FormDialog) resetLocked(spec FormSpec, onSaved func(ctx context.Context, rec models.Record)) uint64 {
	f.gen++
	f.spec = spec
	f.values = make(map[string]string, len(spec.Fields))
	f.message = nil
	f.onSaved = onSaved
	return f.gen
}

func (f *FormDialog) closeLocked() {
	f.gen++
	f.state = DialogClosed
	f.values = nil
	f.message = nil
	f.onSaved = nil
	f.view.CloseDialog()
}

func (f *FormDialog) screenLocked() FormScreen {
	screen := FormScreen{
		Gen:     f.gen,
		Title:   f.spec.Title,
		State:   f.state,
		Message: f.message,
		Cancel:  func(context.Context) { f.Close() },
	}
	if f.state == DialogClosed {
		return screen
	}
	if f.state != DialogFailed {
		screen.Fields = make([]FieldValue, 0, len(f.spec.Fields))
		for _, field := range f.spec.Fields {
			screen.Fields = append(screen.Fields, FieldValue{Field: field, Value: f.values[field.Name]})
		}
	}
	if f.state == DialogReady {
		screen.Set = f.Set
		screen.Submit = f.Submit
	}
	return screen
}

func (f *FormDialog) drawLocked() {
	f.view.ShowForm(f.screenLocked())
}
