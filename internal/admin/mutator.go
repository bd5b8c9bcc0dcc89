package admin

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"library-admin/internal/api"
)

// Mutator performs confirmed deletes
type Mutator struct {
	backend  Backend
	prompter Prompter
	logger   *zap.Logger
}

// NewMutator creates a mutator asking prompter for confirmations
func NewMutator(backend Backend, prompter Prompter, opts ...Option) *Mutator {
	s := newSettings(opts)
	return &Mutator{
		backend:  backend,
		prompter: prompter,
		logger:   s.logger,
	}
}

// DeletePrompt is the confirmation asked before deleting a record
func DeletePrompt(d *Descriptor) string {
	return "Are you sure you want to delete this " + d.Noun + "?"
}

// Delete asks for confirmation, deletes the record and calls onDeleted.
// Nothing is sent when the user declines. It reports whether the record was deleted.
func (m *Mutator) Delete(ctx context.Context, d *Descriptor, id int64, onDeleted func(ctx context.Context)) bool {
	if !m.prompter.Confirm(ctx, DeletePrompt(d)) {
		return false
	}

	if _, err := m.backend.Send(ctx, http.MethodDelete, d.ItemPath(id), nil); err != nil {
		m.logger.Info("Delete failed",
			zap.Error(err),
			zap.String("entity", d.Name),
			zap.Int64("id", id),
		)
		m.prompter.Alert(ctx, api.Message(err, "Failed to delete "+d.Noun))
		return false
	}

	m.logger.Info("Record deleted", zap.String("entity", d.Name), zap.Int64("id", id))
	m.prompter.Alert(ctx, "Deleted "+d.Noun)
	if onDeleted != nil {
		onDeleted(ctx)
	}
	return true
}
