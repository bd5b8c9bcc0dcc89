package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

const actionPrefix = "act:"

// Keyboard scopes. Redrawing a region invalidates the buttons it bound before.
const (
	scopeList    = "list"
	scopeDialog  = "dialog"
	scopeConfirm = "confirm"
	scopeNav     = "nav"
)

// actionRegistry maps callback data to the closures buttons were bound to.
// Telegram limits callback data to 64 bytes, so buttons carry short tokens.
type actionRegistry struct {
	mu      sync.Mutex
	next    uint64
	actions map[string]func(ctx context.Context)
	scopes  map[string][]string
}

func newActionRegistry() *actionRegistry {
	return &actionRegistry{
		actions: make(map[string]func(ctx context.Context)),
		scopes:  make(map[string][]string),
	}
}

// bind registers fn under scope and returns the callback data for its button
func (r *actionRegistry) bind(scope string, fn func(ctx context.Context)) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	token := strconv.FormatUint(r.next, 36)
	r.actions[token] = fn
	r.scopes[scope] = append(r.scopes[scope], token)
	return actionPrefix + token
}

// reset forgets every action bound under scope
func (r *actionRegistry) reset(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.scopes[scope] {
		delete(r.actions, token)
	}
	delete(r.scopes, scope)
}

// lookup resolves callback data to its action
func (r *actionRegistry) lookup(data string) (func(ctx context.Context), bool) {
	if !strings.HasPrefix(data, actionPrefix) {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.actions[strings.TrimPrefix(data, actionPrefix)]
	return fn, ok
}

// size is the number of live actions
func (r *actionRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}
