package upload

import "sync"

// Registry hands out one widget per user, created lazily.
type Registry struct {
	mu       sync.Mutex
	widgets  map[string]*Widget
	maxBytes int64
}

// NewRegistry creates an empty widget registry.
func NewRegistry(maxBytes int64) *Registry {
	return &Registry{
		widgets:  make(map[string]*Widget),
		maxBytes: maxBytes,
	}
}

// Widget returns the widget for a user, creating it on first use.
func (r *Registry) Widget(email string) *Widget {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.widgets[email]
	if !ok {
		w = NewWidget(r.maxBytes)
		r.widgets[email] = w
	}
	return w
}
