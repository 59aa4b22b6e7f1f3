package database

import "sync"

// hub fans change notifications out to in-process listeners. It backs the
// stores that only ever see writes from this process.
type hub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]*hubListener
}

func newHub() *hub {
	return &hub{listeners: make(map[string]map[int]*hubListener)}
}

type hubListener struct {
	mu      sync.Mutex
	stopped bool

	load       func() ([]Document, error)
	onSnapshot func([]Document)
	onError    func(error)
	remove     func()
}

func (h *hub) add(key string, l *hubListener) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.listeners[key] == nil {
		h.listeners[key] = make(map[int]*hubListener)
	}
	h.listeners[key][id] = l
	l.remove = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners[key], id)
		if len(h.listeners[key]) == 0 {
			delete(h.listeners, key)
		}
	}
}

func (h *hub) snapshot(key string) []*hubListener {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*hubListener, 0, len(h.listeners[key]))
	for _, l := range h.listeners[key] {
		out = append(out, l)
	}
	return out
}

// publish re-delivers the partition to every listener on the writer's goroutine.
func (h *hub) publish(key string) {
	for _, l := range h.snapshot(key) {
		l.deliver()
	}
}

// fail reports err to every listener on key and detaches them.
func (h *hub) fail(key string, err error) {
	for _, l := range h.snapshot(key) {
		l.fail(err)
	}
}

func (l *hubListener) deliver() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	docs, err := l.load()
	if err != nil {
		l.stopLocked()
		if l.onError != nil {
			l.onError(err)
		}
		return
	}
	l.onSnapshot(docs)
}

func (l *hubListener) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopLocked()
	if l.onError != nil {
		l.onError(err)
	}
}

func (l *hubListener) stopLocked() {
	l.stopped = true
	l.remove()
}

func (l *hubListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopLocked()
}
