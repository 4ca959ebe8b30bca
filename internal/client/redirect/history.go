package redirect

import "sync"

// HistoryNavigator is an in-memory history stack
type HistoryNavigator struct {
	mu           sync.Mutex
	entries      []string
	replacements int
	onChange     func(path string)
}

func NewHistoryNavigator(initial string, onChange func(path string)) *HistoryNavigator {
	return &HistoryNavigator{entries: []string{initial}, onChange: onChange}
}

func (h *HistoryNavigator) Pathname() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

func (h *HistoryNavigator) Push(path string) {
	h.mu.Lock()
	h.entries = append(h.entries, path)
	h.mu.Unlock()
	h.changed(path)
}

func (h *HistoryNavigator) Replace(path string) {
	h.mu.Lock()
	h.entries[len(h.entries)-1] = path
	h.replacements++
	h.mu.Unlock()
	h.changed(path)
}

func (h *HistoryNavigator) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *HistoryNavigator) Replacements() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replacements
}

func (h *HistoryNavigator) changed(path string) {
	if h.onChange != nil {
		h.onChange(path)
	}
}
