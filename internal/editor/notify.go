package editor

import "log"

// Notifier receives user facing messages. Calls must not block.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type logNotifier struct{}

func (logNotifier) Success(msg string) { log.Printf("ok: %s", msg) }

func (logNotifier) Error(msg string) { log.Printf("error: %s", msg) }

// Toast is one notification kept for display.
type Toast struct {
	Error   bool
	Message string
}

// Toasts collects notifications in memory, newest last, bounded to Max entries.
type Toasts struct {
	Max   int
	items []Toast
}

func (t *Toasts) Success(msg string) { t.push(Toast{Message: msg}) }

func (t *Toasts) Error(msg string) { t.push(Toast{Error: true, Message: msg}) }

func (t *Toasts) push(x Toast) {
	t.items = append(t.items, x)
	limit := t.Max
	if limit <= 0 {
		limit = 5
	}
	if over := len(t.items) - limit; over > 0 {
		t.items = t.items[over:]
	}
}

func (t *Toasts) Items() []Toast { return t.items }

func (t *Toasts) Last() (Toast, bool) {
	if len(t.items) == 0 {
		return Toast{}, false
	}
	return t.items[len(t.items)-1], true
}

func (t *Toasts) Clear() { t.items = nil }
