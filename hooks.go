package modelwatch

import "sync"

// NewItemsHook is called once per region with newly detected item IDs,
// after the diff and before notification. It runs on the Run goroutine.
type NewItemsHook func(region string, ids []string)

type hooks struct {
	mu         sync.RWMutex
	onNewItems []NewItemsHook
}

// OnNewItems registers fn to observe new items.
func (h *hooks) OnNewItems(fn NewItemsHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNewItems = append(h.onNewItems, fn)
}

func (h *hooks) triggerNewItems(region string, ids []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onNewItems {
		fn(region, ids)
	}
}
