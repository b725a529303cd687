package channel

import "sync"

// History is a ring of recently handled messages.
// Platforms sometimes deliver the same message more than once, so the
// history doubles as a record of which messages were already handled.
type History struct {
	mu   sync.Mutex
	ring []HistoryMessage
	// k is the total number of messages ever added.
	k uint64
	// ids is the set of message IDs currently in the ring.
	ids map[string]int
}

// HistoryMessage is the minimal representation of a message recorded in a
// channel's history.
type HistoryMessage struct {
	ID     string
	Sender string
	Text   string
}

// ringsize is the number of messages in a history.
const ringsize = 1 << 7

// ringsize must be a power of 2; this line enforces that.
var _ [0]struct{} = [ringsize & (ringsize - 1)]struct{}{}

func NewHistory() *History {
	return &History{
		ring: make([]HistoryMessage, ringsize),
		ids:  make(map[string]int, ringsize),
	}
}

// Add records a message. It reports false without recording anything if a
// message with the same non-empty ID is already in the history.
func (h *History) Add(id, who, text string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id != "" && h.ids[id] > 0 {
		return false
	}
	k := h.k % ringsize
	if old := h.ring[k].ID; h.k >= ringsize && old != "" {
		if h.ids[old]--; h.ids[old] <= 0 {
			delete(h.ids, old)
		}
	}
	h.ring[k] = HistoryMessage{ID: id, Sender: who, Text: text}
	if id != "" {
		h.ids[id]++
	}
	h.k++
	return true
}

// Messages returns the messages in the history from oldest to newest.
func (h *History) Messages() []HistoryMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	l := uint64(max(int64(h.k)-ringsize, 0))
	r := make([]HistoryMessage, 0, h.k-l)
	for ; l < h.k; l++ {
		r = append(r, h.ring[l%ringsize])
	}
	return r
}
