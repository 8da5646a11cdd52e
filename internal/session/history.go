package session

import (
	"image"
	"time"
)

// Entry is one completed generation. It is never modified after creation.
type Entry struct {
	ID             string
	FullPrompt     string
	OriginalPrompt string
	RevisedPrompt  string
	Size           string
	Quality        string
	Thumbnail      image.Image
	Raw            []byte
	CreatedAt      time.Time
}

// History holds the entries of the current session, newest first. It only
// grows at the front and is only ever emptied as a whole.
type History struct {
	entries []Entry
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Prepend(e Entry) {
	h.entries = append([]Entry{e}, h.entries...)
}

// At returns the entry at index, or false when index is out of range.
func (h *History) At(index int) (Entry, bool) {
	if index < 0 || index >= len(h.entries) {
		return Entry{}, false
	}
	return h.entries[index], true
}

func (h *History) Clear() {
	h.entries = nil
}
