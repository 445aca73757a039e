package superbounds

// HitFlags holds one flag per collection index. The ray query only ever sets flags, so a
// buffer has to be cleared before it is reused.
type HitFlags []bool

func (hf HitFlags) Clear() {
	for i := range hf {
		hf[i] = false
	}
}

func (hf HitFlags) Count() int {
	n := 0
	for _, hit := range hf {
		if hit {
			n++
		}
	}
	return n
}

// HitList is a dense list with a fixed capacity. Appends past the capacity are dropped.
type HitList struct {
	items []BoundingBox
}

func NewHitList(capacity int) *HitList {
	if capacity < 0 {
		capacity = 0
	}
	return &HitList{items: make([]BoundingBox, 0, capacity)}
}

// Append reports false, leaving the list untouched, when the list is already full.
func (hl *HitList) Append(b BoundingBox) bool {
	if hl.Full() {
		return false
	}
	hl.items = append(hl.items, b)
	return true
}

func (hl *HitList) Len() int   { return len(hl.items) }
func (hl *HitList) Cap() int   { return cap(hl.items) }
func (hl *HitList) Full() bool { return len(hl.items) == cap(hl.items) }

// Items returns a view of the list. It is only valid until the next Reset.
func (hl *HitList) Items() []BoundingBox { return hl.items }

func (hl *HitList) Reset() { hl.items = hl.items[:0] }
