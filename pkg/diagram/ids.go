package diagram

// FirstID is the first numeric id handed out. Slide formats reserve 1 for
// the slide's own shape tree.
const FirstID = 2

// IDAllocator hands out numeric element ids for one layout pass. Create a
// fresh allocator per pass; it is not safe for concurrent use.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator starting at [FirstID].
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: FirstID}
}

// Take returns the next unused id.
func (a *IDAllocator) Take() int {
	if a.next < FirstID {
		a.next = FirstID
	}
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next Take will return.
func (a *IDAllocator) Peek() int { return max(a.next, FirstID) }
