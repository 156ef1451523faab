package ledger

import "sync/atomic"

type usageNode struct {
	id   uint32
	next *usageNode
}

// UsageLog is a lock-free multi-producer log of "asset touched" events.
// The zero value is ready to use.
type UsageLog struct {
	head atomic.Pointer[usageNode]
}

// Push records a use of id. It never blocks.
func (l *UsageLog) Push(id uint32) {
	n := &usageNode{id: id}
	for {
		old := l.head.Load()
		n.next = old
		if l.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Drain detaches every recorded event and calls fn for each.
// Events are visited newest first; callers only care about membership.
func (l *UsageLog) Drain(fn func(id uint32)) int {
	n := l.head.Swap(nil)
	count := 0
	for ; n != nil; n = n.next {
		fn(n.id)
		count++
	}
	return count
}

// Empty reports whether no events are waiting.
func (l *UsageLog) Empty() bool {
	return l.head.Load() == nil
}
