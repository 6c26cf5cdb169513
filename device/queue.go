package device

import "github.com/vkngwrapper/vke/native"

// Queue is a logical queue requested from a Device before activation. Its slot and native
// handle are filled in by Activate. Queues that were planned onto the same slot share a
// native queue.
type Queue struct {
	familyIndex   int
	priority      float32
	indexInFamily int
	handle        native.Queue
}

func (q *Queue) FamilyIndex() int {
	return q.familyIndex
}

func (q *Queue) Priority() float32 {
	return q.priority
}

// IndexInFamily is the slot this queue was planned onto, or -1 while the queue is not bound
func (q *Queue) IndexInFamily() int {
	return q.indexInFamily
}

// Handle is the native queue, or 0 while the queue is not bound
func (q *Queue) Handle() native.Queue {
	return q.handle
}

// Ready reports whether the queue is bound to a native queue. Queues are bound by a
// successful Activate and unbound again when the Device is disposed.
func (q *Queue) Ready() bool {
	return q.indexInFamily >= 0
}

func (q *Queue) unbind() {
	q.indexInFamily = -1
	q.handle = 0
}
