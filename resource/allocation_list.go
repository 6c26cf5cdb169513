package resource

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/vke/internal/utils"
	"github.com/vkngwrapper/vke/memutils"
)

// allocationList is an intrusive doubly-linked list of the live allocations of a manager
type allocationList struct {
	mutex utils.OptionalRWMutex

	count int
	head  *Allocation
	tail  *Allocation
}

func (l *allocationList) Init(useMutex bool) {
	l.mutex = utils.OptionalRWMutex{UseMutex: useMutex}
}

func (l *allocationList) Validate() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	actualCount := 0
	var prev *Allocation
	for alloc := l.head; alloc != nil; alloc = alloc.next {
		if alloc.prev != prev {
			return errors.Errorf("allocation %d does not link back to its predecessor", actualCount)
		}
		prev = alloc
		actualCount++
	}

	if prev != l.tail {
		return errors.New("the last allocation in the list is not the list tail")
	}

	if l.count != actualCount {
		return errors.Errorf("the listed number of allocations in the list (%d) does not match the actual number of allocations (%d)", l.count, actualCount)
	}

	return nil
}

func (l *allocationList) AddDetailedStatistics(stats *memutils.DetailedStatistics, memoryTypeIndex int) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	for alloc := l.head; alloc != nil; alloc = alloc.next {
		if memoryTypeIndex >= 0 && alloc.memoryTypeIndex != memoryTypeIndex {
			continue
		}
		stats.AddAllocation(alloc.size)
	}
}

func (l *allocationList) BuildStatsString(json *jwriter.ObjectState) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	s := json.Name("Allocations").Array()
	defer s.End()

	for alloc := l.head; alloc != nil; alloc = alloc.next {
		o := s.Object()
		alloc.printParameters(&o)
		o.End()
	}
}

func (l *allocationList) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.count
}

func (l *allocationList) Register(alloc *Allocation) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.pushAllocation(alloc)
}

func (l *allocationList) Unregister(alloc *Allocation) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.removeAllocation(alloc)
}

// TakeAll empties the list and returns what it held, oldest first
func (l *allocationList) TakeAll() []*Allocation {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	allocs := make([]*Allocation, 0, l.count)
	for l.head != nil {
		alloc := l.head
		l.removeAllocation(alloc)
		allocs = append(allocs, alloc)
	}

	return allocs
}

func (l *allocationList) removeAllocation(alloc *Allocation) {
	if !alloc.listed {
		return
	}

	prev := alloc.prev
	next := alloc.next

	if prev != nil {
		prev.next = next
	} else {
		l.head = next
	}

	if next != nil {
		next.prev = prev
	} else {
		l.tail = prev
	}

	alloc.next = nil
	alloc.prev = nil
	alloc.listed = false

	l.count--
}

func (l *allocationList) pushAllocation(alloc *Allocation) {
	alloc.listed = true

	if l.count == 0 {
		l.head = alloc
		l.tail = alloc
		l.count = 1
	} else {
		alloc.prev = l.tail
		l.tail.next = alloc

		l.tail = alloc
		l.count++
	}
}
