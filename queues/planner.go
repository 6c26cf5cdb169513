// Package queues turns a flat list of logical queue requests into the per-family queue
// descriptors the device create call needs, and decides which hardware queue slot each
// request will be served by.
package queues

import (
	"github.com/dolthub/swiss"
)

// Request asks for one logical queue from a queue family
type Request struct {
	FamilyIndex int
	// Priority is the relative scheduling priority, from 0.0 to 1.0
	Priority float32
}

// Assignment is the hardware slot a Request was planned onto
type Assignment struct {
	FamilyIndex   int
	IndexInFamily int
}

// FamilyPlan describes the queues to create for a single family
type FamilyPlan struct {
	FamilyIndex int
	QueueCount  int
	// Priorities holds one entry per created queue
	Priorities []float32
}

// Plan is the output of Build
type Plan struct {
	// Families are ordered by the first request that named each family
	Families []FamilyPlan
	// Assignments is parallel to the requests passed to Build
	Assignments []Assignment
}

// MaxQueueCountFunc reports how many queues the hardware exposes for a family. A value
// of zero or less means the family is unknown.
type MaxQueueCountFunc func(familyIndex int) int

type familyGroup struct {
	familyIndex int
	requests    []int
}

// Build groups requests by family and assigns each one a slot within its family.
//
// Within a family, request n (counting in request order) gets slot n % max. Once max
// slots are handed out, later requests share the queues that already exist and their
// priorities are not recorded, so a family never asks for more than max queues. A family
// the hardware does not report is planned with one queue per request and left for the
// native create call to reject.
func Build(requests []Request, maxQueueCount MaxQueueCountFunc) Plan {
	groupIndex := swiss.NewMap[int, int](uint32(len(requests) + 1))
	var groups []familyGroup

	for requestIndex, request := range requests {
		index, ok := groupIndex.Get(request.FamilyIndex)
		if !ok {
			index = len(groups)
			groupIndex.Put(request.FamilyIndex, index)
			groups = append(groups, familyGroup{familyIndex: request.FamilyIndex})
		}
		groups[index].requests = append(groups[index].requests, requestIndex)
	}

	plan := Plan{
		Families:    make([]FamilyPlan, 0, len(groups)),
		Assignments: make([]Assignment, len(requests)),
	}

	for _, group := range groups {
		slotCount := maxQueueCount(group.familyIndex)
		if slotCount <= 0 {
			slotCount = len(group.requests)
		}

		family := FamilyPlan{FamilyIndex: group.familyIndex}
		saturated := false

		for counter, requestIndex := range group.requests {
			plan.Assignments[requestIndex] = Assignment{
				FamilyIndex:   group.familyIndex,
				IndexInFamily: counter % slotCount,
			}

			if !saturated {
				family.Priorities = append(family.Priorities, requests[requestIndex].Priority)
			}

			if counter+1 >= slotCount {
				saturated = true
			}
		}

		family.QueueCount = len(family.Priorities)
		plan.Families = append(plan.Families, family)
	}

	return plan
}

// MaxQueueCounts adapts a slice of per-family queue counts, indexed by family, to a
// MaxQueueCountFunc
func MaxQueueCounts(counts []int) MaxQueueCountFunc {
	return func(familyIndex int) int {
		if familyIndex < 0 || familyIndex >= len(counts) {
			return 0
		}
		return counts[familyIndex]
	}
}
