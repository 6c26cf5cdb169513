//go:build debug_mem_utils

package resource

import "fmt"

// validateAllocations panics if the allocation list has been corrupted. It no-ops unless
// the debug_mem_utils build tag is present.
func (m *Manager) validateAllocations() {
	if err := m.allocations.Validate(); err != nil {
		panic(fmt.Sprintf("resource manager allocation list is corrupt: %+v", err))
	}
}
