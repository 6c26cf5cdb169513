//go:build !debug_mem_utils

package resource

// validateAllocations panics if the allocation list has been corrupted. It no-ops unless
// the debug_mem_utils build tag is present.
func (m *Manager) validateAllocations() {}
