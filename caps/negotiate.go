// Package caps decides which optional capabilities (extensions and layers) are handed to
// the native create calls. It never fails: a capability that is not available is reported
// and left out.
package caps

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"
)

const minimumSizeHint = 8

func sizeHint(count int) uint32 {
	if count < minimumSizeHint {
		return minimumSizeHint
	}
	return uint32(count)
}

// NameSet is a set of capability names reported by the driver
type NameSet struct {
	names *swiss.Map[string, struct{}]
}

func NewNameSet(names ...string) *NameSet {
	set := &NameSet{names: swiss.NewMap[string, struct{}](sizeHint(len(names)))}
	for _, name := range names {
		set.names.Put(name, struct{}{})
	}
	return set
}

func (s *NameSet) Add(name string) {
	s.names.Put(name, struct{}{})
}

// Names lists the set in no particular order
func (s *NameSet) Names() []string {
	if s == nil {
		return nil
	}

	names := make([]string, 0, s.names.Count())
	s.names.Iter(func(name string, _ struct{}) bool {
		names = append(names, name)
		return false
	})
	return names
}

func (s *NameSet) Has(name string) bool {
	if s == nil {
		return false
	}
	return s.names.Has(name)
}

func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}
	return s.names.Count()
}

// Status records, for one capability name, whether it was asked for and whether the
// driver offers it
type Status struct {
	Requested bool
	Supported bool
}

// Negotiation is the outcome of filtering a requested capability list
type Negotiation struct {
	// Enabled holds the supported requests in the order they were requested
	Enabled []string
	// Rejected holds the unsupported requests in the order they were requested
	Rejected []string

	statuses *swiss.Map[string, Status]
}

// Status looks up the outcome for name. Only requested names are tracked.
func (n Negotiation) Status(name string) (Status, bool) {
	if n.statuses == nil {
		return Status{}, false
	}
	return n.statuses.Get(name)
}

// Negotiate filters requested down to the names present in supported, keeping the
// caller's order. Each rejected name is logged through logger and dropped; a name
// requested more than once is only considered the first time.
func Negotiate(logger *slog.Logger, kind string, requested []string, supported *NameSet) Negotiation {
	negotiation := Negotiation{
		statuses: swiss.NewMap[string, Status](sizeHint(len(requested))),
	}

	for _, name := range requested {
		if negotiation.statuses.Has(name) {
			continue
		}

		isSupported := supported.Has(name)
		negotiation.statuses.Put(name, Status{Requested: true, Supported: isSupported})

		if isSupported {
			negotiation.Enabled = append(negotiation.Enabled, name)
			continue
		}

		negotiation.Rejected = append(negotiation.Rejected, name)
		if logger != nil {
			logger.Warn("requested capability is not supported, continuing without it",
				slog.String("kind", kind),
				slog.String("name", name))
		}
	}

	return negotiation
}
