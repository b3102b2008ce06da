package core

import (
	"sort"
	"sync"
)

// Format parses one kind of declarations document.
type Format interface {
	// Matches reports whether the file at path uses this format.
	Matches(path string) bool

	// Parse extracts the declared packages from content.
	Parse(content string) LoadSession

	// Examples lists representative file names, used in error messages.
	Examples() []string
}

type registration struct {
	name     string
	priority int
	format   Format
}

var (
	formats = make(map[string]registration)
	mu      sync.RWMutex
)

// Register adds a declarations format. Formats are tried in ascending
// priority order, then by name.
func Register(name string, priority int, format Format) {
	mu.Lock()
	defer mu.Unlock()
	formats[name] = registration{name: name, priority: priority, format: format}
}

// FormatFor returns the first registered format matching path.
func FormatFor(path string) (string, Format, bool) {
	for _, reg := range ordered() {
		if reg.format.Matches(path) {
			return reg.name, reg.format, true
		}
	}
	return "", nil, false
}

// SupportedFormats returns the registered format names in lookup order.
func SupportedFormats() []string {
	regs := ordered()
	names := make([]string, 0, len(regs))
	for _, reg := range regs {
		names = append(names, reg.name)
	}
	return names
}

// SupportedFileNames returns example file names for every registered format.
func SupportedFileNames() []string {
	var names []string
	for _, reg := range ordered() {
		names = append(names, reg.format.Examples()...)
	}
	return names
}

func ordered() []registration {
	mu.RLock()
	regs := make([]registration, 0, len(formats))
	for _, reg := range formats {
		regs = append(regs, reg)
	}
	mu.RUnlock()

	sort.Slice(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority < regs[j].priority
		}
		return regs[i].name < regs[j].name
	})
	return regs
}
