package format

import (
	"fmt"
	"sort"
	"sync"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
)

var (
	// registry maps version tag strings to their Format implementation.
	// Guarded by registryMu: registration happens from package init
	// functions, lookups from arbitrary goroutines.
	registry   = make(map[string]Format)
	registryMu sync.RWMutex
)

// Register adds a format revision to the registry. Registering a version
// tag twice is a programming error and fails.
func Register(f Format) error {
	tag := f.Version()
	if _, err := hypermedia.ParseVersionTag(tag); err != nil {
		return fmt.Errorf("register format: %w", err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[tag]; exists {
		return fmt.Errorf("register format: version %q already registered", tag)
	}
	registry[tag] = f
	return nil
}

// MustRegister is Register for package init functions; it panics on error.
func MustRegister(f Format) {
	if err := Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns the Format registered for a version tag, or an
// UnsupportedVersion error.
func Lookup(tag string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[tag]
	if !ok {
		return nil, &hypermedia.FormatError{Code: hypermedia.ErrUnsupportedVersion, Message: fmt.Sprintf("no format registered for version %q", tag)}
	}
	return f, nil
}

// Versions returns the registered version tags in sorted order.
func Versions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// DecodeAny reads the embedded version tag of a serialized Container,
// selects the registered Format for it and delegates decoding.
//
// parentPath is the expected parent path (nil for a top-level document).
// Unknown tags fail with UnsupportedVersion.
func DecodeAny(text string, parentPath *string) (*hypermedia.Container, error) {
	tag, err := ScanVersion(text)
	if err != nil {
		return nil, err
	}

	f, err := Lookup(tag)
	if err != nil {
		return nil, err
	}
	return f.DecodeContainer(text, parentPath)
}

// ValidAnyContainer reports whether any registered format accepts the text
// as a Container with the given parent path. Nested containers may use a
// different revision than their parent, so this is also the boundary
// oracle for `hypermedia`-tagged list items.
func ValidAnyContainer(text string, parentPath *string) bool {
	registryMu.RLock()
	formats := make([]Format, 0, len(registry))
	for _, f := range registry {
		formats = append(formats, f)
	}
	registryMu.RUnlock()

	// Deterministic order: oldest registered tag wins ties, so sort by tag.
	sort.Slice(formats, func(i, j int) bool { return formats[i].Version() < formats[j].Version() })

	for _, f := range formats {
		if f.ValidContainer(text, parentPath) {
			return true
		}
	}
	return false
}
