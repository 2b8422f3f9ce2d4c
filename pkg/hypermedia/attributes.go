package hypermedia

import (
	"fmt"
	"strings"
)

// Attributes is a set of platform attribute flags carried by Directories and
// Files. The wire form is a `|`-joined list of lowercase tokens, or the
// literal `null` when no attributes were recorded (nil pointer).
type Attributes uint8

const (
	// AttrReadOnly marks an entity the platform considers read-only
	AttrReadOnly Attributes = 1 << iota

	// AttrHidden marks an entity the platform hides from normal listings
	AttrHidden

	// AttrDirectory marks an OS directory; only legal on Directory entities
	AttrDirectory

	// AttrNormal marks a file with no other attributes; only legal alone
	// and only on File entities
	AttrNormal
)

// attributeTokens maps each flag to its wire token, in canonical output order.
var attributeTokens = []struct {
	flag  Attributes
	token string
}{
	{AttrDirectory, "directory"},
	{AttrNormal, "normal"},
	{AttrHidden, "hidden"},
	{AttrReadOnly, "read_only"},
}

// String renders the attribute set as its wire form (`|`-joined tokens).
func (a Attributes) String() string {
	var parts []string
	for _, at := range attributeTokens {
		if a&at.flag != 0 {
			parts = append(parts, at.token)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseAttributes parses the `|`-joined wire form into an attribute set.
//
// Returns an AttributeDomain error for unknown tokens, duplicates or an
// empty string. The literal `null` is handled by the caller (nil set), not
// here.
func ParseAttributes(s string) (Attributes, error) {
	var attrs Attributes
	for _, token := range strings.Split(s, "|") {
		matched := false
		for _, at := range attributeTokens {
			if token == at.token {
				if attrs&at.flag != 0 {
					return 0, &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("duplicate attribute token %q", token)}
				}
				attrs |= at.flag
				matched = true
				break
			}
		}
		if !matched {
			return 0, &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("unknown attribute token %q", token)}
		}
	}
	return attrs, nil
}

// fileAttributeSets is the closed set of attribute combinations a File may
// carry: Normal, Hidden, ReadOnly, or Hidden+ReadOnly.
var fileAttributeSets = []Attributes{
	AttrNormal,
	AttrHidden,
	AttrReadOnly,
	AttrHidden | AttrReadOnly,
}

// directoryAttributeSets is the closed set of attribute combinations a
// Directory may carry: Directory plus any combination of Hidden/ReadOnly.
var directoryAttributeSets = []Attributes{
	AttrDirectory,
	AttrDirectory | AttrHidden,
	AttrDirectory | AttrReadOnly,
	AttrDirectory | AttrHidden | AttrReadOnly,
}

// ValidForFile reports whether the attribute set is legal on a File.
func (a Attributes) ValidForFile() bool {
	for _, set := range fileAttributeSets {
		if a == set {
			return true
		}
	}
	return false
}

// ValidForDirectory reports whether the attribute set is legal on a Directory.
func (a Attributes) ValidForDirectory() bool {
	for _, set := range directoryAttributeSets {
		if a == set {
			return true
		}
	}
	return false
}
