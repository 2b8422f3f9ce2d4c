package hypermedia

import (
	"fmt"
	"strconv"
	"strings"
)

// VersionTag is the embedded version string of a Container, of the form
// "<name>/<major>.<minor>.<patch>". The rendered string is also the format
// registry key, compared by string equality.
type VersionTag struct {
	Name  string
	Major int
	Minor int
	Patch int
}

// String renders the tag in its wire form.
func (v VersionTag) String() string {
	return fmt.Sprintf("%s/%d.%d.%d", v.Name, v.Major, v.Minor, v.Patch)
}

// ParseVersionTag parses a version tag string. Exactly two '/'-delimited
// segments are required; the second must be three dot-separated
// non-negative integers.
func ParseVersionTag(s string) (VersionTag, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return VersionTag{}, &FormatError{Code: ErrScalarParse, Message: fmt.Sprintf("version tag %q must have exactly two '/'-delimited segments", s)}
	}
	if parts[0] == "" {
		return VersionTag{}, &FormatError{Code: ErrScalarParse, Message: fmt.Sprintf("version tag %q has an empty name segment", s)}
	}

	nums := strings.Split(parts[1], ".")
	if len(nums) != 3 {
		return VersionTag{}, &FormatError{Code: ErrScalarParse, Message: fmt.Sprintf("version tag %q must end in <major>.<minor>.<patch>", s)}
	}

	out := VersionTag{Name: parts[0]}
	for i, field := range []*int{&out.Major, &out.Minor, &out.Patch} {
		n, err := strconv.Atoi(nums[i])
		if err != nil || n < 0 {
			return VersionTag{}, &FormatError{Code: ErrScalarParse, Message: fmt.Sprintf("version tag %q has a non-numeric segment %q", s, nums[i])}
		}
		*field = n
	}
	return out, nil
}
