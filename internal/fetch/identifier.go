package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadIdentifier reports a run input that is not of the form OWNER/REPO.
// It is a configuration fault: the run is rejected before fetching begins.
var ErrBadIdentifier = errors.New("bad repository identifier")

// ParseIdentifier splits an OWNER/REPO identifier into its parts. Leading and
// trailing whitespace is tolerated; a missing separator, empty segments, or
// extra segments are not.
func ParseIdentifier(identifier string) (owner, name string, err error) {
	trimmed := strings.TrimSpace(identifier)
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q is not of the form OWNER/REPO", ErrBadIdentifier, identifier)
	}
	return parts[0], parts[1], nil
}
