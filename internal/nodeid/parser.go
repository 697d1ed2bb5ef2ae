// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// idRegex matches the canonical NodeId text, e.g. `i=85` or `ns=1;s=pump.speed`.
var idRegex = regexp.MustCompile(`^(?:ns=(\d+);)?([is])=(.+)$`)

// Parse creates an ID by parsing its canonical string representation.
func Parse(rawID string) (ID, error) {
	if rawID == "" {
		return Null, fmt.Errorf("identifier cannot be empty")
	}

	matches := idRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return Null, fmt.Errorf("invalid node identifier format: %q", rawID)
	}

	var ns uint16
	if matches[1] != "" {
		v, err := strconv.ParseUint(matches[1], 10, 16)
		if err != nil {
			return Null, fmt.Errorf("invalid namespace index in %q: %w", rawID, err)
		}
		ns = uint16(v)
	}

	switch matches[2] {
	case "i":
		v, err := strconv.ParseUint(matches[3], 10, 32)
		if err != nil || v > math.MaxUint32 {
			return Null, fmt.Errorf("invalid numeric identifier in %q", rawID)
		}
		return NewNumeric(ns, uint32(v)), nil
	default:
		return NewString(ns, matches[3]), nil
	}
}

// MustParse is like Parse but panics on malformed input. It is meant for
// identifiers that are compiled into the program.
func MustParse(rawID string) ID {
	id, err := Parse(rawID)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseOrString parses rawID as a NodeId. When rawID is not in NodeId
// notation it is taken verbatim as a string identifier in namespace ns.
func ParseOrString(ns uint16, rawID string) (ID, error) {
	if rawID == "" {
		return Null, fmt.Errorf("identifier cannot be empty")
	}
	if idRegex.MatchString(rawID) {
		return Parse(rawID)
	}
	return NewString(ns, rawID), nil
}
