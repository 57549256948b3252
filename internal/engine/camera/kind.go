// Package camera provides the navigation camera models used by the viewport:
// an orbit camera for orbit and tabletop modes and a free camera for walk and
// fly modes. The models are pure math; engines wrap them.
package camera

import (
	"fmt"
	"strings"
)

// Kind tags a navigation camera variant.
type Kind int

const (
	Orbit Kind = iota
	Walk
	Fly
	Tabletop
)

// Kinds lists every navigation kind in declaration order.
var Kinds = []Kind{Orbit, Walk, Fly, Tabletop}

func (k Kind) String() string {
	switch k {
	case Orbit:
		return "orbit"
	case Walk:
		return "walk"
	case Fly:
		return "fly"
	case Tabletop:
		return "tabletop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= Orbit && k <= Tabletop
}

// Orbiting reports whether the kind orbits a target (orbit, tabletop) as
// opposed to moving freely (walk, fly).
func (k Kind) Orbiting() bool {
	return k == Orbit || k == Tabletop
}

// ParseKind converts a mode name into a Kind. Matching ignores case.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "orbit":
		return Orbit, true
	case "walk":
		return Walk, true
	case "fly":
		return Fly, true
	case "tabletop":
		return Tabletop, true
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("camera: invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("camera: unknown kind %q", text)
	}
	*k = parsed
	return nil
}
