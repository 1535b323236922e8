package profile

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a profile name is not in the store.
var ErrNotFound = errors.New("profile not found")

// Profile maps an instrument name to a linear gain. A missing instrument
// plays at gain 0.
type Profile map[string]float64

// Gain returns the gain for instrument, 0 when absent.
func (p Profile) Gain(instrument string) float64 {
	return p[instrument]
}

// Clone returns an independent copy. Clone of nil is an empty profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Equivalent reports whether a and b give every instrument the same gain,
// treating missing keys as 0. {bass: 0} is equivalent to {}.
func Equivalent(a, b Profile) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if a[k] != v {
			return false
		}
	}
	return true
}

// Lerp blends a toward b by t over the union of their keys.
// t is clamped to [0, 1]; at t == 1 the result equals b exactly.
func Lerp(a, b Profile, t float64) Profile {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	out := make(Profile, len(a)+len(b))
	for k, av := range a {
		out[k] = lerp(av, b[k], t)
	}
	for k, bv := range b {
		if _, ok := a[k]; ok {
			continue
		}
		out[k] = lerp(0, bv, t)
	}
	return out
}

func lerp(a, b, t float64) float64 {
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}

// Store holds named profiles. Stored profiles are private copies, so callers
// may keep mutating the map they passed in without affecting the store.
type Store struct {
	profiles map[string]Profile
}

func NewStore() *Store {
	return &Store{profiles: make(map[string]Profile)}
}

// Set adds or replaces the profile under name.
func (s *Store) Set(name string, p Profile) {
	s.profiles[name] = p.Clone()
}

// Remove deletes name. Removing an unknown name does nothing.
func (s *Store) Remove(name string) {
	delete(s.profiles, name)
}

// Get returns a copy of the named profile.
func (s *Store) Get(name string) (Profile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p.Clone(), nil
}

func (s *Store) Has(name string) bool {
	_, ok := s.profiles[name]
	return ok
}

// Names returns the stored profile names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
