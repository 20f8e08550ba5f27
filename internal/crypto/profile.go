package crypto

import "errors"

var ErrUnknownProfile = errors.New("unknown profile")

// Profile is a named preset of length and character classes.
type Profile struct {
	Name    string
	Length  int
	Classes ClassSet
}

// ProfileCustom leaves length and classes entirely to the caller.
const ProfileCustom = "custom"

var profiles = []Profile{
	{Name: ProfileCustom},
	{Name: "simple", Length: 8, Classes: NewClassSet(Lowercase, Digit)},
	{Name: "secure", Length: 14, Classes: AllClasses},
	{Name: "ultrasecure", Length: 24, Classes: AllClasses},
}

// Profiles returns the built-in presets in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile finds a preset by name.
func LookupProfile(name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, ErrUnknownProfile
}
