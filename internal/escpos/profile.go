package escpos

import (
	"fmt"
	"sort"
)

// Profile describes the fixed geometry of a printer model
type Profile struct {
	Name       string
	PaperWidth string // "58mm", "80mm"
	PrintWidth int    // characters per line in font A at normal size
	MaxDots    int    // printable dots per line
	Charset    string
	LineChar   rune
}

var profiles = map[string]Profile{
	// node-thermal-printer style EPSON configuration used by the demo documents
	"default": {Name: "default", PaperWidth: "80mm", PrintWidth: 39, MaxDots: 576, Charset: CharsetPC437, LineChar: '='},
	"58mm":    {Name: "58mm", PaperWidth: "58mm", PrintWidth: 32, MaxDots: 384, Charset: CharsetPC437, LineChar: '='},
	"80mm":    {Name: "80mm", PaperWidth: "80mm", PrintWidth: 48, MaxDots: 576, Charset: CharsetPC437, LineChar: '='},
}

// DefaultProfile returns the profile used when none is configured
func DefaultProfile() Profile {
	return profiles["default"]
}

// LookupProfile returns a built-in profile by name or paper width
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		return DefaultProfile(), nil
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown printer profile: %s", name)
	}
	return p, nil
}

// ProfileNames lists the built-in profiles
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithPrintWidth returns a copy of the profile with a different line width
func (p Profile) WithPrintWidth(chars int) Profile {
	if chars > 0 {
		p.PrintWidth = chars
	}
	return p
}

func (p Profile) validate() error {
	if p.PrintWidth <= 0 {
		return &EncodingError{Op: "profile", Field: "print width", Value: p.PrintWidth, Reason: "must be positive"}
	}
	if p.MaxDots <= 0 {
		return &EncodingError{Op: "profile", Field: "max dots", Value: p.MaxDots, Reason: "must be positive"}
	}
	if _, err := LookupCharset(p.Charset); err != nil {
		return err
	}
	return nil
}
