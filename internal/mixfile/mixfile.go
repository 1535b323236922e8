// Package mixfile reads the YAML description of a stem set: which clips make
// up the intro and loop of each instrument, and the named gain profiles.
package mixfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid mix file")

type Instrument struct {
	Name  string `yaml:"name"`
	Intro string `yaml:"intro"` // optional
	Loop  string `yaml:"loop"`  // optional
}

type File struct {
	SampleRate     int                           `yaml:"sample_rate"`
	LookAhead      *time.Duration                `yaml:"look_ahead"` // 0 schedules the loop at once
	Fade           time.Duration                 `yaml:"fade"`
	Preload        *bool                         `yaml:"preload"`
	WaitForLoad    *bool                         `yaml:"wait_for_load"`
	LoadTimeout    time.Duration                 `yaml:"load_timeout"`
	Volume         *float64                      `yaml:"volume"`
	DefaultProfile string                        `yaml:"default_profile"`
	Instruments    []Instrument                  `yaml:"instruments"`
	Profiles       map[string]map[string]float64 `yaml:"profiles"`

	// Dir is the directory clip paths are resolved against.
	Dir string `yaml:"-"`
}

const (
	DefaultSampleRate = 48000
	DefaultLookAhead  = time.Second
	DefaultFade       = time.Second
)

// Load reads and validates a mix file. Relative clip paths resolve against
// the file's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes and validates a mix file held in memory.
func Parse(data []byte, dir string) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	f.Dir = dir
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) applyDefaults() {
	if f.SampleRate == 0 {
		f.SampleRate = DefaultSampleRate
	}
	if f.LookAhead == nil {
		v := DefaultLookAhead
		f.LookAhead = &v
	}
	if f.Fade == 0 {
		f.Fade = DefaultFade
	}
	if f.Preload == nil {
		v := true
		f.Preload = &v
	}
	if f.WaitForLoad == nil {
		v := true
		f.WaitForLoad = &v
	}
	if f.Volume == nil {
		v := 1.0
		f.Volume = &v
	}
}

func (f *File) Validate() error {
	if f.SampleRate < 0 {
		return fmt.Errorf("%w: sample_rate must be positive", ErrInvalid)
	}
	if *f.Volume < 0 {
		return fmt.Errorf("%w: volume must not be negative", ErrInvalid)
	}
	seen := make(map[string]bool, len(f.Instruments))
	for i, inst := range f.Instruments {
		if inst.Name == "" {
			return fmt.Errorf("%w: instrument %d has no name", ErrInvalid, i)
		}
		if seen[inst.Name] {
			return fmt.Errorf("%w: duplicate instrument %q", ErrInvalid, inst.Name)
		}
		seen[inst.Name] = true
		if inst.Intro == "" && inst.Loop == "" {
			return fmt.Errorf("%w: instrument %q has neither intro nor loop", ErrInvalid, inst.Name)
		}
	}
	for name, gains := range f.Profiles {
		for inst, g := range gains {
			if g < 0 {
				return fmt.Errorf("%w: profile %q gives %q a negative gain", ErrInvalid, name, inst)
			}
		}
	}
	if f.DefaultProfile != "" {
		if _, ok := f.Profiles[f.DefaultProfile]; !ok {
			return fmt.Errorf("%w: default_profile %q is not defined", ErrInvalid, f.DefaultProfile)
		}
	}
	return nil
}

// Resolve returns p relative to the mix file directory, or p itself when it is
// absolute or empty.
func (f *File) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.Dir, p)
}
