// Package config loads rig profiles: the serial and parsing parameters for a
// named scanner firmware variant. Profiles come from a YAML file, with
// compiled-in defaults for the known variants so the CLI works without any
// config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/scanrig/internal/scan"
	"github.com/banshee-data/scanrig/internal/serialmux"
)

// maxProfileFileSize bounds config reads (1MB).
const maxProfileFileSize = 1 * 1024 * 1024

// Phrase binds a status substring to the event kind it signals. Kind is one
// of "info", "started", "complete", "error".
type Phrase struct {
	Match string `yaml:"match"`
	Kind  string `yaml:"kind"`
}

// Profile describes one rig firmware variant: how to open its port, how to
// trigger a scan, and how to classify its output.
type Profile struct {
	Name string `yaml:"name"`
	// Schemas restricts accepted data layouts ("polar", "cylindrical",
	// "cartesian"). Empty accepts all three.
	Schemas []string              `yaml:"schemas"`
	Port    serialmux.PortOptions `yaml:"port"`
	// StartCommand is written raw after connecting; the known firmware
	// triggers on a single byte ("S") or a bare newline.
	StartCommand string `yaml:"start_command"`
	// NoiseMarkers and StatusPhrases override the classifier defaults
	// when non-empty.
	NoiseMarkers  []string `yaml:"noise_markers"`
	StatusPhrases []Phrase `yaml:"status_phrases"`
}

// ProfileFile is the root of a profiles YAML document.
type ProfileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultProfiles returns the compiled-in profiles for the known firmware
// variants.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "polar", Schemas: []string{"polar"}},
		{Name: "cylindrical", Schemas: []string{"cylindrical"}, StartCommand: "S"},
		{Name: "cartesian", Schemas: []string{"cartesian"}, StartCommand: "\n"},
		{Name: "any"},
	}
}

// LoadProfiles reads profiles from a YAML file. Profiles sharing a name with
// a default replace it; others are appended.
func LoadProfiles(path string) ([]Profile, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("profile file must have .yaml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat profile file: %w", err)
	}
	if fileInfo.Size() > maxProfileFileSize {
		return nil, fmt.Errorf("profile file too large: %d bytes (max %d)", fileInfo.Size(), maxProfileFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	profiles := DefaultProfiles()
	for _, p := range file.Profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		replaced := false
		for i := range profiles {
			if profiles[i].Name == p.Name {
				profiles[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// FindProfile returns the named profile from the slice.
func FindProfile(profiles []Profile, name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("no profile named %q", name)
}

// Validate checks the profile's fields without opening anything.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	for _, name := range p.Schemas {
		if _, err := scan.SchemaByName(name); err != nil {
			return err
		}
	}
	for _, phrase := range p.StatusPhrases {
		if phrase.Match == "" {
			return fmt.Errorf("status phrase with empty match")
		}
		if _, err := statusKind(phrase.Kind); err != nil {
			return err
		}
	}
	if _, err := p.Port.Normalize(); err != nil {
		return err
	}
	return nil
}

// Classifier builds the line classifier this profile describes.
func (p Profile) Classifier() (*scan.Classifier, error) {
	var schemas []scan.SchemaID
	for _, name := range p.Schemas {
		id, err := scan.SchemaByName(name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, id)
	}

	var phrases []scan.StatusPhrase
	if len(p.StatusPhrases) > 0 {
		for _, phrase := range p.StatusPhrases {
			kind, err := statusKind(phrase.Kind)
			if err != nil {
				return nil, err
			}
			phrases = append(phrases, scan.StatusPhrase{Match: phrase.Match, Kind: kind})
		}
	}

	var markers []string
	if len(p.NoiseMarkers) > 0 {
		markers = p.NoiseMarkers
	}

	return scan.NewClassifier(markers, phrases, schemas...), nil
}

func statusKind(name string) (scan.StatusKind, error) {
	switch name {
	case "", "info":
		return scan.StatusInfo, nil
	case "started":
		return scan.StatusScanStarted, nil
	case "complete":
		return scan.StatusScanComplete, nil
	case "error":
		return scan.StatusDeviceError, nil
	default:
		return scan.StatusInfo, fmt.Errorf("unknown status kind %q: expected info, started, complete, or error", name)
	}
}
