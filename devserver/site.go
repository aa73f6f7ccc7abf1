package devserver

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Route is one addressable level of a site. Patterns are "/"-separated;
// a "*" component matches any single path component.
type Route struct {
	Pattern string   `toml:"pattern"`
	Title   string   `toml:"title"`
	Head    []string `toml:"head"`
	// Layout is served for layout requests; nested content goes at the
	// <!--children--> marker, or at the end when the marker is absent.
	Layout string `toml:"layout"`
	// Page is served for part requests.
	Page     string `toml:"page"`
	Redirect string `toml:"redirect"`
}

type Site struct {
	Title string   `toml:"title"`
	Head  []string `toml:"head"`
	// Shell surrounds the top segment in full documents.
	Shell    string  `toml:"shell"`
	NotFound string  `toml:"not_found"`
	Routes   []Route `toml:"route"`
}

func LoadSite(path string) (Site, error) {
	var s Site
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Site{}, fmt.Errorf("load site %s: %w", path, err)
	}
	return s, nil
}

func ParseSite(data string) (Site, error) {
	var s Site
	if _, err := toml.Decode(data, &s); err != nil {
		return Site{}, fmt.Errorf("parse site: %w", err)
	}
	return s, nil
}

//go:embed demo.toml
var demo string

// Demo is a small blog used when no site file is given.
func Demo() Site {
	s, err := ParseSite(demo)
	if err != nil {
		panic(err)
	}
	return s
}
