package formfill

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const defaultFontSize = 10

// Slot is where one named field is written, in points from the top-left
// corner of its page.
type Slot struct {
	Page     int     `yaml:"page"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	FontSize float64 `yaml:"fontSize,omitempty"`
}

type Layout struct {
	Font     string          `yaml:"font"`
	FontSize float64         `yaml:"fontSize"`
	Fields   map[string]Slot `yaml:"fields"`
}

func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parse form layout: %w", err)
	}
	if l.Font == "" {
		l.Font = "Helvetica"
	}
	if l.FontSize <= 0 {
		l.FontSize = defaultFontSize
	}
	if len(l.Fields) == 0 {
		return Layout{}, errors.New("form layout declares no fields")
	}
	for name, slot := range l.Fields {
		if slot.Page < 1 {
			return Layout{}, fmt.Errorf("form layout field %q: page must be 1 or more", name)
		}
	}
	return l, nil
}

func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, err
	}
	return ParseLayout(data)
}

// Pages is the highest page number any field is placed on.
func (l Layout) Pages() int {
	pages := 0
	for _, slot := range l.Fields {
		pages = max(pages, slot.Page)
	}
	return pages
}

// Names returns the field names in sorted order.
func (l Layout) Names() []string {
	names := make([]string, 0, len(l.Fields))
	for name := range l.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
