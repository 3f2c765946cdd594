package docsite

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Link is one navigation entry.
type Link struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// SocialLink is an icon link shown in the site header.
type SocialLink struct {
	Icon string `json:"icon"`
	Link string `json:"link"`
}

// SidebarGroup is a titled run of links. Items render in slice order.
type SidebarGroup struct {
	Text  string `json:"text"`
	Items []Link `json:"items"`
}

// Sidebar maps a path prefix to the groups shown under it. A plain list of
// groups in the source file applies to every page and is stored under "/".
type Sidebar map[string][]SidebarGroup

func (s *Sidebar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	switch {
	case bytes.Equal(b, []byte("null")):
		*s = nil
		return nil
	case len(b) > 0 && b[0] == '[':
		var groups []SidebarGroup
		if err := json.Unmarshal(b, &groups); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
		}

		*s = Sidebar{"/": groups}

		return nil
	default:
		var m map[string][]SidebarGroup
		if err := json.Unmarshal(b, &m); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
		}

		*s = m

		return nil
	}
}

// HeadTag is an extra element injected into every page head.
type HeadTag struct {
	Tag   string
	Attrs map[string]string
}

// UnmarshalJSON decodes the ["tag", {"attr": "value"}] form.
func (h *HeadTag) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || len(raw) == 0 || len(raw) > 3 {
		return ErrInvalidHead
	}

	if err := json.Unmarshal(raw[0], &h.Tag); err != nil || h.Tag == "" {
		return ErrInvalidHead
	}

	h.Attrs = nil

	if len(raw) > 1 {
		if err := json.Unmarshal(raw[1], &h.Attrs); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidHead, err)
		}
	}

	return nil
}

func (h HeadTag) MarshalJSON() ([]byte, error) {
	if len(h.Attrs) == 0 {
		return json.Marshal([]interface{}{h.Tag})
	}

	return json.Marshal([]interface{}{h.Tag, h.Attrs})
}

// Outline selects which heading levels appear in the page outline.
// Deep means levels 2 through 6.
type Outline struct {
	Levels []int
	Deep   bool
}

// UnmarshalJSON accepts 2, [2, 3], "deep", false, or {"level": ...}.
func (o *Outline) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	return o.set(v)
}

func (o *Outline) set(v interface{}) error {
	*o = Outline{}

	switch value := v.(type) {
	case nil, bool:
		return nil
	case float64:
		o.Levels = []int{int(value)}
	case string:
		if value != "deep" {
			return fmt.Errorf("%w: %q", ErrInvalidOutline, value)
		}

		o.Deep = true
	case []interface{}:
		for _, item := range value {
			n, ok := item.(float64)
			if !ok {
				return fmt.Errorf("%w: %v", ErrInvalidOutline, item)
			}

			o.Levels = append(o.Levels, int(n))
		}
	case map[string]interface{}:
		return o.set(value["level"])
	default:
		return fmt.Errorf("%w: %v", ErrInvalidOutline, v)
	}

	return nil
}

func (o Outline) MarshalJSON() ([]byte, error) {
	if o.Deep {
		return json.Marshal(map[string]string{"level": "deep"})
	}

	return json.Marshal(map[string][]int{"level": o.Levels})
}

// Range returns the first and last heading level shown.
func (o Outline) Range() (minLevel, maxLevel int) {
	switch {
	case o.Deep:
		return 2, 6
	case len(o.Levels) == 0:
		return 2, 2
	case len(o.Levels) == 1:
		return o.Levels[0], o.Levels[0]
	default:
		return o.Levels[0], o.Levels[len(o.Levels)-1]
	}
}

type Footer struct {
	Message   string `json:"message,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

type Search struct {
	Provider string `json:"provider"`
}

// Theme holds the navigation records.
type Theme struct {
	Logo        string       `json:"logo,omitempty"`
	Nav         []Link       `json:"nav"`
	Sidebar     Sidebar      `json:"sidebar"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
	Footer      *Footer      `json:"footer,omitempty"`
	Search      *Search      `json:"search,omitempty"`
	Outline     *Outline     `json:"outline,omitempty"`
}

// Site is a documentation site definition.
type Site struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Lang        string    `json:"lang"`
	Base        string    `json:"base"`
	Head        []HeadTag `json:"head,omitempty"`
	Theme       Theme     `json:"themeConfig"`
}

// ApplyDefaults implements config.Defaulter.
func (s *Site) ApplyDefaults() {
	if s.Lang == "" {
		s.Lang = "en-US"
	}

	if s.Base == "" {
		s.Base = "/"
	}
}
