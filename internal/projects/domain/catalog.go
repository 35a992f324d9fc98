package domain

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// QuickCaptureType is the type given to projects created from free text.
const QuickCaptureType = "Quick Idea"

//go:embed catalog.yaml
var catalogYAML []byte

type Template struct {
	Title       string   `yaml:"title" json:"title"`
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description" json:"description"`
	Notes       string   `yaml:"notes" json:"notes"`
	Tags        []string `yaml:"tags" json:"tags"`
}

type Role struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Types       []string   `yaml:"types" json:"types"`
	Templates   []Template `yaml:"templates" json:"templates"`
}

// Catalog lists the roles a user can pick and the project types and templates each one offers.
type Catalog struct {
	Roles []Role `yaml:"roles" json:"roles"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(catalogYAML)
})

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, r := range c.Roles {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog role without id")
		}
		if len(r.Types) == 0 {
			return nil, fmt.Errorf("catalog role %q has no project types", r.ID)
		}
	}
	return &c, nil
}

// Role looks a role up by id, ignoring case.
func (c *Catalog) Role(id string) (Role, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, r := range c.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// DefaultType is the first project type of the role, or "" for unknown roles.
func (c *Catalog) DefaultType(roleID string) string {
	r, ok := c.Role(roleID)
	if !ok {
		return ""
	}
	return r.Types[0]
}

func (c *Catalog) Template(roleID, title string) (Template, bool) {
	r, ok := c.Role(roleID)
	if !ok {
		return Template{}, false
	}
	for _, t := range r.Templates {
		if strings.EqualFold(t.Title, strings.TrimSpace(title)) {
			return t, true
		}
	}
	return Template{}, false
}
