package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds service definitions loaded from disk, keyed by service id.
type Catalog struct {
	services map[string]Service
}

type catalogFile struct {
	Services map[string]Service `json:"services" yaml:"services"`
}

// LoadFS walks fsys and parses every JSON/YAML service definition file. Each
// form schema is validated; the first invalid schema aborts the load so a
// catalog is never partially applied. A nil fsys yields an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{services: make(map[string]Service)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		return catalog.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadFile parses a single JSON/YAML service definition file.
func LoadFile(path string) (*Catalog, error) {
	if !isCatalogFile(path) {
		return nil, fmt.Errorf("schema: %s is not a .json, .yaml or .yml file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	catalog := &Catalog{services: make(map[string]Service)}
	if err := catalog.add(data, path); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (c *Catalog) add(data []byte, source string) error {
	doc, err := parseCatalog(data, source)
	if err != nil {
		return err
	}
	for _, rawID := range sortedIDs(doc.Services) {
		svc := doc.Services[rawID]
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("schema: file %s defines an empty service id", source)
		}
		if _, exists := c.services[id]; exists {
			return fmt.Errorf("schema: duplicate service %q (file %s)", id, source)
		}
		if err := svc.FormSchema.Validate(); err != nil {
			return fmt.Errorf("schema: service %q (file %s): %w", id, source, err)
		}
		svc.ID = id
		c.services[id] = svc
	}
	return nil
}

func sortedIDs(services map[string]Service) []string {
	ids := make([]string, 0, len(services))
	for id := range services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Service returns the definition registered under id.
func (c *Catalog) Service(id string) (Service, bool) {
	if c == nil {
		return Service{}, false
	}
	svc, ok := c.services[id]
	if !ok {
		return Service{}, false
	}
	svc.FormSchema = svc.FormSchema.Clone()
	return svc, true
}

// IDs returns the catalog service ids sorted alphabetically.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.services))
	for id := range c.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Services returns every definition ordered by id.
func (c *Catalog) Services() []Service {
	ids := c.IDs()
	out := make([]Service, 0, len(ids))
	for _, id := range ids {
		svc, _ := c.Service(id)
		out = append(out, svc)
	}
	return out
}

// Len reports the number of services in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.services)
}

func parseCatalog(data []byte, source string) (catalogFile, error) {
	var doc catalogFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return catalogFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return catalogFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return catalogFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
