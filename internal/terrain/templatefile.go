package terrain

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TemplateExt is the extension template files carry on disk.
const TemplateExt = ".terrain"

// LoadTemplateFile parses one template file. The template name is the file
// stem; the description comes from the first comment line.
func LoadTemplateFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	description := "Custom template"
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			description = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			break
		}
	}

	t, err := Parse(name, description, string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// LoadTemplateDir loads every .terrain file in dir, sorted by name.
// Files that fail to parse are returned as errors alongside the templates
// that loaded, so callers can warn and continue.
func LoadTemplateDir(dir string) ([]*Template, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read template dir: %w", err)}
	}
	var templates []*Template
	var errs []error
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != TemplateExt {
			continue
		}
		t, err := LoadTemplateFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, errs
}
