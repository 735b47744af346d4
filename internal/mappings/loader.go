package mappings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromDir reads every .yaml/.yml file in dirPath. Broken files and
// entries are reported together in the error while the valid entries are
// still returned.
func LoadFromDir(dirPath string) ([]Entry, error) {
	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read mappings dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	loaded := make([]Entry, 0)
	errors := make([]string, 0)

	for _, filePath := range files {
		content, err := os.ReadFile(filePath)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		var file File
		if err := yaml.Unmarshal(content, &file); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		for _, entry := range file.Mappings {
			if !entry.isEnabled() {
				continue
			}
			if err := entry.normalizeAndValidate(); err != nil {
				errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
				continue
			}
			loaded = append(loaded, entry)
		}
	}

	if len(errors) > 0 {
		return loaded, fmt.Errorf("mappings failed to load: %s", strings.Join(errors, " | "))
	}

	return loaded, nil
}
