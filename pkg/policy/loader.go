package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir loads every .rego file in dir as an error-severity policy named
// after its file. Subdirectories are not walked.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read policy directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rego") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read policy %s: %w", entry.Name(), err)
		}
		policy := &Policy{
			Name:        strings.TrimSuffix(entry.Name(), ".rego"),
			Description: fmt.Sprintf("loaded from %s", filepath.Join(dir, entry.Name())),
			Severity:    SeverityError,
			Enabled:     true,
			Rego:        string(raw),
		}
		if err := e.AddPolicy(policy); err != nil {
			return err
		}
		loaded++
	}

	e.logger.Info().Int("count", loaded).Str("dir", dir).Msg("Policies loaded")
	return nil
}
