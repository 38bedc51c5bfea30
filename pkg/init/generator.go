// SPDX-License-Identifier: Apache-2.0
package init

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Intake/pkg/config"
)

// GenerateRepoFiles creates all deployment files atomically.
// It returns a list of created files on success, or rolls back all changes on error.
func GenerateRepoFiles(settings InitSettings) ([]string, error) {
	if config.IsRepoMode() {
		return nil, ErrAlreadyInitialized
	}
	repoConfigPath := config.LocalConfigFile + config.DefaultConfigExt
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var createdItems []string // Track files and directories for rollback

	// Helper function to track created items
	trackCreated := func(path string) {
		createdItems = append(createdItems, path)
	}

	// Rollback function to clean up on error
	rollback := func() {
		// Delete in reverse order
		for i := len(createdItems) - 1; i >= 0; i-- {
			os.RemoveAll(createdItems[i])
		}
	}

	schemaDir := filepath.Dir(SchemaPath)
	if _, err := os.Stat(schemaDir); os.IsNotExist(err) {
		if err := os.MkdirAll(schemaDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", schemaDir, err)
		}
		trackCreated(schemaDir)
	}

	// Generate intake.yaml from template
	content, err := render("repo", RepoConfigTemplate, settings)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to render repo config (rolled back): %w", err)
	}
	if err := os.WriteFile(repoConfigPath, content, 0644); err != nil {
		rollback()
		return nil, fmt.Errorf("failed to write %s (rolled back): %w", repoConfigPath, err)
	}
	trackCreated(repoConfigPath)

	// Schema for editor validation of intake.yaml
	repoScope := config.ScopeRepo
	schema, err := config.GenerateJSONSchemaForScope(&repoScope)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to generate schema (rolled back): %w", err)
	}
	if err := os.WriteFile(SchemaPath, schema, 0644); err != nil {
		rollback()
		return nil, fmt.Errorf("failed to write %s (rolled back): %w", SchemaPath, err)
	}
	trackCreated(SchemaPath)

	files := []string{repoConfigPath, SchemaPath}

	// Append to an existing .gitignore rather than replacing it
	gitignorePath := ".gitignore"
	ignore, err := render("gitignore", GitignoreTemplate, settings)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("failed to render gitignore (rolled back): %w", err)
	}
	existing, err := os.ReadFile(gitignorePath)
	switch {
	case os.IsNotExist(err):
		if err := os.WriteFile(gitignorePath, ignore, 0644); err != nil {
			rollback()
			return nil, fmt.Errorf("failed to write %s (rolled back): %w", gitignorePath, err)
		}
		trackCreated(gitignorePath)
		files = append(files, gitignorePath)
	case err != nil:
		rollback()
		return nil, fmt.Errorf("failed to read %s (rolled back): %w", gitignorePath, err)
	case !bytes.Contains(existing, ignore):
		if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
			existing = append(existing, '\n')
		}
		if err := os.WriteFile(gitignorePath, append(existing, ignore...), 0644); err != nil {
			rollback()
			return nil, fmt.Errorf("failed to update %s (rolled back): %w", gitignorePath, err)
		}
		files = append(files, gitignorePath)
	}

	log.Info("Deployment initialized", "backend", settings.StoreBackend, "files", len(files))
	return files, nil
}

func render(name, text string, settings InitSettings) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, settings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
