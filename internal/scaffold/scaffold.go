package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentx-labs/exthost/internal/branding"
	"github.com/agentx-labs/exthost/internal/manifest"
)

//go:embed templates
var scaffoldFS embed.FS

const templatesDir = "templates/extension"

var validID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Data holds all template variables available to scaffold templates.
type Data struct {
	ID          string // e.g., "weather"
	DisplayName string // e.g., "Weather"
	Description string
	Version     string // Semver, e.g., "0.1.0"
	PackageName string // Go package name derived from ID
	ImportBase  string // Go import path of the directory holding extensions
	EntryPoint  string // ImportBase + "/" + ID
	HostModule  string
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData creates Data with derived fields populated. importBase is the Go
// import path of the directory the extension is generated into; it defaults
// to the host module's extensions directory.
func NewData(id, importBase string) (*Data, error) {
	if !validID.MatchString(id) {
		return nil, fmt.Errorf("invalid extension id %q: use lowercase letters, digits, '-' and '_'", id)
	}
	if importBase == "" {
		importBase = branding.GoModule() + "/extensions"
	}
	display := cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(id))
	return &Data{
		ID:          id,
		DisplayName: display,
		Description: display + " extension",
		Version:     "0.1.0",
		PackageName: strings.NewReplacer("-", "", "_", "").Replace(id),
		ImportBase:  strings.TrimSuffix(importBase, "/"),
		EntryPoint:  strings.TrimSuffix(importBase, "/") + "/" + id,
		HostModule:  branding.GoModule(),
	}, nil
}

// Generate writes a new extension into outputDir, which must be empty or
// absent. The generated manifest is validated; problems become warnings.
func Generate(data *Data, outputDir string) (*Result, error) {
	entries, err := fs.ReadDir(scaffoldFS, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Check for existing files to prevent accidental overwrites.
	existingEntries, err := os.ReadDir(outputDir)
	if err == nil && len(existingEntries) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}

	result := &Result{OutputDir: outputDir}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tmplPath := path.Join(templatesDir, entry.Name())
		tmplBytes, err := fs.ReadFile(scaffoldFS, tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", tmplPath, err)
		}

		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		if outName == "extension.go" {
			outName = data.PackageName + ".go"
		}
		outPath := filepath.Join(outputDir, outName)

		tmpl, err := template.New(entry.Name()).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}

		result.Files = append(result.Files, outName)
	}

	// Validate the generated manifest against JSON Schema.
	manifestFile := filepath.Join(outputDir, "manifest.json")
	valResult, valErr := manifest.ValidateFile(manifestFile)
	if valErr != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not validate manifest: %v", valErr))
	} else if !valResult.Valid {
		for _, issue := range valResult.Issues {
			msg := issue.Message
			if issue.Path != "" {
				msg = issue.Path + ": " + msg
			}
			result.Warnings = append(result.Warnings, msg)
		}
	}

	return result, nil
}
