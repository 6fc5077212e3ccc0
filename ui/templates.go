package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

const dashboardTemplate = "dashboard.html"

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"tenure": func(v *float64) string {
			if v == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.2f months", *v)
		},
	}
}

// parseTemplates loads every page template from the embedded filesystem.
func parseTemplates() (*template.Template, error) {
	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}
	log.Printf("[TemplateInit] Found %d template files: %v", len(files), files)

	tmpl := template.New("").Funcs(templateFuncs())
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := tmpl.New(file).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	return tmpl, nil
}
