package services

import (
	"bytes"
	_ "embed"
	"html/template"
	"log"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed takeaways.md
var takeawaysMarkdown []byte

type RenderService struct {
	templates *template.Template

	takeawaysOnce sync.Once
	takeaways     template.HTML
}

func NewRenderService(templates *template.Template) *RenderService {
	return &RenderService{
		templates: templates,
	}
}

// MarkdownToHTML renders markdown with the common extensions enabled.
func MarkdownToHTML(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(md, p, renderer))
}

// Takeaways returns the key takeaways block, rendered once.
func (s *RenderService) Takeaways() template.HTML {
	s.takeawaysOnce.Do(func() {
		s.takeaways = MarkdownToHTML(takeawaysMarkdown)
	})
	return s.takeaways
}

// RenderDashboard executes the dashboard page into a string.
func (s *RenderService) RenderDashboard(name string, page *DashboardPage) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, page); err != nil {
		log.Printf("[RenderService] Failed to render %s: %v", name, err)
		return "", err
	}
	content := buf.String()
	if !strings.Contains(content, "</html>") {
		log.Printf("[RenderService] WARNING: rendered %s appears truncated", name)
	}
	return content, nil
}
