package email

import (
	"embed"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/kindredhq/kindred/pkg/logger"
)

// Mail templates live under templates/: layouts/*.hbs wrap rendered content,
// partials/*.hbs are shared fragments, and top-level *.hbs are the mails
// themselves. Everything ships embedded and is parsed once at startup, so a
// broken template is a startup failure, not a runtime send failure.

//go:embed templates
var templateFS embed.FS

const templateRoot = "templates"

// raymond partials are registered process-wide.
var registerPartialsOnce sync.Once

// TemplateService renders transactional mail with Handlebars templates.
type TemplateService struct {
	log *slog.Logger

	templates map[string]*raymond.Template
	layouts   map[string]*raymond.Template
}

// TemplateContext is the data handed to a template.
type TemplateContext map[string]interface{}

// TemplateRenderResult carries both renderings of a mail.
type TemplateRenderResult struct {
	HTML string
	Text string
}

// NewTemplateService parses the embedded mail templates.
func NewTemplateService(log *slog.Logger) (*TemplateService, error) {
	ts := &TemplateService{
		log:       log.With(logger.Scope("email.template")),
		templates: make(map[string]*raymond.Template),
		layouts:   make(map[string]*raymond.Template),
	}

	registerPartialsOnce.Do(registerPartials)

	if err := ts.parseDir(path.Join(templateRoot, "layouts"), ts.layouts); err != nil {
		return nil, err
	}
	if err := ts.parseDir(templateRoot, ts.templates); err != nil {
		return nil, err
	}

	ts.log.Info("loaded email templates",
		slog.Int("templates", len(ts.templates)),
		slog.Int("layouts", len(ts.layouts)))
	return ts, nil
}

func registerPartials() {
	partialsDir := path.Join(templateRoot, "partials")
	entries, err := templateFS.ReadDir(partialsDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hbs") {
			continue
		}
		content, err := templateFS.ReadFile(path.Join(partialsDir, entry.Name()))
		if err != nil {
			continue
		}
		raymond.RegisterPartial(strings.TrimSuffix(entry.Name(), ".hbs"), string(content))
	}
}

func (ts *TemplateService) parseDir(dir string, dst map[string]*raymond.Template) error {
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hbs") {
			continue
		}
		content, err := templateFS.ReadFile(path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".hbs")
		tmpl, err := raymond.Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		dst[name] = tmpl
	}
	return nil
}

// Render executes a mail template and wraps it in the named layout. An empty
// layoutName renders the template bare.
func (ts *TemplateService) Render(templateName string, context TemplateContext, layoutName string) (*TemplateRenderResult, error) {
	tmpl, ok := ts.templates[templateName]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", templateName)
	}

	content, err := tmpl.Exec(context)
	if err != nil {
		return nil, fmt.Errorf("render template %s: %w", templateName, err)
	}

	if layoutName != "" {
		layout, ok := ts.layouts[layoutName]
		if !ok {
			return nil, fmt.Errorf("layout not found: %s", layoutName)
		}

		layoutCtx := make(TemplateContext, len(context)+1)
		for k, v := range context {
			layoutCtx[k] = v
		}
		layoutCtx["content"] = raymond.SafeString(content)

		content, err = layout.Exec(layoutCtx)
		if err != nil {
			return nil, fmt.Errorf("render layout %s: %w", layoutName, err)
		}
	}

	return &TemplateRenderResult{
		HTML: content,
		Text: ts.plainText(context),
	}, nil
}

// plainText picks the text alternative out of the context.
func (ts *TemplateService) plainText(context TemplateContext) string {
	if text, ok := context["plainText"].(string); ok {
		return text
	}
	return ""
}

// HasTemplate reports whether a mail template with the given name exists.
func (ts *TemplateService) HasTemplate(name string) bool {
	_, ok := ts.templates[name]
	return ok
}
