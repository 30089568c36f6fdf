package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"github.com/yuin/goldmark"
)

//go:embed templates/admin/*.tmpl admin_static/*
var adminAssetsFS embed.FS

type adminTemplateRenderer struct {
	env string
}

func newAdminTemplateRenderer(env string) *adminTemplateRenderer {
	return &adminTemplateRenderer{
		env: env,
	}
}

// templatesForRender parses the layout with one content template. extra adds
// per-request helpers such as the CSRF token.
func (r *adminTemplateRenderer) templatesForRender(contentTemplatePath string, extra template.FuncMap) (*template.Template, error) {
	var sourceFS fs.FS
	if r.env == "development" {
		sourceFS = os.DirFS(".")
	} else {
		sourceFS = adminAssetsFS
	}

	funcs := adminTemplateFuncs()
	for name, fn := range extra {
		funcs[name] = fn
	}

	templates, err := template.New("layout.tmpl").Funcs(funcs).ParseFS(sourceFS, "templates/admin/layout.tmpl", contentTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("parse admin templates: %w", err)
	}
	return templates, nil
}

// adminTemplateFuncs are the helpers every template can use. Request-bound
// helpers get a placeholder here so parsing never depends on the request.
func adminTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"csrfField": func() template.HTML { return "" },
		"markdown":  func(string) template.HTML { return "" },
		"errorFor": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"selected": func(current, value string) bool {
			return current == value
		},
	}
}

func renderMarkdown(md goldmark.Markdown, source string) template.HTML {
	var buffer bytes.Buffer
	if err := md.Convert([]byte(source), &buffer); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buffer.String())
}

func adminStaticFileSystem(env string) (http.FileSystem, error) {
	if env == "development" {
		return http.Dir("admin_static"), nil
	}

	sub, err := fs.Sub(adminAssetsFS, "admin_static")
	if err != nil {
		return nil, fmt.Errorf("admin static fs: %w", err)
	}
	return http.FS(sub), nil
}
