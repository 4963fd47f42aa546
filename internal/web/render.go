package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/docmint/internal/errors"
	"github.com/hpungsan/docmint/internal/tool"
)

// NavItem is one entry of the tool menu.
type NavItem struct {
	ID        string
	Name      string
	Available bool
}

// NavGroup is one category of the tool menu.
type NavGroup struct {
	Category string
	Items    []NavItem
}

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     []NavGroup
	Active  string // active tool id, "home" on the dashboard
}

// HomePageData is the template data for the dashboard.
type HomePageData struct {
	PageData
	Intro template.HTML
	Tools int
}

// Field is one option input on a tool form.
type Field struct {
	tool.Option
	Value   string
	Checked bool
}

// ToolPageData is the template data for a tool page.
type ToolPageData struct {
	PageData
	Tool        *tool.Descriptor
	Description template.HTML
	Fields      []Field
	Accept      string
	MaxUploadMB int
	Unavailable string

	// Revision is the session's navigation revision the form was rendered at.
	Revision uint64

	// Error is the violated constraint of the last run, if any.
	Error     string
	ErrorCode string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Code       string
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"home":  "home.html",
		"tool":  "tool.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, page PageData, err error) {
	mErr := errors.As(err)
	if mErr == nil {
		mErr = errors.NewInternal(err)
	}
	if mErr.Code == errors.ErrInternal {
		r.logger.Error("request failed", "path", req.URL.Path, "err", err)
	}

	if wantsJSON(req) {
		renderJSON(w, mErr.Status, errorBody(mErr))
		return
	}

	page.Title = fmt.Sprintf("Error %d", mErr.Status)
	page.Version = r.version
	r.renderPageStatus(w, mErr.Status, "error", ErrorPageData{
		PageData:   page,
		StatusCode: mErr.Status,
		Code:       string(mErr.Code),
		Message:    mErr.Message,
	})
}

func errorBody(e *errors.MintError) map[string]any {
	body := map[string]any{
		"code":    string(e.Code),
		"message": e.Message,
		"status":  e.Status,
	}
	if len(e.Details) > 0 && e.Code != errors.ErrInternal {
		body["details"] = e.Details
	}
	return map[string]any{"error": body}
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

var policy = bluemonday.UGCPolicy()

// renderMarkdown converts markdown text to sanitized HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}
