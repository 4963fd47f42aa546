package web

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cast"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/errors"
	"github.com/hpungsan/docmint/internal/metrics"
	"github.com/hpungsan/docmint/internal/session"
	"github.com/hpungsan/docmint/internal/tool"
)

const (
	sessionCookie = "docmint_session"

	// multipart parts beyond this spill to temp files
	formMemory = 32 << 20
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	cfg      *config.Config
	reg      *tool.Registry
	exec     *tool.Executor
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	renderer *Renderer
}

// HandleHome handles GET /, the dashboard.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Mu.Lock()
	defer s.Mu.Unlock()

	_ = s.Router.Navigate(tool.HomeID)
	home := s.Router.Current()
	h.renderer.renderPage(w, "home", HomePageData{
		PageData: h.page(home.Name, tool.HomeID),
		Intro:    renderMarkdown(home.Description),
		Tools:    h.reg.Len(),
	})
}

// HandleTool handles GET /tools/{id}: select a tool and show its form.
func (h *Handlers) HandleTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == tool.HomeID {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	s := h.session(w, r)
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if err := s.Router.Navigate(id); err != nil {
		h.renderer.renderError(w, r, h.page("", s.Router.ActiveID()), err)
		return
	}
	h.renderer.renderPage(w, "tool", h.toolPage(s.Router, nil, nil))
}

// HandleRun handles POST /tools/{id}/run: upload inputs, run the tool and
// return the result as a download. Failures re-render the tool form.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := h.session(w, r)
	s.Mu.Lock()
	defer s.Mu.Unlock()

	wasActive := s.Router.ActiveID() == id
	if !wasActive {
		if err := s.Router.Navigate(id); err != nil {
			h.renderer.renderError(w, r, h.page("", s.Router.ActiveID()), err)
			return
		}
	}
	if s.Router.AtHome() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	desc := s.Router.Current()
	logger := h.logger.With("request_id", middleware.GetReqID(r.Context()), "session", s.ID, "tool", desc.ID)

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(formMemory); err != nil {
		h.runFailed(w, r, logger, s, nil, h.formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	raw, draft := optionValues(desc, r.MultipartForm)
	// A form rendered before the tool was reopened belongs to a discarded draft.
	if wasActive && staleForm(r.MultipartForm, s.Router.Revision()) {
		h.runFailed(w, r, logger, s, draft, errors.NewInvalidRequest("this form is out of date because the tool was reopened; submit it again"))
		return
	}
	s.Router.SaveDraft(draft)

	store := artifact.NewStore(desc.Accepts...)
	defer store.Release()

	for _, fh := range r.MultipartForm.File["files"] {
		data, err := readPart(fh)
		if err != nil {
			h.runFailed(w, r, logger, s, draft, errors.NewInvalidRequest(fmt.Sprintf("reading %s: %v", fh.Filename, err)))
			return
		}
		if _, err := store.Put(fh.Filename, data, artifact.KindUnknown); err != nil {
			h.runFailed(w, r, logger, s, draft, err)
			return
		}
	}
	if order := orderNames(r.MultipartForm.Value["order"]); len(order) > 0 {
		if err := store.Reorder(order); err != nil {
			h.runFailed(w, r, logger, s, draft, err)
			return
		}
	}

	res, err := h.exec.Run(r.Context(), desc, store.All(), raw)
	if err != nil {
		h.runFailed(w, r, logger, s, draft, err)
		return
	}
	out, err := res.Download()
	if err != nil {
		h.runFailed(w, r, logger, s, draft, errors.NewInternal(err))
		return
	}

	s.Router.SaveDraft(nil)
	writeDownload(w, out)
}

// HandleAPITools handles GET /api/tools: the catalog as JSON.
func (h *Handlers) HandleAPITools(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"tools": h.reg.Describe()})
}

// HandleHealth handles GET /healthz. Backends are checked again so a newly
// installed one is picked up without a restart.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.reg.Recheck()
	unavailable := []string{}
	for _, d := range h.reg.List() {
		if h.reg.Availability(d.ID) != nil {
			unavailable = append(unavailable, d.ID)
		}
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"tools":       h.reg.Len(),
		"unavailable": unavailable,
	})
}

func (h *Handlers) runFailed(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *session.Session, draft map[string]string, err error) {
	mErr := errors.As(err)
	if mErr == nil {
		mErr = errors.NewInternal(err)
	}
	logger.Info("run rejected", "code", mErr.Code, "err", mErr.Message)

	if wantsJSON(r) {
		renderJSON(w, mErr.Status, errorBody(mErr))
		return
	}
	h.renderer.renderPageStatus(w, mErr.Status, "tool", h.toolPage(s.Router, draft, mErr))
}

func (h *Handlers) formError(err error) error {
	var tooBig *http.MaxBytesError
	if stderrors.As(err, &tooBig) {
		return errors.NewInvalidRequest(fmt.Sprintf("upload exceeds the %d MB limit", h.cfg.MaxUploadMB))
	}
	return errors.NewInvalidRequest("invalid form data: expected multipart/form-data")
}

// session returns the caller's session, issuing a cookie for new ones.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	s, created := h.sessions.Resolve(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func (h *Handlers) page(title, active string) PageData {
	groups := h.reg.Groups()
	nav := make([]NavGroup, 0, len(groups))
	for _, g := range groups {
		ng := NavGroup{Category: string(g.Category)}
		for _, d := range g.Tools {
			ng.Items = append(ng.Items, NavItem{
				ID:        d.ID,
				Name:      d.Name,
				Available: h.reg.Availability(d.ID) == nil,
			})
		}
		nav = append(nav, ng)
	}
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Active:  active,
	}
}

func (h *Handlers) toolPage(rt *session.Router, draft map[string]string, failure *errors.MintError) ToolPageData {
	desc := rt.Current()
	data := ToolPageData{
		PageData:    h.page(desc.Name, desc.ID),
		Tool:        desc,
		Revision:    rt.Revision(),
		Description: renderMarkdown(desc.Description),
		Fields:      fields(desc, draft),
		Accept:      acceptAttr(desc.Accepts),
		MaxUploadMB: h.cfg.MaxUploadMB,
	}
	if err := h.reg.Availability(desc.ID); err != nil {
		data.Unavailable = err.Error()
		if me := errors.As(err); me != nil {
			data.Unavailable = me.Message
		}
	}
	if failure != nil {
		data.Error = failure.Message
		data.ErrorCode = string(failure.Code)
	}
	return data
}

// staleForm reports whether the form carries a revision other than current.
// Forms without one are accepted.
func staleForm(form *multipart.Form, current uint64) bool {
	vals := form.Value["rev"]
	if len(vals) == 0 {
		return false
	}
	rev, err := strconv.ParseUint(strings.TrimSpace(vals[len(vals)-1]), 10, 64)
	return err != nil || rev != current
}

// fields pairs each option with the value to show: the draft value when the
// user already typed one, the default otherwise.
func fields(desc *tool.Descriptor, draft map[string]string) []Field {
	out := make([]Field, 0, len(desc.Options))
	for _, o := range desc.Options {
		f := Field{Option: o, Value: cast.ToString(o.Default)}
		if v, ok := draft[o.Name]; ok {
			f.Value = v
		}
		if o.Type == tool.OptBool {
			b, err := cast.ToBoolE(f.Value)
			f.Checked = err == nil && b
		}
		out = append(out, f)
	}
	return out
}

// optionValues extracts the tool's options from the form. Fields that are
// absent stay absent so the schema default applies. Checkboxes post a hidden
// "false" before the box itself, so the last value wins.
func optionValues(desc *tool.Descriptor, form *multipart.Form) (map[string]any, map[string]string) {
	raw := make(map[string]any)
	draft := make(map[string]string)
	for _, o := range desc.Options {
		vals := form.Value[o.Name]
		if len(vals) == 0 {
			continue
		}
		v := strings.TrimSpace(vals[len(vals)-1])
		raw[o.Name] = v
		draft[o.Name] = v
	}
	return raw, draft
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// orderNames flattens the order fields: each may hold several names, one per line.
func orderNames(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// acceptAttr maps input kinds to the file picker's accept list.
func acceptAttr(kinds []artifact.Kind) string {
	var exts []string
	for _, k := range kinds {
		switch k {
		case artifact.KindPDF:
			exts = append(exts, ".pdf")
		case artifact.KindImage:
			exts = append(exts, ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff")
		case artifact.KindSlideshow:
			exts = append(exts, ".pptx")
		case artifact.KindText:
			exts = append(exts, ".txt")
		case artifact.KindArchive:
			exts = append(exts, ".zip")
		}
	}
	return strings.Join(exts, ",")
}

func writeDownload(w http.ResponseWriter, a *artifact.Artifact) {
	w.Header().Set("Content-Type", a.MediaType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name()}))
	w.Header().Set("Content-Length", strconv.Itoa(a.Size()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data())
}
