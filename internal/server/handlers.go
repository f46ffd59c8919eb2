package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/form"
	"github.com/conneroisu/contactform/internal/version"
	"github.com/conneroisu/contactform/internal/view"
)

// maxBodyBytes caps submit and validate request bodies.
const maxBodyBytes = 64 << 10

func (s *Server) props(state form.State) view.Props {
	p := view.Props{
		Title: s.form().Title,
		State: state,
	}
	if s.config.Server.Live {
		p.LiveURL = "/ws"
	}
	return p
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, state form.State, status int) {
	html, err := view.RenderString(r.Context(), view.Page(s.props(state)))
	if err != nil {
		s.logger.Error(r.Context(), errors.NewInternalError(errors.ErrCodeRender, "failed to render page", err), "Render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, s.newForm().State(), http.StatusOK)
}

// valuesFromForm reads the four fields of a form-encoded body. Unknown keys
// are ignored.
func valuesFromForm(data url.Values) form.Values {
	var v form.Values
	for _, field := range form.Fields {
		v.Set(field, data.Get(string(field)))
	}
	return v
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	f := s.newForm()
	f.Fill(valuesFromForm(r.PostForm))
	ok := f.Submit()

	status := http.StatusOK
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	s.logger.Info(r.Context(), "Form submitted",
		"valid", ok,
		"errors", f.Errors().Count())

	s.renderPage(w, r, f.State(), status)
}

// ValidateResponse is the body returned by POST /api/validate.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors form.Errors       `json:"errors"`
	List   []form.FieldError `json:"list"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var values form.Values
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&values); err != nil {
		appErr := errors.NewValidationError(errors.ErrCodeInvalidArgument, "invalid JSON body: "+err.Error())
		s.logger.Debug(r.Context(), "Rejected validate request", "error", appErr.Error())
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": appErr.Message})
		return
	}

	errs := s.form().Rules().Validate(values)
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:  errs.Count() == 0,
		Errors: errs,
		List:   errs.Ordered(),
	})
}

func (s *Server) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write([]byte(view.Script))
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"version":    version.GetShortVersion(),
		"build_info": version.GetBuildInfo(),
		"sessions":   s.SessionCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
