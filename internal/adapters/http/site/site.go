// Package site serves the HTML form and results pages.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/gameaccess/internal/adapters/http/api"
	service "github.com/okian/gameaccess/internal/app"
	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/okian/gameaccess/internal/domain/session"
	"github.com/okian/gameaccess/pkg/logger"
	"golang.org/x/text/language"
)

// Classifier runs the pipeline for one profile. *service.Service implements it.
type Classifier interface {
	Classify(ctx context.Context, p profile.Profile) (service.Result, error)
}

// Handler renders the form and the grouped recommendations. Every request
// starts a fresh session; nothing is kept between requests.
type Handler struct {
	classifier  Classifier
	pages       *pages
	defaultLang language.Tag
	logger      logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithDefaultLanguage sets the locale used when a request carries no
// Accept-Language header. Unparseable values keep English.
func WithDefaultLanguage(lang string) Option {
	return func(h *Handler) {
		if tag, err := language.Parse(lang); err == nil {
			h.defaultLang = tag
		}
	}
}

// New builds a Handler. It fails only when the embedded templates are broken.
func New(c Classifier, opts ...Option) (*Handler, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		classifier:  c,
		pages:       p,
		defaultLang: language.English,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Named("site")
	}
	return h, nil
}

// Register attaches the HTML routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/", api.RequestID(api.MetricsMiddleware(h.handleForm, "site_form")))
	mux.Handle("/classify", api.RequestID(api.MetricsMiddleware(h.handleClassify, "site_classify")))
	mux.Handle("/restart", api.RequestID(api.MetricsMiddleware(h.handleRestart, "site_restart")))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "form", newFormPage(defaultValues(), nil, ""))
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	reqID := api.RequestIDFrom(ctx)

	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "form", newFormPage(defaultValues(), nil, "The form could not be read."))
		return
	}
	values := formValues(r.PostForm)
	p, fieldErrs := parseProfile(values)
	if len(fieldErrs) > 0 {
		h.logger.Warn(ctx, "form rejected",
			logger.String("request_id", reqID),
			logger.Int("fields", len(fieldErrs)),
		)
		h.render(w, r, http.StatusBadRequest, "form", newFormPage(values, fieldErrs, ""))
		return
	}

	sess := session.New()
	res, err := h.classifier.Classify(ctx, p)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, features.ErrInvalidCategoricalValue) {
			status = http.StatusUnprocessableEntity
		}
		if ferr := sess.Fail(failureMessage(err)); ferr != nil {
			h.logger.Error(ctx, "session rejected failure", logger.String("request_id", reqID), logger.Error(ferr))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		h.logger.Warn(ctx, "classification shown as failure",
			logger.String("request_id", reqID),
			logger.Int("status", status),
			logger.Error(err),
		)
		h.render(w, r, status, "form", newFormPage(values, nil, sess.Failure()))
		return
	}
	if err := sess.Submit(p, res.Outcome); err != nil {
		h.logger.Error(ctx, "session rejected result", logger.String("request_id", reqID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "results", newResultsPage(sess, h.printer(r)))
}

// handleRestart leaves the results page. Only a page showing a result may
// restart; anything else is a conflict.
func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	st, err := session.ParseState(r.PostForm.Get("state"))
	if err == nil {
		err = session.Resume(st).Restart()
	}
	if err != nil {
		h.logger.Warn(ctx, "restart rejected",
			logger.String("request_id", api.RequestIDFrom(ctx)),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// failureMessage is the text shown above the form when the pipeline fails.
func failureMessage(err error) string {
	var le *outcome.LabelError
	switch {
	case errors.Is(err, features.ErrInvalidCategoricalValue):
		return "An error occurred:\n\nPlease choose a value for every selection. " + err.Error()
	case errors.As(err, &le):
		return "An error occurred:\n\nThe model returned a label this service does not recognise (" + le.Label + ")."
	case errors.Is(err, service.ErrNotStarted):
		return "An error occurred:\n\nThe classifier is not ready yet. Please try again shortly."
	}
	return "An error occurred:\n\n" + err.Error()
}
