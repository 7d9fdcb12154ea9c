package site

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/okian/gameaccess/internal/adapters/http/api"
	"github.com/okian/gameaccess/internal/domain/session"
	"github.com/okian/gameaccess/pkg/logger"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locales with percent formatting tables. The first entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Dutch,
}

var matcher = language.NewMatcher(supported)

type pages struct {
	tmpl *template.Template
}

func loadPages() (*pages, error) {
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"lines": func(s string) []string { return strings.Split(s, "\n") },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return &pages{tmpl: tmpl}, nil
}

type fieldView struct {
	Name    string
	Label   string
	Kind    string
	Step    string
	Options []string
	Value   string
	Error   string
	Min     string
	Max     string
}

type sectionView struct {
	Title   string
	Columns [][]fieldView
}

type formPage struct {
	Sections []sectionView
	Failure  string
}

type entryView struct {
	Game       string
	Confidence string
}

type groupView struct {
	Description string
	Games       string
	Entries     []entryView
}

type resultsPage struct {
	Name   string
	State  string
	Groups []groupView
}

func newFormPage(values, errs map[string]string, failure string) formPage {
	page := formPage{Failure: failure}
	for _, s := range layout {
		sv := sectionView{Title: s.Title}
		for _, col := range s.Columns {
			cv := make([]fieldView, len(col))
			for i, f := range col {
				cv[i] = fieldView{
					Name:    f.Name,
					Label:   f.Label,
					Kind:    f.Kind,
					Step:    f.Step,
					Options: f.Options,
					Value:   values[f.Name],
					Error:   errs[f.Name],
				}
				if f.Kind == kindInt || f.Kind == kindFloat {
					cv[i].Min = fmtBound(f.Bounds.Min)
					cv[i].Max = fmtBound(f.Bounds.Max)
				}
			}
			sv.Columns = append(sv.Columns, cv)
		}
		page.Sections = append(page.Sections, sv)
	}
	return page
}

func newResultsPage(sess *session.Session, p *message.Printer) resultsPage {
	page := resultsPage{Name: sess.Profile().Name, State: sess.State().String()}
	for _, g := range sess.Outcome().Groups {
		gv := groupView{
			Description: g.Description,
			Games:       strings.Join(g.Games(), ", "),
		}
		for _, e := range g.Entries {
			gv.Entries = append(gv.Entries, entryView{
				Game:       e.Game,
				Confidence: p.Sprint(number.Percent(e.Confidence, number.MaxFractionDigits(0))),
			})
		}
		page.Groups = append(page.Groups, gv)
	}
	return page
}

// printer picks the locale from Accept-Language, falling back to the
// configured default.
func (h *Handler) printer(r *http.Request) *message.Printer {
	tags := []language.Tag{h.defaultLang}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if parsed, _, err := language.ParseAcceptLanguage(accept); err == nil && len(parsed) > 0 {
			tags = parsed
		}
	}
	tag, _, _ := matcher.Match(tags...)
	return message.NewPrinter(tag)
}

// render executes into a buffer so a template failure never leaves a half
// written page behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error(r.Context(), "render page",
			logger.String("request_id", api.RequestIDFrom(r.Context())),
			logger.String("page", name),
			logger.Error(fmt.Errorf("%w: %w", ErrRender, err)),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
