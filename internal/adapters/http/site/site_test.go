package site

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/gameaccess/internal/adapters/artifacts/artifactstest"
	service "github.com/okian/gameaccess/internal/app"
	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/okian/gameaccess/internal/domain/session"
	"github.com/okian/gameaccess/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type stubClassifier struct {
	err   error
	calls int
}

func (s *stubClassifier) Classify(_ context.Context, p profile.Profile) (service.Result, error) {
	s.calls++
	if s.err != nil {
		return service.Result{}, s.err
	}
	return service.Result{Name: p.Name}, nil
}

func validForm() url.Values {
	return url.Values{
		"name":             {"Ada"},
		"age":              {"72"},
		"care_level":       {"3"},
		"bmi":              {"24.5"},
		"education_level":  {"12"},
		"sex":              {"Female"},
		"mobility_aid":     {"Yes"},
		"prior_experience": {"No"},
		"sppb":             {"4"},
		"balance_score":    {"2"},
		"gait_speed":       {"1"},
		"stand_up_score":   {"1"},
		"qmci":             {"55"},
	}
}

func newMux(c Classifier, opts ...Option) *http.ServeMux {
	h, err := New(c, opts...)
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	h.Register(context.Background(), mux)
	return mux
}

func post(mux http.Handler, path string, form url.Values, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSiteForm(t *testing.T) {
	Convey("Given a site handler", t, func() {
		mux := newMux(&stubClassifier{})

		Convey("When the form is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			body := w.Body.String()

			Convey("Then every control is rendered with its default", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
				So(body, ShouldContainSubstring, "Game Accessibility Classifier")
				So(body, ShouldContainSubstring, "Please fill out the form below:")
				So(body, ShouldContainSubstring, "Cognitive &amp; Physical Values")
				So(body, ShouldContainSubstring, "Classify Games")
				So(body, ShouldContainSubstring, `name="age" value="18"`)
				So(body, ShouldContainSubstring, `name="bmi" value="10"`)
				So(body, ShouldContainSubstring, `<option value="Select..." selected>`)
			})
		})

		Convey("When an unknown path is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the stylesheet is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

			Convey("Then it is served from the embedded assets", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
			})
		})

		Convey("When the results page is left", func() {
			w := post(mux, "/restart", url.Values{"state": {session.ShowingResult.String()}})

			Convey("Then the browser is sent back to the form", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/")
			})
		})

		Convey("When restart is posted from the form page", func() {
			w := post(mux, "/restart", url.Values{"state": {session.AwaitingInput.String()}})

			Convey("Then the transition is refused", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(w.Header().Get("Location"), ShouldBeEmpty)
			})
		})

		Convey("When restart carries no page state", func() {
			w := post(mux, "/restart", url.Values{})

			Convey("Then the transition is refused", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When restart is requested with GET", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/restart", nil))

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSiteClassifyValidation(t *testing.T) {
	Convey("Given a site handler over a stub classifier", t, func() {
		stub := &stubClassifier{}
		mux := newMux(stub)

		Convey("When a field is out of range", func() {
			form := validForm()
			form.Set("sppb", "13")
			w := post(mux, "/classify", form)
			body := w.Body.String()

			Convey("Then the form is shown again with the field error", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(body, ShouldContainSubstring, "Must be between 0 and 12.")
				So(body, ShouldContainSubstring, `name="sppb" value="13"`)
				So(stub.calls, ShouldEqual, 0)
			})
		})

		Convey("When a whole number field holds a fraction", func() {
			form := validForm()
			form.Set("age", "70.5")
			w := post(mux, "/classify", form)

			Convey("Then it is rejected before classification", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "Must be a whole number.")
				So(stub.calls, ShouldEqual, 0)
			})
		})

		Convey("When classification fails on a categorical value", func() {
			stub.err = fmt.Errorf("expand: %w", &features.CategoricalError{Field: "sex", Value: profile.Unselected})
			w := post(mux, "/classify", validForm())

			Convey("Then the failure is shown above the form", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "An error occurred:")
				So(w.Body.String(), ShouldContainSubstring, `role="alert"`)
			})
		})

		Convey("When the model returns an unknown label", func() {
			stub.err = &outcome.LabelError{Label: "999", Game: "Boxing"}
			w := post(mux, "/classify", validForm())

			Convey("Then a server error page keeps the form", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "999")
				So(w.Body.String(), ShouldContainSubstring, "Classify Games")
			})
		})
	})
}

func TestParseProfile(t *testing.T) {
	Convey("Given submitted form values", t, func() {
		Convey("When every value is well formed", func() {
			p, errs := parseProfile(formValues(validForm()))

			Convey("Then the profile carries them", func() {
				So(errs, ShouldBeEmpty)
				So(p.Name, ShouldEqual, "Ada")
				So(p.Age, ShouldEqual, 72)
				So(p.BMI, ShouldEqual, 24.5)
				So(p.Sex, ShouldEqual, profile.Female)
				So(p.MobilityAid, ShouldEqual, profile.Yes)
				So(p.QMCI, ShouldEqual, 55.0)
			})
		})

		Convey("When numbers are missing or malformed", func() {
			form := validForm()
			form.Set("bmi", "")
			form.Set("qmci", "NaN")
			_, errs := parseProfile(formValues(form))

			Convey("Then each field gets its own message", func() {
				So(errs["bmi"], ShouldEqual, "Required.")
				So(errs["qmci"], ShouldEqual, "Must be a number.")
				So(errs, ShouldHaveLength, 2)
			})
		})

		Convey("When the defaults are submitted untouched", func() {
			p, errs := parseProfile(defaultValues())

			Convey("Then ranges pass and selects keep the placeholder", func() {
				So(errs, ShouldBeEmpty)
				So(string(p.Sex), ShouldEqual, profile.Unselected)
			})
		})
	})
}

func TestSiteWithService(t *testing.T) {
	Convey("Given a site handler over the fixture pipeline", t, func() {
		svc := service.New(service.WithStore(artifactstest.NewStore()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, WithDefaultLanguage("de"))

		Convey("When a valid profile is submitted", func() {
			w := post(mux, "/classify", validForm(), "Accept-Language", "en-GB,en;q=0.8")
			body := w.Body.String()

			Convey("Then the recommendations are grouped by description", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "Game Recommendations for Ada")
				So(body, ShouldContainSubstring, "Needs verbal and physical support")
				So(body, ShouldContainSubstring, "Not able to play the game")
				So(body, ShouldContainSubstring, "Ski")
				So(body, ShouldContainSubstring, "%")
				So(body, ShouldContainSubstring, "Back to Form")
				So(body, ShouldContainSubstring, `name="state" value="showing_result"`)
				So(strings.Index(body, "Needs verbal and physical support"), ShouldBeLessThan, strings.Index(body, "Not able to play the game"))
			})
		})

		Convey("When a select keeps its placeholder", func() {
			form := validForm()
			form.Set("sex", profile.Unselected)
			w := post(mux, "/classify", form)

			Convey("Then the pipeline rejects it and the form is shown again", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "Please choose a value for every selection.")
				So(w.Body.String(), ShouldNotContainSubstring, "Game Recommendations")
			})
		})
	})
}
