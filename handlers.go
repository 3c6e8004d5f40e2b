package main

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Server serves the login page, the redirect to Instagram and the OAuth
// callback. All of its fields are set once at startup.
type Server struct {
	cfg       Config
	oauth     *oauth2.Config
	exchanger *TokenExchanger
	state     *StateSigner
	log       logrus.FieldLogger
}

func NewServer(cfg Config, exchanger *TokenExchanger, state *StateSigner, log logrus.FieldLogger) *Server {
	return &Server{
		cfg:       cfg,
		oauth:     newOAuthConfig(cfg),
		exchanger: exchanger,
		state:     state,
		log:       log,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.HandlerFunc(s.Index))
	mux.Handle("/login", http.HandlerFunc(s.Login))
	mux.Handle(callbackPath, http.HandlerFunc(s.Callback))
	return mux
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := renderLogin(&buf, loginView{CallbackURL: s.cfg.RedirectURI()}); err != nil {
		s.log.WithError(err).Error("Failed to render login page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeHTML(w, buf.Bytes(), http.StatusOK)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var state string
	if s.state != nil {
		var err error
		state, err = s.state.Issue(s.cfg.RedirectURI())
		if err != nil {
			s.log.WithError(err).Error("Failed to issue state")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse query", http.StatusBadRequest)
		return
	}

	var (
		code           = r.Form.Get("code")
		errCode        = r.Form.Get("error")
		errDescription = r.Form.Get("error_description")
		state          = r.Form.Get("state")
	)

	if s.state != nil && errCode == "" && code != "" {
		if err := s.state.Verify(state, s.cfg.RedirectURI()); err != nil {
			s.fail(w, exchangeError(ErrInvalidState, err.Error()))
			return
		}
	}

	creds, err := s.exchanger.HandleCallback(r.Context(), code, errCode, errDescription)
	if err != nil {
		s.fail(w, err)
		return
	}

	s.log.WithField("user_id", creds.UserID).Info("Issued long-lived token")

	var buf bytes.Buffer
	if err := renderResult(&buf, newResultView(creds)); err != nil {
		s.log.WithError(err).Error("Failed to render result page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	noStore(w)
	writeHTML(w, buf.Bytes(), http.StatusOK)
}

// fail renders err as an error page. The raw upstream payload is shown to
// the operator but only the failure kind is logged.
func (s *Server) fail(w http.ResponseWriter, err error) {
	view, status := errorViewFor(err)

	s.log.WithField("reason", view.Title).Warn("Callback failed")

	var buf bytes.Buffer
	if rerr := renderError(&buf, view); rerr != nil {
		s.log.WithError(rerr).Error("Failed to render error page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	noStore(w)
	writeHTML(w, buf.Bytes(), status)
}

func errorViewFor(err error) (errorView, int) {
	var xerr *ExchangeError
	if !errors.As(err, &xerr) {
		return errorView{Title: "Unexpected Error", Message: err.Error()}, http.StatusInternalServerError
	}

	view := errorView{Payload: xerr.Payload, Description: xerr.Description}

	switch {
	case errors.Is(err, ErrAuthorizationDenied):
		view.Title = "Authorization Denied"
		return view, http.StatusBadRequest
	case errors.Is(err, ErrMissingAuthorizationCode):
		view.Title = "Error: No code received"
		return view, http.StatusBadRequest
	case errors.Is(err, ErrInvalidState):
		view.Title = "Invalid State"
		view.Message = "The login request expired or was not issued by this server. Start over from the login page."
		return view, http.StatusBadRequest
	case errors.Is(err, ErrShortLivedExchangeFailed):
		view.Title = "Token Exchange Failed"
		return view, http.StatusBadGateway
	case errors.Is(err, ErrLongLivedExchangeFailed):
		view.Title = "Long-Lived Exchange Failed"
		return view, http.StatusBadGateway
	default:
		view.Title = "Unexpected Error"
		view.Message = xerr.Error()
		return view, http.StatusInternalServerError
	}
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

func writeHTML(w http.ResponseWriter, body []byte, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(body)
}
