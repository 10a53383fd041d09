package google

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tripkas/tripkas/internal/config"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type GoogleAuth struct {
	tokens      TokenRepository
	oauthConfig *oauth2.Config
}

func NewGoogleAuth(tokens TokenRepository, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope},
	}

	return &GoogleAuth{tokens: tokens, oauthConfig: oauthConfig}
}

// OAuthLogin godoc
// @Summary Start connecting Google Calendar
// @Tags Google
// @Produce json
// @Param finalUrl query string false "Where the callback redirects to afterwards"
// @Success 200 {object} googleAuthRedirect
// @Router /api/integrations/google/auth/login [get]
// @Security XUserId
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, rest.Unauthorized("unable to retrieve current user"))
		return
	}

	stateNonce := uuid.New().String()
	if err := g.tokens.StartLogin(r.Context(), userId, stateNonce); err != nil {
		rest.WriteError(w, err)
		return
	}

	finalUrl := r.URL.Query().Get("finalUrl")
	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

// OAuthCallback is called by Google. It carries no user header, the nonce identifies the login.
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	finalUrl, nonce, ok := strings.Cut(r.FormValue("state"), "|")
	if !ok || nonce == "" {
		rest.WriteError(w, rest.Invalid("invalid state"))
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	stored, err := g.tokens.CompleteLogin(r.Context(), nonce, token)
	if err != nil || !stored {
		log.Warnf("Google auth callback with unknown nonce %s", nonce)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

// OAuthLogout godoc
// @Summary Disconnect Google Calendar
// @Tags Google
// @Success 204
// @Router /api/integrations/google/auth/logout [delete]
// @Security XUserId
func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, rest.Unauthorized("unable to retrieve current user"))
		return
	}
	if err := g.tokens.Delete(r.Context(), userId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *GoogleAuth) getClient(ctx context.Context, userId int) (*http.Client, error) {
	token, err := g.tokens.GetToken(ctx, userId)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
