package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fika-quiz/backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var ErrIncompleteProfile = errors.New("identity provider returned an incomplete profile")

// IdentityProvider runs the authorization-code handshake with an external
// provider and returns the verified identity.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (models.ExternalIdentity, error)
}

type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (models.ExternalIdentity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return models.ExternalIdentity{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return models.ExternalIdentity{}, err
	}
	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return models.ExternalIdentity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ExternalIdentity{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return models.ExternalIdentity{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return identityFromUserInfo(info)
}

func identityFromUserInfo(info googleUserInfo) (models.ExternalIdentity, error) {
	if info.Sub == "" || info.Email == "" {
		return models.ExternalIdentity{}, ErrIncompleteProfile
	}
	name := info.Name
	if name == "" {
		name = info.Email
	}
	return models.ExternalIdentity{
		GoogleID: info.Sub,
		Email:    info.Email,
		Name:     name,
		Picture:  info.Picture,
	}, nil
}
