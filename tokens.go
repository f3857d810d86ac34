package panther

import (
	"context"

	"github.com/tphakala/go-panther/internal/auth"
)

// TokenService manages the API token used by this client.
type TokenService interface {
	// Rotate replaces the current API token with a freshly generated one and
	// installs the new value on this client, so subsequent calls
	// authenticate with it. The backend keeps the old token valid for a few
	// seconds after rotation.
	Rotate(ctx context.Context, opts ...RequestOption) (string, error)
}

// tokenService implements TokenService.
type tokenService struct {
	gql   *gqlExecutor
	creds *auth.Credentials
}

func newTokenService(gql *gqlExecutor, creds *auth.Credentials) *tokenService {
	return &tokenService{gql: gql, creds: creds}
}

// Rotate replaces the current API token and returns the new value.
func (s *tokenService) Rotate(ctx context.Context, opts ...RequestOption) (string, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		RotateAPIToken struct {
			Token struct {
				ID    string `json:"id"`
				Value string `json:"value"`
			} `json:"token"`
		} `json:"rotateAPIToken"`
	}
	err := s.gql.execute(ctx, "tokens/rotate", nil, reqCfg.headers, &result)
	if err != nil {
		return "", err
	}

	token := result.RotateAPIToken.Token.Value
	s.creds.SetToken(token)
	return token, nil
}
