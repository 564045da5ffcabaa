package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrRejected means Google did not accept the token.
var ErrRejected = errors.New("google rejected the access token")

// Identity is the subset of the Google profile used for sign-in.
type Identity struct {
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Name          string
}

// Verifier resolves a Google OAuth access token to the account it belongs to.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

// UserinfoVerifier calls the OAuth2 v2 userinfo endpoint with the token.
type UserinfoVerifier struct {
	endpoint string
}

// NewUserinfoVerifier creates a verifier. An empty endpoint uses Google's.
func NewUserinfoVerifier(endpoint string) *UserinfoVerifier {
	return &UserinfoVerifier{endpoint: endpoint}
}

// Verify fetches the profile for accessToken.
func (v *UserinfoVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrRejected
	}

	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}
	if v.endpoint != "" {
		opts = append(opts, option.WithEndpoint(v.endpoint))
	}

	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google oauth2 client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email scope", ErrRejected)
	}

	identity := &Identity{
		Email:      strings.ToLower(info.Email),
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Name:       info.Name,
	}
	if info.VerifiedEmail != nil {
		identity.EmailVerified = *info.VerifiedEmail
	}
	return identity, nil
}
