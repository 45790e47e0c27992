// Package google はGoogle Sign-InのIDトークン検証を提供します。
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"workzone_backend/internal/feature/auth/usecase"
	httpclient "workzone_backend/internal/platform/http"
)

const (
	// CertsURL はGoogleの公開鍵（JWKS）のURLです。
	CertsURL = "https://www.googleapis.com/oauth2/v3/certs"

	jwksTTL = time.Hour
	// jwksMinRefresh は未知のkidによる再取得の最短間隔です。
	jwksMinRefresh = time.Minute
	requestTimeout = 10 * time.Second
)

// Googleが発行するIDトークンのissuerは2種類あります。
var validIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// idTokenClaims are the ID token claims used for sign-in.
type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// Verifier validates Google ID tokens issued for one OAuth client.
type Verifier struct {
	clientID string
	jwks     *jwksCache
	now      func() time.Time
}

// Verifierがusecase.FederatedVerifierを実装していることをコンパイル時に検証します。
var _ usecase.FederatedVerifier = (*Verifier)(nil)

// Option configures a Verifier.
type Option func(*verifierOptions)

type verifierOptions struct {
	certsURL string
	client   *http.Client
	now      func() time.Time
}

// WithCertsURL overrides the JWKS endpoint.
func WithCertsURL(url string) Option {
	return func(o *verifierOptions) { o.certsURL = url }
}

// WithHTTPClient overrides the HTTP client used to fetch keys.
func WithHTTPClient(c *http.Client) Option {
	return func(o *verifierOptions) { o.client = c }
}

// WithTimeFunc replaces the clock used for expiry checks and key caching.
func WithTimeFunc(now func() time.Time) Option {
	return func(o *verifierOptions) { o.now = now }
}

// NewVerifier はclientIDを検証対象のaudienceとするVerifierを生成します。
func NewVerifier(clientID string, opts ...Option) (*Verifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is empty")
	}
	o := verifierOptions{certsURL: CertsURL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = httpclient.NewHTTPClient(requestTimeout)
	}
	return &Verifier{
		clientID: clientID,
		jwks:     newJWKSCache(o.certsURL, jwksTTL, jwksMinRefresh, o.client, o.now),
		now:      o.now,
	}, nil
}

// Verify はIDトークンの署名・audience・issuer・有効期限を検証し、アサーションを返します。
// メールアドレスが未確認のアカウントは拒否します。
func (v *Verifier) Verify(ctx context.Context, credential string) (*usecase.FederatedAssertion, error) {
	var claims idTokenClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing kid in token header")
		}
		return v.jwks.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}

	if !validIssuer(claims.Issuer) {
		return nil, fmt.Errorf("invalid issuer: %s", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject")
	}
	if claims.Email == "" || !emailVerified(claims.EmailVerified) {
		return nil, errors.New("email is missing or not verified")
	}

	return &usecase.FederatedAssertion{
		Subject:    claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		PictureURL: claims.Picture,
	}, nil
}

func validIssuer(iss string) bool {
	for _, v := range validIssuers {
		if iss == v {
			return true
		}
	}
	return false
}

// emailVerified accepts both the boolean and the string form Google has used.
func emailVerified(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}
