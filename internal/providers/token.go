package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Tokens are reused until shortly before the provider-reported expiry.
const tokenExpirySlack = 30 * time.Second

// tokenSource performs the client-credentials handshake and caches the
// resulting access token. Safe for concurrent use.
type tokenSource struct {
	client       *Client
	clientID     string
	clientSecret string
	clock        clockz.Clock

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(client *Client, clientID, clientSecret string, clock clockz.Clock) *tokenSource {
	return &tokenSource{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		clock:        clock,
	}
}

func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.clock.Now().Before(t.expiry.Add(-tokenExpirySlack)) {
		return t.token, nil
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(t.clientID + ":" + t.clientSecret))
	body, err := t.client.DoJSON(ctx, http.MethodPost, "/oauth/token",
		map[string]string{"Authorization": "Basic " + credentials},
		map[string]string{"grant_type": "client_credentials"},
	)
	if err != nil {
		return "", err
	}

	token, _ := body["access_token"].(string)
	if token == "" {
		return "", &Error{Provider: t.client.name, Class: FailureClient, Err: errors.New("token response missing access_token")}
	}

	expiresIn, _ := body["expires_in"].(float64)
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	t.token = token
	t.expiry = t.clock.Now().Add(time.Duration(expiresIn) * time.Second)
	return token, nil
}
