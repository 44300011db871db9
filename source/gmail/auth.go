package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/poiesic/jobtrail/source"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// oauthConfig reads the OAuth client file with the read-only mail scope.
func oauthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrCredentialsMissing, err)
	}
	conf, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", source.ErrCredentialsMissing, credentialsFile, err)
	}
	return conf, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no token at %s", source.ErrNotAuthorized, path)
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", source.ErrNotAuthorized, path, err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// AuthURL returns the consent page the user must visit to authorize access.
func AuthURL(credentialsFile string) (string, error) {
	conf, err := oauthConfig(credentialsFile)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// Authorize exchanges the code shown after consent for a token and saves it
// to tokenFile.
func Authorize(ctx context.Context, credentialsFile, tokenFile, code string) error {
	conf, err := oauthConfig(credentialsFile)
	if err != nil {
		return err
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return saveToken(tokenFile, tok)
}

// httpClient returns an authorized client that refreshes the saved token.
func httpClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	conf, err := oauthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	return conf.Client(ctx, tok), nil
}
