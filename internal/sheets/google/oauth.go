package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// oauthTokenSource builds user credentials from an OAuth client and a token
// minted by cmd/oauth-init. ok is false when no OAuth client is configured.
func oauthTokenSource(ctx context.Context) (ts oauth2.TokenSource, ok bool, err error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
	if clientJSON == "" && clientFile == "" {
		return nil, false, nil
	}

	client, err := inlineOrFile(clientJSON, clientFile, "oauth client")
	if err != nil {
		return nil, true, err
	}
	cfg, err := googleoauth.ConfigFromJSON(client, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, true, fmt.Errorf("oauth config: %w", err)
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	tokenJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_JSON"))
	if tokenJSON == "" && tokenFile == "" {
		tokenFile = "token.json"
	}
	raw, err := inlineOrFile(tokenJSON, tokenFile, "oauth token")
	if err != nil {
		return nil, true, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, true, fmt.Errorf("decode oauth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), true, nil
}

func inlineOrFile(inline, path, what string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", what, err)
	}
	return b, nil
}
