package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/portage/internal/server"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// calendarScope grants read access to calendars and events, which is all the
// export walk needs.
const calendarScope = "https://www.googleapis.com/auth/calendar.readonly"

// AuthLogin performs the OAuth2 authorization code flow for Google Calendar.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens saved back to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath != "" {
		r.configPath = configPath
	}

	creds := r.config.Credentials.Calendar
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: calendar client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       []string{calendarScope},
		Endpoint:     google.Endpoint,
	}

	token, err := r.doOAuth(oauthConfig, "authorization")
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: portage transfer create --from google-calendar --type calendar\n")

	return nil
}

// AuthStatus reports which provider credentials are present in the config.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking credential status")

	creds := r.config.Credentials

	r.writePlainHeader("Provider Credentials")
	for _, row := range []struct {
		service string
		present bool
	}{
		{"smugmug", creds.SmugMug.AccessToken != ""},
		{"imgur", creds.Imgur.AccessToken != ""},
		{"google-calendar", creds.Calendar.AccessToken != ""},
	} {
		if row.present {
			r.writePlain("✓ %s: configured\n", row.service)
		} else {
			r.writePlain("✗ %s: no access token\n", row.service)
		}
	}

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(oauthConfig *oauth2.Config, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	oauthHandler := server.NewOAuthHandler(oauthConfig, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Google %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
