package commands

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/internal/config"
	"github.com/jakechorley/weekend-duty/pkg/clients/gmailclient"
	"github.com/jakechorley/weekend-duty/pkg/clients/sheetsclient"
	"github.com/jakechorley/weekend-duty/pkg/core/services"
	"github.com/jakechorley/weekend-duty/pkg/db"
	"github.com/jakechorley/weekend-duty/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env       string
	Cfg       *config.Config
	Database  db.Database
	Scheduler *services.Scheduler
	Logger    *zap.Logger
	Ctx       context.Context
	Out       io.Writer

	googleMu sync.Mutex
	tokens   *utils.TokenProvider
	sheets   *sheetsclient.Client
	gmail    *gmailclient.Client
}

// TokenProvider loads the OAuth client file for the environment on first use
func (a *AppContext) TokenProvider() (*utils.TokenProvider, error) {
	a.googleMu.Lock()
	defer a.googleMu.Unlock()
	return a.tokenProviderLocked()
}

func (a *AppContext) tokenProviderLocked() (*utils.TokenProvider, error) {
	if a.tokens != nil {
		return a.tokens, nil
	}

	a.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(a.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, err
	}

	a.tokens = utils.NewTokenProvider(oauthConfig, a.Env, a.Logger, a.Out)
	return a.tokens, nil
}

// SheetsClient returns the Sheets client, authorising on first use
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	a.googleMu.Lock()
	defer a.googleMu.Unlock()

	if a.sheets != nil {
		return a.sheets, nil
	}

	tokens, err := a.tokenProviderLocked()
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Initializing sheets client")
	a.sheets, err = sheetsclient.NewClient(a.Ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return a.sheets, nil
}

// GmailClient returns the Gmail client, authorising on first use
func (a *AppContext) GmailClient() (*gmailclient.Client, error) {
	a.googleMu.Lock()
	defer a.googleMu.Unlock()

	if a.gmail != nil {
		return a.gmail, nil
	}

	tokens, err := a.tokenProviderLocked()
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Initializing gmail client")
	a.gmail, err = gmailclient.NewClient(a.Ctx, tokens, a.Cfg.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	return a.gmail, nil
}
