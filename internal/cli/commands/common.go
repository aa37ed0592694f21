package commands

import (
	"fmt"

	"github.com/mesboard-dev/mesboard/internal/cli/config"
	"github.com/mesboard-dev/mesboard/internal/cli/guard"
	"github.com/mesboard-dev/mesboard/internal/cli/serverselect"
	"github.com/mesboard-dev/mesboard/internal/cli/session"
)

// getSelectedServer loads the project config and resolves the server to
// use. This is common logic used by most commands.
func getSelectedServer(serverAlias string) (*config.Server, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'mesboard init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit mesboard.yaml and add a valid URL")
	}

	return server, nil
}

// newSessionManager builds a Manager backed by the default session files
// and bootstraps it, so callers always see a resolved session.
func newSessionManager() (*session.Manager, error) {
	adapter, err := session.NewFileAdapter()
	if err != nil {
		return nil, err
	}

	mgr := session.NewManager(adapter)
	mgr.Bootstrap()
	return mgr, nil
}

// requireSession bootstraps the local session and evaluates the guard for
// the named command. It returns the manager on Allow and a user-facing
// error on Pending or Deny.
func requireSession(allowed guard.Predicate, commandPath string) (*session.Manager, error) {
	mgr, err := newSessionManager()
	if err != nil {
		return nil, err
	}

	decision := guard.Evaluate(mgr.Snapshot(), allowed, commandPath)
	switch decision.Outcome {
	case guard.Allow:
		return mgr, nil
	case guard.Pending:
		return nil, fmt.Errorf("session is still initializing, try again")
	default:
		if decision.Target == guard.TargetLanding {
			return nil, fmt.Errorf("admin privileges are required for '%s'", commandPath)
		}
		return nil, fmt.Errorf("not logged in (requested '%s'). Run 'mesboard login' first", decision.From)
	}
}
