// Package backend opens the robot backend named in the configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-nidhogg/internal/config"
	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/lola"
	"github.com/teslashibe/go-nidhogg/pkg/remote"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
	"github.com/teslashibe/go-nidhogg/pkg/sim"
)

// Open connects to cfg.Backend, retrying cfg.Retries times with
// cfg.RetryInterval between attempts.
func Open(ctx context.Context, cfg config.Config) (robot.InfoBackend, error) {
	log.Info("opening backend", "backend", cfg.Backend, "retries", cfg.Retries, "interval", cfg.RetryInterval)

	var (
		b   robot.InfoBackend
		err error
	)
	switch cfg.Backend {
	case config.BackendLoLA:
		var lb *lola.Backend
		if lb, err = lola.ConnectPathWithRetry(ctx, cfg.Socket, cfg.Retries, cfg.RetryInterval); err == nil {
			b = lb
		}
	case config.BackendSim:
		b, err = sim.Connect(sim.Config{})
	case config.BackendRemote:
		var rc *remote.Client
		if rc, err = remote.DialWithRetry(ctx, cfg.RemoteURL, cfg.Retries, cfg.RetryInterval); err == nil {
			b = rc
		}
	default:
		err = fmt.Errorf("backend: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
