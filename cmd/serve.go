package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/contactsync/internal/repositories"
	"github.com/desertthunder/contactsync/internal/server"
	"github.com/desertthunder/contactsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the reference contact store until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewContactRouter(repositories.NewContactRepository(db), logger, r.config.Server.PageSize)

	ready := make(chan string, 1)
	defer close(ready)
	go func() {
		if bound, ok := <-ready; ok {
			r.writePlain("Serving contacts at http://%s/contacts/\n", bound)
		}
	}()

	if err := server.Serve(ctx, addr, router, logger, ready); err != nil {
		return fmt.Errorf("contact store stopped: %w", err)
	}
	return nil
}
