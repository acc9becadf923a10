package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-escrow/internal/api/handler"
	"github.com/sanosuguru/go-ticket-escrow/internal/config"
	"github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/memory"
	"github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-ticket-escrow/internal/server"
)

// storage は選択したストレージのリポジトリと後始末
type storage struct {
	repos  server.Repositories
	checks map[string]handler.HealthCheck
	close  func()
}

func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		return &storage{
			repos: server.Repositories{
				TxManager:   store,
				Events:      store.Events(),
				Tickets:     store.Tickets(),
				Identities:  store.Identities(),
				Escrow:      store.Escrow(),
				Credentials: store.Credentials(),
			},
			checks: map[string]handler.HealthCheck{},
			close:  func() {},
		}, nil

	case config.StorageDriverPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return &storage{
			repos: postgresRepositories(db),
			checks: map[string]handler.HealthCheck{
				"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
			},
			close: func() { db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("不明なストレージドライバーです: %s", cfg.Storage.Driver)
}

func postgresRepositories(db *sqlx.DB) server.Repositories {
	return server.Repositories{
		TxManager:   postgres.NewTxManager(db),
		Events:      postgres.NewEventRepository(db),
		Tickets:     postgres.NewTicketRepository(db),
		Identities:  postgres.NewIdentityRepository(db),
		Escrow:      postgres.NewEscrowRepository(db),
		Credentials: postgres.NewCredentialRepository(db),
	}
}
