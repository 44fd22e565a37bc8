package cmd

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/spf13/cobra"

	_ "tripkit/migration" // register migrations
	"tripkit/docstore/pg"

	_ "github.com/lib/pq"

	"github.com/pressly/goose/v3"
)

const migrationsDir = "migration"

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply document store migrations",
		Long:  `Bring the Postgres document store schema up to date, or roll back the last migration with --down. Only needed when the server runs with --store pg.`,
		Run: func(cmd *cobra.Command, args []string) {
			down, _ := cmd.Flags().GetBool("down")

			if err := goose.SetDialect("postgres"); err != nil {
				log.Fatalf("Failed to set goose dialect: %v", err)
			}

			db, err := sql.Open("postgres", pg.CreateDSN())
			if err != nil {
				log.Fatalf("Failed to open database: %v", err)
			}
			defer db.Close()

			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pingCancel()
			if err := db.PingContext(pingCtx); err != nil {
				log.Fatalf("Failed to ping database: %v", err)
			}

			ctx := context.Background()
			if down {
				log.Println("Rolling back the last migration...")
				if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
					log.Fatalf("Goose DownContext failed: %v", err)
				}
			} else {
				log.Println("Applying pending migrations...")
				if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
					log.Fatalf("Goose UpContext failed: %v", err)
				}
			}

			if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
				log.Fatalf("Goose StatusContext failed: %v", err)
			}
		},
	}

	cmd.Flags().BoolP("down", "d", false, "roll back the most recent migration instead of migrating up")

	return cmd
}
