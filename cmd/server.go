package cmd

import (
	"context"
	"log"
	"net/url"

	"cloud.google.com/go/pubsub"
	"github.com/spf13/cobra"

	"tripkit/docstore/docstore"
	"tripkit/docstore/mem"
	"tripkit/docstore/pg"
	"tripkit/notify/gcppubsub"
	"tripkit/notify/goch"
	"tripkit/notify/notify"
	"tripkit/notify/rabbit"
	"tripkit/store"
	"tripkit/web"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `This command starts the web server for the application.`,
		Run: func(cmd *cobra.Command, args []string) {
			isDev := cmd.Flags().Lookup("dev").Value.String() == "true"
			port := cmd.Flags().Lookup("port").Value.String()
			storeMode := cmd.Flags().Lookup("store").Value.String()
			mqMode := cmd.Flags().Lookup("mq").Value.String()
			cachePath := cmd.Flags().Lookup("cache").Value.String()

			newLocal := func(userID string) *store.KV {
				if cachePath == "" {
					return store.NewMemory()
				}
				return store.Open(userCachePath(cachePath, userID))
			}

			var remote docstore.Store
			switch storeMode {
			case "mem":
				remote = mem.NewStore()
			case "pg":
				db, err := pg.InitPostgresGORM(pg.CreateDSN())
				if err != nil {
					log.Fatalf("Failed to init postgres: %v", err)
				}
				defer pg.CloseGORM(db)
				remote = pg.NewStore(db, newBroker(notify.Mode(mqMode)))
			default:
				log.Fatalf("Unknown store mode: %s", storeMode)
			}

			// Start the web server
			web.Serve(web.ServiceConfig{
				IsDev: isDev,
				Port:  port,
			}, newLocal, remote)
		},
	}

	cmd.Flags().Bool("dev", true, "Run in development mode")
	cmd.Flags().String("port", "8080", "Port to run the web server on")
	cmd.Flags().String("store", "mem", "Document store backend (mem, pg)")
	cmd.Flags().String("mq", "go_chan", "Message queue mode (go_chan, rabbitmq, gcp_pub_sub)")
	cmd.Flags().String("cache", "", "Local cache file path (empty keeps the cache in memory)")

	return cmd
}

// userCachePath derives a per-user cache file from the base path, so one
// user's offline copy never seeds another user's session.
func userCachePath(base, userID string) string {
	if userID == "" {
		return base
	}
	return base + "." + url.PathEscape(userID)
}

func newBroker(mode notify.Mode) notify.Broker {
	switch mode {
	case notify.ModeGoChan:
		return goch.NewBroker(0)
	case notify.ModeRabbitMQ:
		broker, err := rabbit.NewBroker(rabbit.NewRabbitConnection(rabbit.CreateAmqpURL()))
		if err != nil {
			log.Fatalf("Failed to create RabbitMQ broker: %v", err)
		}
		return broker
	case notify.ModeGCPPubSub:
		ctx := context.Background()
		client, err := pubsub.NewClient(ctx, gcppubsub.GetGCPProjectID())
		if err != nil {
			log.Fatalf("Failed to create Pub/Sub client: %v", err)
		}
		broker, err := gcppubsub.NewBroker(ctx, client)
		if err != nil {
			log.Fatalf("Failed to create Pub/Sub broker: %v", err)
		}
		return broker
	default:
		log.Fatalf("Unknown mq mode: %s", mode)
		return nil
	}
}
