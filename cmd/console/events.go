package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-console/internal/app"
	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
)

func eventsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print status-change events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Events.Broker != config.BrokerRedis {
				return fmt.Errorf("events.broker must be %q to follow events from another process", config.BrokerRedis)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ch, err := c.Events.Subscribe(ctx, cfg.Events.Channel)
			if err != nil {
				return err
			}
			for raw := range ch {
				msg, err := messaging.Decode(raw)
				if err != nil {
					c.Log.Warn("skipping undecodable event", "error", err.Error())
					continue
				}
				if err := printJSON(msg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
