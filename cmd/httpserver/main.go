package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/doc-signing-backend/cmd/flags"
	"github.com/ruteri/doc-signing-backend/httpserver"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docsign-server",
		Usage: "Serve the document signing API",
		Flags: append(append(append([]cli.Flag{}, flags.StorageFlags...), flags.ServerFlags...), flags.LogFlags...),
		Action: func(cCtx *cli.Context) error {
			cfg, err := flags.LoadConfig(cCtx)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := flags.SetupLogger(cfg, nil)

			services, err := flags.BuildServices(cfg, logger)
			if err != nil {
				logger.Error("Failed to set up storage", "err", err)
				return err
			}

			handler := httpserver.NewHandler(services.Identities, services.Signer, services.Verifier, services.Archive, cfg.MaxBodyBytes, logger)

			server, err := httpserver.New(flags.ConfigureServer(cfg, logger), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server", "listenAddr", cfg.ListenAddr)
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
