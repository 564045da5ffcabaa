package main

import (
	"github.com/skillpivot/api/internal/bootstrap"
	"github.com/skillpivot/api/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
		if err != nil {
			return err
		}

		srv, err := server.NewServer(cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize server")
			return err
		}

		if err := srv.Run(cmd.Context()); err != nil {
			lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
			return err
		}
		lgr.Info().Msg("Application finished gracefully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
