package main

import (
	"os"

	"github.com/skillpivot/api/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "skillpivot",
	Short: "SkillPivot internship platform API",
	Long: `SkillPivot connects internship seekers, companies and administrators.

	skillpivot serve          start the HTTP API
	skillpivot migrate up     apply database migrations
	skillpivot migrate down   roll back the last migration
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the yaml configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
