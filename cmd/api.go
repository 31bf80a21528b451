package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"mail_trans_engine/service/api"
)

var serverCmd = &cobra.Command{
	Use:   "api",
	Short: "Mail translation API service.",
	Long:  `Mail translation API service.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			log.Fatalf("could not build application: %v", err)
		}
		defer a.Close()

		if err := api.Run(a); err != nil {
			log.Fatalf("could not run api service: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
