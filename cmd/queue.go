package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"mail_trans_engine/service/worker"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Mail translation queue worker.",
	Long:  `Mail translation queue worker.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			log.Fatalf("could not build application: %v", err)
		}
		defer a.Close()

		worker.Run(a)
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
}
