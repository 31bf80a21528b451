package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mail_trans_engine/config"
	"mail_trans_engine/pkg/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mail_trans_engine",
	Short: "Supplier mail translation engine.",
	Long:  `Supplier mail translation engine: orchestration, caching and batch translation services.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	home, err := homedir.Dir()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
}

// buildApp locates the config file, loads it, and wires the application.
func buildApp() (*app.App, error) {
	path := cfgFile
	if path == "" {
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("locate config file: %w", err)
		}
		path = viper.ConfigFileUsed()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}
