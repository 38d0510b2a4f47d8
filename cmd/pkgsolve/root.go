package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "PKGSOLVE"

var log = logrus.New()

func main() {
	Execute()
}

// Execute runs the root command and, on any error, logs it and exits with
// status 1 regardless of the error's code, a single exit point as in the
// teacher's own cmd/operator-cli.
func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile, logLevel, logFormat string

	cmd := &cobra.Command{
		Use:     "pkgsolve",
		Short:   "Dependency resolver core for a binary package manager",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(configFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"), viper.GetString("log_format"))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(newSolveCommand())
	cmd.AddCommand(newExportCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		return viper.ReadInConfig()
	}

	viper.SetConfigName("pkgsolve")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/pkgsolve")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
	}
	return nil
}

func setupLogging(level, format string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}
}
