package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time).
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "diplocaller",
		Short:         "Call star-allele diplotypes for a set of pharmacogenes from a single-sample VCF",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.diplocaller.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().Bool("watch-config", false, "reload configuration from disk when the config file changes")
	_ = viper.BindPFlag("logLevel", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("watchConfig", cmd.PersistentFlags().Lookup("watch-config"))

	cobra.OnInitialize(func() {
		initConfig(cfgFile)
	})

	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newDefinitionsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".diplocaller")
	}

	viper.SetEnvPrefix("DIPLOCALLER")
	viper.AutomaticEnv()

	viper.SetDefault("assumeReference", false)
	viper.SetDefault("topCandidateOnly", true)
	viper.SetDefault("alwaysShowUnmatchedHaplotypes", false)
	viper.SetDefault("outputFormat", "json")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("historyCache.path", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
		}
	}

	if viper.GetBool("watchConfig") {
		viper.OnConfigChange(func(e fsnotify.Event) {
			fmt.Fprintf(os.Stderr, "config file changed (%s), reloaded\n", e.Name)
		})
		viper.WatchConfig()
	}
}

func defaultConfigPath() string {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return cfgFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".diplocaller.yaml"
	}
	return filepath.Join(home, ".diplocaller.yaml")
}
