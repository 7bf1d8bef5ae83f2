package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stashkit/scenematch/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scenematch",
	Short: "Match your local scene library against a reference catalog.",
	Long: `scenematch compares a local StashApp library against the StashDB reference
catalog, finds scenes missing locally, queues them for acquisition in
Whisparr, and flags duplicate copies within the library itself.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scenematch.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("rundir", "", "", "Run-artifact directory (default from config, ./runs)")
	rootCmd.PersistentFlags().StringP("output", "o", "itd", "Missing/duplicate line fields: i=id, t=title, d=date, s=studio")
	rootCmd.PersistentFlags().StringP("delimiter", "", " ", "Delimiter between output fields")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".scenematch")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.scenematch.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("stash.url", "http://localhost:9999")
	viper.SetDefault("stash.apikey", "")
	viper.SetDefault("stashdb.url", "https://stashdb.org")
	viper.SetDefault("stashdb.apikey", "")
	viper.SetDefault("whisparr.url", "http://localhost:6969")
	viper.SetDefault("whisparr.apikey", "")
	viper.SetDefault("whisparr.lookbackdays", 30)
	viper.SetDefault("http.delayseconds", 2.0)
	viper.SetDefault("rundir", "./runs")
	viper.SetDefault("dbpath", "scenematch.sqlite")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
