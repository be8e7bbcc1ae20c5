package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "navd",
	Short: "drive a tile-based navigation-mesh manager",
	Long: `navd is the command-line harness accompanying the navigation-mesh
manager:
	- write a worldspace config prefilled with default values,
	- load an OBJ scene and run a scripted player walk through it,
	- inspect the tiles resident in a persistent tile DB.`,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "navd.yml", "worldspace config file")
}

// Execute adds all child commands to the root command and runs it. It
// is called by main.main, once.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

// loadConfig reads cfgFile into out via viper, falling back to out's
// zero value (expected to already hold defaults) if the file is
// absent.
func loadConfig(out interface{}) error {
	vp := viper.New()
	vp.SetConfigFile(cfgFile)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return vp.Unmarshal(out)
}
