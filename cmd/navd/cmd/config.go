package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/argonaut-engine/navmesh/navconf"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:   "config FILE",
	Short: "write a worldspace config file",
	Long: `Write a worldspace config file in YAML format, prefilled with default
values.

If FILE is not provided, 'navd.yml' is used.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := "navd.yml"
		if len(args) >= 1 {
			path = args[0]
		}
		if ok, err := confirmIfExists(path,
			fmt.Sprintf("file '%s' already exists, overwrite? [y/N]", path)); !ok {
			if err == nil {
				fmt.Println("aborted by user")
			} else {
				fmt.Println("aborted,", err)
			}
			return
		}

		buf, err := yaml.Marshal(navconf.DefaultConfig())
		check(err)
		check(writeFile(path, buf))
		fmt.Printf("worldspace config written to '%s'\n", path)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
}
