package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/argonaut-engine/navmesh/tiledb"
)

var infoMaxFileSize int64

// infosCmd represents the infos command.
var infosCmd = &cobra.Command{
	Use:   "infos TILEDB",
	Short: "show infos about a persistent tile DB",
	Long: `Open a persistent tile DB file and print the number of resident
tile rows and the file's current size on disk.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := tiledb.OpenBolt(args[0], infoMaxFileSize)
		check(err)
		defer db.Close()

		tiles, size, err := db.Stats()
		check(err)
		fmt.Printf("tiles: %d\n", tiles)
		fmt.Printf("size : %d bytes\n", size)
	},
}

func init() {
	RootCmd.AddCommand(infosCmd)
	infosCmd.Flags().Int64Var(&infoMaxFileSize, "max-size", 0, "pruning budget to reopen the DB with (0 disables pruning)")
}
