package cli

import (
	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the wip version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := GetOutput()

		if out.IsJSON() {
			return out.JSON(map[string]string{
				"version": version.Version,
				"commit":  version.GitCommit,
				"date":    version.BuildDate,
			})
		}

		if out.IsVerbose() {
			out.Printf("wip %s\n", version.Full())
		} else {
			out.Printf("wip %s\n", version.Info())
		}
		return nil
	},
}
