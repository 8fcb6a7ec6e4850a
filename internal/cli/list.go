package cli

import (
	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/domain"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work-in-progress items",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed items")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := GetOutput()

	store, err := openWorklist()
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.Items(ctx, listAll)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		if items == nil {
			items = []domain.Item{}
		}
		return out.JSON(items)
	}

	if len(items) == 0 {
		out.Println("No items. Add one with `wip add <description>`.")
		return nil
	}

	out.Worklist(items)
	return nil
}
