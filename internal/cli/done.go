package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/domain"
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a work-in-progress item as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := GetOutput()

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return domain.Errorf(domain.ErrInvalidArgs, "item id must be a number, got %q", args[0])
	}

	store, err := openWorklist()
	if err != nil {
		return err
	}
	defer store.Close()

	item, err := store.Complete(ctx, uint(id))
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(item)
	}

	out.Printf("Done #%d: %s\n", item.ID, item.Description)
	return nil
}
