package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all edits and restore the seed dataset",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the reset")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return fmt.Errorf("reset discards every admin edit; re-run with --yes to confirm")
	}

	_, store, _, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	store.ResetToSeed()
	fmt.Println("Dataset restored to seed defaults")
	return nil
}
