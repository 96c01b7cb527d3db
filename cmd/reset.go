package cmd

import (
	"fmt"

	"github.com/abhisek/mbeprep/internal/library"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all questions, attempts and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if !confirm(cmd, "Delete every question, attempt and saved setting?") {
			fmt.Println("Reset cancelled.")
			return nil
		}
		if err := library.New(st).Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("All data cleared.")
		return nil
	},
}

var abandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Discard the saved in-progress run",
	Long:  "Discard the saved in-progress run. Attempts already submitted are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		ok, err := session.HasSnapshot(ctx, st.AppState())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No saved run.")
			return nil
		}
		if err := session.ClearSnapshot(ctx, st.AppState()); err != nil {
			return err
		}
		fmt.Println("Saved run discarded.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
