package cmd

import (
	"errors"
	"fmt"

	"github.com/abhisek/mbeprep/internal/library"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a full JSON backup of questions and attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		dir := cfg.ExportDir
		if d, _ := cmd.Flags().GetString("out"); d != "" {
			dir = d
		}

		path, err := library.New(st).Export(cmd.Context(), dir)
		if errors.Is(err, library.ErrEmptyBank) {
			fmt.Println("Nothing to export: the question bank is empty.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Directory to write the backup to (default from config)")
}
