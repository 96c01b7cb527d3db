package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/spf13/cobra"
)

var retagCmd = &cobra.Command{
	Use:   "retag <file>",
	Short: "Set exam name, provider and year on every question in a bank file",
	Long: "Rewrite the source metadata of every question in a JSON bank file.\n" +
		"The store is not touched; import the file afterwards.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exam, _ := cmd.Flags().GetString("exam")
		provider, _ := cmd.Flags().GetString("provider")
		year, _ := cmd.Flags().GetString("year")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = args[0]
			if ext := filepath.Ext(out); !strings.EqualFold(ext, ".json") {
				out = strings.TrimSuffix(out, ext) + ".json"
			}
		}

		f, err := bankfile.Read(args[0])
		if err != nil {
			return err
		}
		n := bankfile.Retag(f, exam, provider, year)
		if err := bankfile.Write(out, f); err != nil {
			return err
		}
		fmt.Printf("Updated %d questions, written to %s\n", n, out)
		return nil
	},
}

func init() {
	retagCmd.Flags().String("exam", "", "Exam name")
	retagCmd.Flags().String("provider", "", "Question provider")
	retagCmd.Flags().String("year", "", "Exam year (non-numeric values are cleared)")
	retagCmd.Flags().StringP("out", "o", "", "Output file (default overwrites a JSON input)")
	retagCmd.MarkFlagRequired("exam")
	retagCmd.MarkFlagRequired("provider")
}
