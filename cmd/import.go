package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/library"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the question bank with a JSON or Excel file",
	Long: "Replace the question bank with a JSON export or an .xlsx spreadsheet.\n" +
		"Attempts in the file are kept. Any saved run is discarded.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := bankfile.Read(args[0])
		if err != nil {
			return err
		}
		if !confirmReplace(cmd, st.Questions().Count, len(f.Questions)) {
			fmt.Println("Import cancelled.")
			return nil
		}

		res, err := library.New(st).Import(cmd.Context(), f, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d questions and %d groups from %s\n", res.Questions, res.Groups, args[0])
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Download and import the NCBE sample question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		url := cfg.SampleURL
		if u, _ := cmd.Flags().GetString("url"); u != "" {
			url = u
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		fmt.Println("Downloading", url)
		f, err := bankfile.NewFetcher(nil).Fetch(ctx, url)
		if err != nil {
			return err
		}
		if !confirmReplace(cmd, st.Questions().Count, len(f.Questions)) {
			fmt.Println("Import cancelled.")
			return nil
		}

		res, err := library.New(st).Import(ctx, f, bankfile.DefaultSampleName)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d questions and %d groups\n", res.Questions, res.Groups)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "Replace the current bank without asking")
	sampleCmd.Flags().BoolP("yes", "y", false, "Replace the current bank without asking")
	sampleCmd.Flags().String("url", "", "Download from this URL instead of the configured sample")
}

// confirmReplace asks before overwriting a non-empty bank. A bank that
// cannot be counted is treated as non-empty.
func confirmReplace(cmd *cobra.Command, count func(context.Context) (int, error), incoming int) bool {
	existing, err := count(cmd.Context())
	if err != nil {
		return confirm(cmd, fmt.Sprintf("Could not count stored questions (%v). Replace the bank with %d questions from the file anyway?", err, incoming))
	}
	if existing == 0 {
		return true
	}
	return confirm(cmd, fmt.Sprintf("Replace %d stored questions (and their attempts) with %d from the file?", existing, incoming))
}
