package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/stats"
	"github.com/abhisek/mbeprep/internal/timer"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics",
	Long: "Show accuracy and timing over the latest attempt of every question,\n" +
		"broken down by category, provider and year.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.Questions()
		category, _ := cmd.Flags().GetString("category")
		provider, _ := cmd.Flags().GetString("provider")
		year, _ := cmd.Flags().GetString("year")

		var qs []*quiz.Question
		switch {
		case category != "":
			qs, err = repo.ByCategory(ctx, category)
		case provider != "":
			qs, err = repo.ByProvider(ctx, provider)
		case year != "":
			qs, err = repo.ByYear(ctx, year)
		default:
			qs, err = repo.All(ctx)
		}
		if err != nil {
			return err
		}
		if len(qs) == 0 {
			fmt.Println("No questions found.")
			return nil
		}

		printReport(stats.Compute(qs), len(qs))
		return nil
	},
}

func init() {
	statsCmd.Flags().String("category", "", "Only questions in this category")
	statsCmd.Flags().String("provider", "", "Only questions from this provider")
	statsCmd.Flags().String("year", "", "Only questions from this year")
	statsCmd.MarkFlagsMutuallyExclusive("category", "provider", "year")
}

func printReport(r *stats.Report, total int) {
	fmt.Printf("Questions:        %d (%d attempted)\n", total, r.Attempted)
	if r.Attempted == 0 {
		fmt.Println("No attempts yet.")
		return
	}
	fmt.Printf("Accuracy:         %.1f%% (%d correct, %d incorrect)\n", r.Accuracy(), r.Correct, r.Incorrect)
	fmt.Printf("Attempts:         %d, average %s\n", r.TotalAttempts, timer.Format(int(r.AvgTime()+0.5)))
	fmt.Printf("With notes:       %d\n", r.WithNotes)

	fmt.Println()
	printBucketHeader("Category")
	for _, c := range r.Categories {
		printBucket(c.Name, c.Bucket)
		for _, sub := range c.SubCategories {
			printBucket("  "+sub.Name, sub)
		}
	}

	fmt.Println()
	printBucketHeader("Provider")
	for _, p := range r.Providers {
		printBucket(p.Name, p)
	}

	fmt.Println()
	printBucketHeader("Year")
	for _, y := range r.Years {
		printBucket(y.Name, y)
	}
}

func printBucketHeader(label string) {
	fmt.Printf("%-36s  %9s  %8s  %8s  %8s\n", label, "Correct", "Accuracy", "Attempts", "Avg time")
	fmt.Println(strings.Repeat("─", 79))
}

func printBucket(name string, b stats.Bucket) {
	if len(name) > 36 {
		name = name[:33] + "..."
	}
	fmt.Printf("%-36s  %4d/%-4d  %7.1f%%  %8d  %8s\n",
		name, b.CorrectLastAttempts, b.TotalLastAttempts, b.Accuracy(),
		b.NumAllAttempts, timer.Format(int(b.AvgTime()+0.5)))
}
