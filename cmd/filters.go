package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/spf13/cobra"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the categories and providers available for filtering",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		qs, err := st.Questions().All(cmd.Context())
		if err != nil {
			return err
		}
		opts := filter.DiscoverOptions(qs)
		if len(opts.Categories) == 0 && len(opts.Providers) == 0 {
			fmt.Println("No questions loaded.")
			return nil
		}

		fmt.Printf("%-36s  %9s  %s\n", "Category", "Questions", "Subcategories")
		fmt.Println(strings.Repeat("─", 79))
		for _, c := range opts.Categories {
			fmt.Printf("%-36s  %9d  %s\n", c.Name, c.Count, strings.Join(c.SubCategories, ", "))
		}

		fmt.Printf("\nProviders: %s\n", strings.Join(opts.Providers, ", "))
		return nil
	},
}
