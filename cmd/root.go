package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/abhisek/mbeprep/internal/config"
	"github.com/abhisek/mbeprep/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mbeprep",
	Short: "Terminal practice for Multistate Bar Exam questions",
	Long: "mbeprep runs timed MBE practice quizzes in the terminal, keeps every attempt,\n" +
		"and reports accuracy by category, provider and year.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MBEPREP_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides MBEPREP_CONFIG env var)")
	addQuizFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(abandonCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(retagCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, MBEPREP_CONFIG or the
// default location.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MBEPREP_DB or the config file, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return cfg.ResolveDBPath()
}

// openStore loads config and opens the database. Callers close the store.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("open store: %w", err)
	}
	return st, cfg, nil
}

// confirm asks a yes/no question on stdin unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
