package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelrate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without contacting TMDB.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the effective configuration",
	Long:  "Prints the loaded configuration as TOML with defaults applied and secrets masked.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

// configArgPath resolves the file named on the command line, --config, or
// the discovered one, in that order.
func configArgPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if configPath != "" {
		return configPath, nil
	}
	return config.Discover()
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path, err := configArgPath(args)
	if err != nil {
		return err
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(os.Stdout, configErr)
			return config.ErrInvalid
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(os.Stdout, cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := configArgPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n", path)
	return cfg.Encode(os.Stdout)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w, use --force to overwrite", err)
		}
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set TMDB_API_TOKEN to your TMDB read access token, then run 'reelrate config test'.")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	fmt.Fprintln(w, "Problems:")
	for _, p := range e.Problems() {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(w, "\nSet missing variables in the environment or in %s.\n", filepath.Join(filepath.Dir(e.Path), ".env"))
	}
	fmt.Fprintln(w)
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  TMDB:       %s (language: %s, adult: %t)\n", cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Adult())
	if cfg.TMDB.RequestsPerSecond > 0 {
		fmt.Fprintf(w, "  Rate limit: %g req/s (burst %d)\n", cfg.TMDB.RequestsPerSecond, cfg.TMDB.Burst)
	}
	fmt.Fprintf(w, "  Database:   %s\n", cfg.Database.Path)

	session := cfg.Session.Backend
	if session == config.BackendRedis {
		session += " (" + cfg.Redis.Addr + ")"
	}
	fmt.Fprintf(w, "  Session:    %s\n", session)
	fmt.Fprintf(w, "  Search:     default %q, debounce %s\n", cfg.Search.DefaultQuery, cfg.Search.Debounce)
	fmt.Fprintf(w, "  Log:        %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	if cfg.Events.Persist {
		fmt.Fprintf(w, "  Events:     persisted for %s\n", cfg.Events.Retention)
	} else {
		fmt.Fprintln(w, "  Events:     not persisted")
	}
}
