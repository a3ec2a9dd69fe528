// Package main provides the webfs CLI entry point.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"github.com/devraulu/webfs/pkg/cache"
	"github.com/devraulu/webfs/pkg/config"
	"github.com/devraulu/webfs/pkg/logger"
	"github.com/devraulu/webfs/pkg/urlx"
	"github.com/devraulu/webfs/pkg/webfs"
)

var configPath string

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "webfs",
		Short: "A scraper that thinks it's a filesystem",
		Long: `Browse the web like a directory tree: a page is a directory of the
links it contains, an image is a file. Fetched pages are cached on
disk, so repeated traversal is cheap.`,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "webfs.toml", "path to config file")

	rootCmd.AddCommand(lsCmd())
	rootCmd.AddCommand(catCmd())
	rootCmd.AddCommand(grepCmd())
	rootCmd.AddCommand(openCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFS() (*webfs.FS, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}

	logger.InitLogger(cfg)

	root := cfg.CacheRoot
	if root == "" {
		root = cache.DefaultRoot()
	}
	reg := cache.NewRegistry(root)

	// a DSN moves the page cache from local disk into Postgres
	if cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("couldn't open database: %w", err)
		}
		if err := cache.RunMigrations(db); err != nil {
			return nil, err
		}
		reg.Register("html", cache.NewPGStore(db, "html"))
	}

	opts := []webfs.Option{webfs.WithRegistry(reg)}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, webfs.WithUserAgent(cfg.Fetch.UserAgent))
	}
	if timeout := cfg.Fetch.GetTimeout(); timeout > 0 {
		opts = append(opts, webfs.WithClient(&http.Client{Timeout: timeout}))
	}

	return webfs.New(opts...), nil
}

// argURL normalizes a user-entered URL at the program boundary.
func argURL(arg string) string {
	normalized, err := urlx.Normalize(arg)
	if err != nil {
		return arg
	}
	return normalized
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls URL",
		Short: "List the directories and files a page links to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := newFS()
			if err != nil {
				return err
			}
			items, err := fs.Dir(argURL(args[0])).Ls(context.Background())
			if err != nil {
				return err
			}
			printList(items)
			return nil
		},
	}
}

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat URL",
		Short: "Write a resource's raw bytes to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := newFS()
			if err != nil {
				return err
			}
			blob, err := fs.File(argURL(args[0])).Cat(context.Background())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(blob)
			return err
		},
	}
}

func grepCmd() *cobra.Command {
	var (
		recursive  bool
		ignoreCase bool
		contextN   int
	)
	cmd := &cobra.Command{
		Use:   "grep PATTERN URL",
		Short: "Filter a page's listing by a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := newFS()
			if err != nil {
				return err
			}
			ctx := context.Background()
			items, err := fs.Dir(argURL(args[1])).Ls(ctx)
			if err != nil {
				return err
			}
			matched, err := items.Grep(ctx, args[0], webfs.GrepOptions{
				Recursive:  recursive,
				IgnoreCase: ignoreCase,
				Context:    contextN,
			})
			if err != nil {
				return err
			}
			printList(matched)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "fetch entries and match their content")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "case-insensitive match")
	cmd.Flags().IntVarP(&contextN, "context", "C", 0, "match the source element after N parent hops")
	return cmd
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open URL",
		Short: "Open a URL in the local browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := newFS()
			if err != nil {
				return err
			}
			fs.Page(argURL(args[0])).Open()
			return nil
		},
	}
}

func printList(items *webfs.List) {
	for _, entry := range items.Entries() {
		kind := "f"
		if entry.IsDir() {
			kind = "d"
		}
		fmt.Printf("%s %s\n", kind, entry.URL().String())
	}
}
