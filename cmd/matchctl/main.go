// cmd/matchctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"venture-match/internal/app"
	"venture-match/internal/common/config"
	"venture-match/internal/common/logger"
)

var version = "dev"

// cli carries the flags shared by every subcommand.
type cli struct {
	cfgFile string
	verbose bool
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{out: os.Stdout}

	root := &cobra.Command{
		Use:           "matchctl",
		Short:         "Operate the startup/investor match store",
		Long:          `matchctl computes, inspects and maintains startup/investor compatibility records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(c.computeCmd())
	root.AddCommand(c.feedbackCmd())
	root.AddCommand(c.expireCmd())
	root.AddCommand(c.statusCmd())
	root.AddCommand(c.getCmd())
	root.AddCommand(c.listCmd())
	root.AddCommand(c.importCmd())
	root.AddCommand(c.migrateCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfgFile != "" {
		return config.LoadFromFile(c.cfgFile)
	}
	return config.Load()
}

func (c *cli) logger() logger.Logger {
	if c.verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewStructured("warn", "console")
}

// connect loads configuration and opens the backing services. The caller must Close the deps.
func (c *cli) connect(ctx context.Context) (*app.Deps, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	deps, err := app.Connect(ctx, cfg, c.logger())
	if err != nil {
		return nil, nil, err
	}
	return deps, cfg, nil
}

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
