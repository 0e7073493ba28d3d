package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/akyairhashvil/problemtracker/internal/app"
	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/lifecycle"
	"github.com/akyairhashvil/problemtracker/internal/tui"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

const (
	envConfig    = "PROBLEMTRACKER_CONFIG"
	envBackupKey = "PROBLEMTRACKER_BACKUP_KEY"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the flags shared by every command.
type cli struct {
	configPath string
	opener     lifecycle.LinkOpener
	readSecret func(prompt string) (string, error)
}

func newRootCmd() *cobra.Command {
	return (&cli{readSecret: promptForKey}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Problem tracking register",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/problemtracker/config.yaml)")
	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.advanceCmd(),
		c.deleteCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.restoreCmd(),
		c.staleCmd(),
		c.reportCmd(),
	)
	return root
}

func (c *cli) resolveConfigPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	if env := strings.TrimSpace(os.Getenv(envConfig)); env != "" {
		return env
	}
	return filepath.Join(util.ConfigDir(config.AppName), config.ConfigFileName)
}

func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.resolveConfigPath())
	if err != nil {
		return config.Config{}, err
	}
	return cfg.ResolveDirs(util.DataDir(config.AppName), util.ReportsDir(config.AppName)), nil
}

func (c *cli) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	opener := c.opener
	if opener == nil {
		opener = lifecycle.ClipboardOpener{}
	}
	return app.New(ctx, cfg, app.Options{Opener: opener})
}

func (c *cli) runTUI(ctx context.Context) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(ctx, tui.Deps{
		Store:         a.DB,
		Lifecycle:     a.Engine,
		Checker:       a.Checker,
		Files:         a,
		Opener:        lifecycle.ClipboardOpener{},
		Clock:         a.Now,
		PageSize:      a.Config.PageSize,
		StaleInterval: a.Config.Staleness.Interval,
		LinkBase:      a.Config.Notify.LinkBase,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func promptForKey(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no terminal to read the passphrase; set %s", envBackupKey)
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(pass)), err
}

// backupKey prefers the environment so scripted backups never block on a
// prompt.
func (c *cli) backupKey(prompt string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(envBackupKey)); key != "" {
		return key, nil
	}
	return c.readSecret(prompt)
}
