// Package main is the entry point for the MUDPuppy terminal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/amaranth494/MUDPuppy/internal/app"
	"github.com/amaranth494/MUDPuppy/internal/client"
	"github.com/amaranth494/MUDPuppy/internal/config"
	"github.com/amaranth494/MUDPuppy/internal/session"
)

// Version is set via ldflags during release builds.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			fmt.Fprintln(os.Stderr, "Not logged in. Run 'mudpuppy login' first.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// rootOpts holds the flags shared by every subcommand.
type rootOpts struct {
	serverURL  string
	configPath string
}

// loadConfig reads the config file and folds the --server flag over it.
func (o *rootOpts) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.serverURL != "" {
		cfg.Server.URL = o.serverURL
	}
	return cfg, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "mudpuppy.yaml"
	}
	return filepath.Join(dir, "mudpuppy", "config.yaml")
}

func sessionFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "mudpuppy-session.json"
	}
	return filepath.Join(dir, "mudpuppy", "session.json")
}

// newAPIClient builds a REST client with any saved session cookie loaded.
func newAPIClient(cfg *config.Config) (*client.Client, error) {
	api := client.New(cfg.Server.URL)
	if err := api.LoadCookies(sessionFilePath()); err != nil {
		return nil, err
	}
	return api, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	rootCmd := &cobra.Command{
		Use:           "mudpuppy",
		Short:         "Terminal client for the MUDPuppy gateway",
		Long:          "MUDPuppy connects your terminal to MUD servers through the MUDPuppy gateway.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "gateway base URL (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the config file")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newSendOTPCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
	)

	return rootCmd
}

// runTUI wires the coordinator to the Bubble Tea program and runs it until
// the user quits.
func runTUI(ctx context.Context, opts *rootOpts) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	api.SetTimeout(cfg.Server.DialTimeout.Std())
	if _, err := api.Me(ctx); err != nil {
		return err
	}

	co := session.New(api, func() session.Transport {
		st := client.NewStream(cfg.Server.URL, api.Jar())
		st.SetTimeouts(cfg.Server.DialTimeout.Std(), cfg.Server.WriteTimeout.Std())
		return st
	})
	lock := &session.InputLock{}

	if os.Getenv("MUDPUPPY_DEBUG") != "" {
		f, err := tea.LogToFile("mudpuppy-debug.log", "debug")
		if err == nil {
			defer f.Close()
		}
	}

	p := tea.NewProgram(app.New(co, lock, cfg.Session.DefaultPort), tea.WithAltScreen())

	// Server output and state changes arrive on the coordinator's
	// goroutines; p.Send marshals them onto the UI loop.
	co.SetSink(func(data string) {
		p.Send(app.OutputMsg{Data: data})
	})
	co.SetOnChange(func(snap session.Snapshot) {
		p.Send(app.SnapshotMsg{Snapshot: snap})
	})

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go co.RunPoller(pollCtx, cfg.Session.PollInterval.Std())

	if _, err := p.Run(); err != nil {
		return err
	}

	// Best effort: tell the gateway we are going away if a session is up.
	if co.State().State == client.StateConnected {
		co.Disconnect(context.Background(), client.ReasonUser)
	}
	return nil
}
