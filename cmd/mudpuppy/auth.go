package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amaranth494/MUDPuppy/internal/client"
)

func newLoginCmd(opts *rootOpts) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if email == "" {
				if email, err = readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			api := client.New(cfg.Server.URL)
			if err := api.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			if err := api.SaveCookies(sessionFilePath()); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Printf("Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	return cmd
}

func newRegisterCmd(opts *rootOpts) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with a mailed one-time code",
		Long:  "Create an account. Run 'mudpuppy send-otp' first to receive the code by email.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if email == "" {
				if email, err = readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}
			otp, err := readLine("One-time code: ")
			if err != nil {
				return err
			}

			api := client.New(cfg.Server.URL)
			if err := api.Register(cmd.Context(), email, password, otp); err != nil {
				return err
			}
			fmt.Println("Account created. Run 'mudpuppy login' to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	return cmd
}

func newSendOTPCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "send-otp <email>",
		Short: "Mail a one-time registration code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			api := client.New(cfg.Server.URL)
			if err := api.SendOTP(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Code sent to %s\n", args[0])
			return nil
		},
	}
}

func newLogoutCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			api, err := newAPIClient(cfg)
			if err != nil {
				return err
			}
			if err := api.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := os.Remove(sessionFilePath()); err != nil && !os.IsNotExist(err) {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newStatusCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the gateway's view of your session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			api, err := newAPIClient(cfg)
			if err != nil {
				return err
			}
			status, err := api.SessionStatus(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("State: %s\n", status.State)
			if status.Host != "" {
				fmt.Printf("Server: %s:%d\n", status.Host, status.Port)
			}
			if status.ConnectedAt != nil {
				fmt.Printf("Connected at: %s\n", *status.ConnectedAt)
			}
			if status.LastError != "" {
				fmt.Printf("Last error: %s\n", status.LastError)
			}
			if status.DisconnectReason != "" {
				fmt.Printf("Disconnect reason: %s\n", status.DisconnectReason)
			}
			return nil
		},
	}
}

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(prompt)
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
