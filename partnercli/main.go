// Package main is the entry point for the bazaar partner CLI. It logs a
// partner account into the panel, keeps the session in a local state file,
// and runs authenticated commands behind the session gate.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bazaarpanel/bazaar/partnercli/api"
	"github.com/bazaarpanel/bazaar/partnercli/gate"
	"github.com/bazaarpanel/bazaar/partnercli/state"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	serverURL string
	statePath string
)

func newStore() (*state.Store, error) {
	store := state.NewStore(statePath)
	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}
	return store, nil
}

// openGate verifies the stored session and returns the gate, or an error
// when the user has to log in first.
func openGate(store *state.Store) (*gate.Gate, error) {
	client := api.NewClient(serverURL, store.Token())
	g := gate.New(store, client, func() {
		fmt.Fprintln(os.Stderr, "Session expired or missing, run `partnercli login` first.")
	})

	s, err := g.Check()
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if s != gate.StateAuthenticated {
		return nil, fmt.Errorf("not logged in")
	}
	return g, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func runLogin(email, twoFactorCode string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	if email == "" {
		fmt.Fprint(os.Stderr, "Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	client := api.NewClient(serverURL, "")
	token, identity, err := client.Login(email, password, twoFactorCode)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := store.Login(token, identity); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", identity.Email, identity.Role)
	return nil
}

func runLogout() error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami() error {
	store, err := newStore()
	if err != nil {
		return err
	}
	g, err := openGate(store)
	if err != nil {
		return err
	}
	identity := g.Identity()
	fmt.Printf("id:    %d\nemail: %s\nname:  %s\nrole:  %s\n",
		identity.Id, identity.Email, identity.Name, identity.Role)
	return nil
}

func runDashboard() error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if _, err := openGate(store); err != nil {
		return err
	}

	client := api.NewClient(serverURL, store.Token())
	body, err := client.Dashboard()
	if err != nil {
		return fmt.Errorf("fetch dashboard: %w", err)
	}
	fmt.Println(string(body))
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "partnercli",
		Short:         "Partner CLI for the bazaar panel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "panel base URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", state.DefaultPath(), "session state file path")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			twoFactorCode, _ := cmd.Flags().GetString("code")
			return runLogin(email, twoFactorCode)
		},
	}
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("code", "", "two-factor code, when enabled")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami()
		},
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the referral dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, dashboardCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
