// sessionctl is the command-line consumer of the session manager: it logs in
// against a running issuer, persists the token pair in a file-backed session
// store, and reports the resulting auth state.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hrmskit/sessiond/internal/guard"
	"github.com/hrmskit/sessiond/internal/session"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessionctl",
		Short: "Client for the HRMS mock session issuer",
	}

	rootCmd.PersistentFlags().String("server_url", "http://localhost:8080", "Base URL of the session issuer")
	rootCmd.PersistentFlags().String("session_file", defaultSessionFile(), "Path of the persisted session file")
	rootCmd.PersistentFlags().Duration("request_timeout", session.DefaultRequestTimeout, "Timeout for issuer calls")

	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server_url"))
	_ = viper.BindPFlag("session_file", rootCmd.PersistentFlags().Lookup("session_file"))
	_ = viper.BindPFlag("request_timeout", rootCmd.PersistentFlags().Lookup("request_timeout"))

	viper.SetEnvPrefix("SESSIONCTL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newLoginCommand(), newStatusCommand(), newWhoAmICommand(), newLogoutCommand())
	return rootCmd
}

func defaultSessionFile() string {
	homeDirectory, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return filepath.Join(".", ".hrms-session.json")
	}
	return filepath.Join(homeDirectory, ".hrms", "session.json")
}

func buildManager(logger *zap.Logger) (*session.Manager, *session.Store, *session.HTTPIssuerClient) {
	storage := session.NewFileKeyValue(viper.GetString("session_file"))
	store := session.NewStore(storage, logger)
	client := session.NewHTTPIssuerClient(viper.GetString("server_url"), viper.GetDuration("request_timeout"))
	return session.NewManager(client, store, logger), store, client
}

func buildLogger() (*zap.Logger, error) {
	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return configuration.Build()
}

func newLoginCommand() *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(command *cobra.Command, arguments []string) error {
			email, _ := command.Flags().GetString("email")
			password, _ := command.Flags().GetString("password")

			logger, loggerErr := buildLogger()
			if loggerErr != nil {
				return loggerErr
			}
			defer func() { _ = logger.Sync() }()

			manager, _, _ := buildManager(logger)
			landingPath, loginErr := manager.Login(command.Context(), session.Credentials{Email: email, Password: password})
			if loginErr != nil {
				return loginErr
			}

			state := manager.Snapshot()
			fmt.Fprintf(command.OutOrStdout(), "logged in as %s (%s)\n", state.User.Email, state.User.Role)
			fmt.Fprintf(command.OutOrStdout(), "landing: %s\n", landingPath)
			return nil
		},
	}
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	return loginCmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted session state and its landing decision",
		RunE: func(command *cobra.Command, arguments []string) error {
			logger, loggerErr := buildLogger()
			if loggerErr != nil {
				return loggerErr
			}
			defer func() { _ = logger.Sync() }()

			manager, _, _ := buildManager(logger)
			state := manager.Snapshot()
			fmt.Fprintf(command.OutOrStdout(), "status: %s\n", state.Status)
			if state.User != nil {
				fmt.Fprintf(command.OutOrStdout(), "user: %s (%s)\n", state.User.Email, state.User.Role)
			}
			if decision := guard.RoleLanding(state); decision.Kind == guard.DecisionRedirect {
				fmt.Fprintf(command.OutOrStdout(), "landing: %s\n", decision.Target)
			}
			return nil
		},
	}
}

func newWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Fetch the profile behind the persisted access token",
		RunE: func(command *cobra.Command, arguments []string) error {
			logger, loggerErr := buildLogger()
			if loggerErr != nil {
				return loggerErr
			}
			defer func() { _ = logger.Sync() }()

			manager, store, client := buildManager(logger)
			state := manager.Snapshot()
			if state.Status != session.StatusAuthenticated {
				return fmt.Errorf("no active session; run login first")
			}

			profile, whoErr := client.WhoAmI(command.Context(), store.Token())
			if whoErr != nil {
				return whoErr
			}
			fmt.Fprintf(command.OutOrStdout(), "%s (%s) role=%s\n", profile.Name, profile.Email, profile.Role)
			for _, permission := range profile.Permissions {
				fmt.Fprintf(command.OutOrStdout(), "  permission: %s\n", permission)
			}
			return nil
		},
	}
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session with the issuer and purge it locally",
		RunE: func(command *cobra.Command, arguments []string) error {
			logger, loggerErr := buildLogger()
			if loggerErr != nil {
				return loggerErr
			}
			defer func() { _ = logger.Sync() }()

			manager, _, _ := buildManager(logger)
			loginPath := manager.Logout(command.Context())
			fmt.Fprintf(command.OutOrStdout(), "logged out; next: %s\n", loginPath)
			return nil
		},
	}
}
