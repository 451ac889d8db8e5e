package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KUKARAF/ordning/internal/auth"
)

// authCmd groups the account session commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the local account session",
	Long: `Manage the local account session used for authenticated API access.

Sign-in mints a signed access token for the configured user and persists
it in the ticket database. The serve command rejects mutating requests
without a valid token when a signing key is configured.

Examples:
  ordning auth signin --user-id max --email max@example.com
  ordning auth status
  ordning auth signout`,
}

var authSignInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and persist an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := signingSecret(cmd)
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetString("user-id")
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		user := auth.User{ID: userID, Email: email, DisplayName: name}

		cfg := GetConfig()
		provider := auth.NewLocalProviderWith(user, secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		controller := auth.NewStateController(provider)

		cancel := controller.Subscribe(func(snap auth.Snapshot) {
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", snap.State)
		})
		defer cancel()

		result := controller.SignIn(cmd.Context())
		if !result.Success {
			return fmt.Errorf("sign-in failed: %s", result.Error)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		token := result.Session.Token
		if err := st.SaveToken(&auth.TokenRecord{
			UserID:      user.ID,
			AccessToken: token.AccessToken,
			TokenType:   token.TokenType,
			ExpiresAt:   token.ExpiresAt,
		}); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s, token expires %s\n",
			user.ID, token.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		rec, err := st.LoadToken()
		if err != nil {
			return fmt.Errorf("failed to load token: %w", err)
		}
		if rec == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
			return nil
		}
		if !time.Now().Before(rec.ExpiresAt) {
			fmt.Fprintf(cmd.OutOrStdout(), "session for %s expired at %s\n",
				rec.UserID, rec.ExpiresAt.Format(time.RFC3339))
			return nil
		}

		// With a signing key available, verify the stored token as well.
		if secret, err := signingSecret(cmd); err == nil {
			subject, err := auth.ValidateAccessToken(rec.AccessToken, secret)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "stored token is invalid: %v\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s, token expires %s\n",
				subject, rec.ExpiresAt.Format(time.RFC3339))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s, token expires %s\n",
			rec.UserID, rec.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var authSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and clear persisted tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.ClearTokens(); err != nil {
			return fmt.Errorf("failed to clear tokens: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

// signingSecret resolves the token signing key, letting the --signing-key
// flag win over the configuration file.
func signingSecret(cmd *cobra.Command) ([]byte, error) {
	if key, _ := cmd.Flags().GetString("signing-key"); key != "" {
		return []byte(key), nil
	}
	if key := GetConfig().Auth.SigningKey; key != "" {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("no signing key configured (set auth.signing_key or --signing-key)")
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSignInCmd, authStatusCmd, authSignOutCmd)

	authCmd.PersistentFlags().String("signing-key", "", "token signing key (overrides auth.signing_key)")

	authSignInCmd.Flags().String("user-id", "local", "account user ID")
	authSignInCmd.Flags().String("email", "", "account email address")
	authSignInCmd.Flags().String("name", "", "account display name")
}
