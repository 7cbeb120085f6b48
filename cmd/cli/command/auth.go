package command

import (
	"errors"
	"fmt"
	"time"

	"cinerate/cmd/cli/authentication"
	"cinerate/cmd/cli/command/client"
	"cinerate/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SignupRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := requestContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Signup(ctx, &req)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		fmt.Println("✓", resp.Message)
		fmt.Printf("UserID: %d\n", resp.UserID)
		return nil
	},
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SigninRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := requestContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Signin(ctx, &req)
		if err != nil {
			return fmt.Errorf("signin failed: %w", err)
		}

		creds := &authentication.StoredCredentials{
			Token:     resp.Token,
			UserID:    resp.UserID,
			Username:  resp.Username,
			ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
		}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not save session: %w", err)
		}

		fmt.Printf("✓ Signed in as %s (userId %d)\n", resp.Username, resp.UserID)
		return nil
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		fmt.Println("✓ Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check the stored session against the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := authentication.GetTokens(); errors.Is(err, authentication.ErrNotSignedIn) {
			fmt.Println("Not signed in.")
			return nil
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		resp, err := newClient().Authenticated(ctx)
		if err != nil {
			return fmt.Errorf("session check failed: %w", err)
		}
		if !resp.Authenticated {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("%s (userId %d)\n", resp.Username, resp.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd, signinCmd, signoutCmd, whoamiCmd)

	signupCmd.Flags().StringP("username", "u", "", "Display name")
	signupCmd.Flags().StringP("email", "e", "", "Email address")
	signupCmd.Flags().StringP("password", "p", "", "Password")
	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("password")

	signinCmd.Flags().StringP("email", "e", "", "Email address")
	signinCmd.Flags().StringP("password", "p", "", "Password")
	signinCmd.MarkFlagRequired("email")
	signinCmd.MarkFlagRequired("password")
}
