package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/api"
	"github.com/rcliao/sheria/internal/auth"
	"github.com/rcliao/sheria/internal/log"
	"github.com/rcliao/sheria/internal/model"
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long:  "Sign in with email and password. The password is prompted for, or read from stdin with --password-stdin.",
		Run:   runLogin,
	}
	loginCmd.Flags().StringP("email", "e", "", "Email (required)")
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	loginCmd.MarkFlagRequired("email")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Run:   runRegister,
	}
	registerCmd.Flags().String("name", "", "Full name (required)")
	registerCmd.Flags().StringP("email", "e", "", "Email (required)")
	registerCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Run:   runLogout,
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Run:   runWhoami,
	}
	whoamiCmd.Flags().Bool("remote", false, "Ask the server instead of reading local state")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Token management",
	}
	tokenCmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Run:   runTokenRefresh,
	})

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile management",
	}
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		Run:   runProfileUpdate,
	}
	updateCmd.Flags().String("first-name", "", "New first name")
	updateCmd.Flags().String("last-name", "", "New last name")
	updateCmd.Flags().String("email", "", "New email")
	profileCmd.AddCommand(updateCmd)

	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Password management",
	}
	passwordCmd.AddCommand(&cobra.Command{
		Use:   "change",
		Short: "Change the password of the signed-in user",
		Run:   runPasswordChange,
	})
	forgotCmd := &cobra.Command{
		Use:   "forgot",
		Short: "Request a password reset email",
		Run:   runPasswordForgot,
	}
	forgotCmd.Flags().StringP("email", "e", "", "Email (required)")
	forgotCmd.MarkFlagRequired("email")
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password using a reset token",
		Run:   runPasswordReset,
	}
	resetCmd.Flags().String("token", "", "Reset token from the email (required)")
	resetCmd.MarkFlagRequired("token")
	passwordCmd.AddCommand(forgotCmd, resetCmd)

	RootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, tokenCmd, profileCmd, passwordCmd)
}

func passwordFrom(cmd *cobra.Command, prompt string) string {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	if fromStdin {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		pw := strings.TrimRight(string(b), "\r\n")
		if pw == "" {
			exitErr("read password", fmt.Errorf("password is required"))
		}
		return pw
	}
	return requireSecret(prompt)
}

func runLogin(cmd *cobra.Command, args []string) {
	email, _ := cmd.Flags().GetString("email")
	password := passwordFrom(cmd, "Password: ")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if err := a.auth.Login(cmd.Context(), strings.TrimSpace(email), password); err != nil {
		exitErr("login", err)
	}
	st := a.auth.Snapshot()
	emit(a, st.User, func(w io.Writer) { renderAuth(w, st) })
}

func runRegister(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password := passwordFrom(cmd, "Choose a password: ")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if err := a.auth.Register(cmd.Context(), name, strings.TrimSpace(email), password); err != nil {
		exitErr("register", err)
	}
	st := a.auth.Snapshot()
	emit(a, st.User, func(w io.Writer) { renderAuth(w, st) })
}

func runLogout(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	// Server-side invalidation is best effort; local state is cleared
	// regardless.
	if a.auth.AccessToken() != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		if err := a.client.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("logout request failed")
		}
		cancel()
	}
	a.auth.Logout()

	emitOK(a, "signed out")
}

// identity is what whoami prints. Tokens stay out of stdout.
type identity struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

func identityOf(st auth.State) identity {
	return identity{User: st.User, IsAuthenticated: st.IsAuthenticated}
}

func runWhoami(cmd *cobra.Command, args []string) {
	remote, _ := cmd.Flags().GetBool("remote")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if remote {
		resp, err := a.client.Me(cmd.Context())
		if err != nil {
			exitErr("whoami", err)
		}
		user := resp.User(time.Now())
		a.auth.UpdateUser(model.UserPatch{
			Email:      &user.Email,
			FirstName:  &user.FirstName,
			LastName:   &user.LastName,
			IsVerified: &user.IsVerified,
			Role:       &user.Role,
		})
	}

	st := a.auth.Snapshot()
	emit(a, identityOf(st), func(w io.Writer) { renderAuth(w, st) })
}

func runTokenRefresh(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	refresh := a.auth.RefreshToken()
	if refresh == "" {
		exitErr("token refresh", fmt.Errorf("not signed in"))
	}
	access, err := a.client.Refresh(cmd.Context(), refresh)
	if err != nil {
		exitErr("token refresh", err)
	}
	a.auth.SetAccessToken(access)

	emitOK(a, "access token refreshed")
}

func runProfileUpdate(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	var update api.ProfileUpdate
	if cmd.Flags().Changed("first-name") {
		s, _ := cmd.Flags().GetString("first-name")
		update.FirstName = &s
	}
	if cmd.Flags().Changed("last-name") {
		s, _ := cmd.Flags().GetString("last-name")
		update.LastName = &s
	}
	if cmd.Flags().Changed("email") {
		s, _ := cmd.Flags().GetString("email")
		s = strings.TrimSpace(s)
		update.Email = &s
	}
	if update.FirstName == nil && update.LastName == nil && update.Email == nil {
		exitErr("profile update", fmt.Errorf("nothing to update"))
	}

	resp, err := a.client.UpdateProfile(cmd.Context(), update)
	if err != nil {
		exitErr("profile update", err)
	}
	a.auth.UpdateUser(model.UserPatch{
		FirstName: &resp.FirstName,
		LastName:  &resp.LastName,
		Email:     &resp.Email,
	})

	st := a.auth.Snapshot()
	emit(a, st.User, func(w io.Writer) { renderAuth(w, st) })
}

func runPasswordChange(cmd *cobra.Command, args []string) {
	current := requireSecret("Current password: ")
	next := requireSecret("New password: ")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if err := a.client.ChangePassword(cmd.Context(), current, next); err != nil {
		exitErr("password change", err)
	}
	emitOK(a, "password changed")
}

func runPasswordForgot(cmd *cobra.Command, args []string) {
	email, _ := cmd.Flags().GetString("email")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if err := a.client.ForgotPassword(cmd.Context(), strings.TrimSpace(email)); err != nil {
		exitErr("password forgot", err)
	}
	res := struct {
		OK    bool   `json:"ok"`
		Email string `json:"email"`
	}{OK: true, Email: email}
	emit(a, res, func(w io.Writer) { fmt.Fprintf(w, "reset instructions sent to %s\n", email) })
}

func runPasswordReset(cmd *cobra.Command, args []string) {
	token, _ := cmd.Flags().GetString("token")
	password := requireSecret("New password: ")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if err := a.client.ResetPassword(cmd.Context(), token, password); err != nil {
		exitErr("password reset", err)
	}
	emitOK(a, "password reset")
}
