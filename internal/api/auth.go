package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rcliao/sheria/internal/model"
)

// AuthResponse is the identity and token pair returned by login, register
// and the profile endpoints.
type AuthResponse struct {
	Refresh    string `json:"refresh"`
	Access     string `json:"access"`
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	IsVerified bool   `json:"is_verified"`
	UserRole   string `json:"user_role"`
}

// User maps the response onto a model.User created at now.
func (r *AuthResponse) User(now time.Time) model.User {
	return model.User{
		ID:         r.ID,
		Email:      r.Email,
		Name:       r.FirstName + " " + r.LastName,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		IsVerified: r.IsVerified,
		Role:       r.UserRole,
		CreatedAt:  &now,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ProfileUpdate is a partial profile. Nil fields are not sent.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Login exchanges credentials for an identity and token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login/", loginRequest{Email: email, Password: password}, &out, "Login failed")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its identity and token pair.
func (c *Client) Register(ctx context.Context, firstName, lastName, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register/", registerRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
	}, &out, "Registration failed")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil, "Logout failed")
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/refresh/", map[string]string{"refresh": refreshToken}, &out, "Token refresh failed")
	if err != nil {
		return "", err
	}
	return out.Access, nil
}

// Me returns the identity behind the current access token.
func (c *Client) Me(ctx context.Context) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me/", nil, &out, "Failed to get user information"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPatch, "/auth/profile/", p, &out, "Profile update failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the current user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/auth/change-password/", map[string]string{
		"current_password": current,
		"new_password":     next,
	}, nil, "Password change failed")
}

// ForgotPassword asks the server to email a reset token.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password/", map[string]string{"email": email}, nil, "Password reset request failed")
}

// ResetPassword sets a new password using an emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password/", map[string]string{
		"token":    token,
		"password": password,
	}, nil, "Password reset failed")
}
