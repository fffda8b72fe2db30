package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// authCommand returns the 'auth' subcommand for managing the Strava link.
func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the linked Strava account",
		Commands: []*cli.Command{
			authLoginCommand(),
			authLogoutCommand(),
		},
	}
}

func authLoginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Authorize hastrava with Strava and save the tokens",
		Action: authLoginAction,
	}
}

func authLogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the stored Strava tokens",
		Action: authLogoutAction,
	}
}

// authLoginAction runs the authorization code flow in the terminal. The user
// pastes either the code or the whole redirect URL.
func authLoginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	state := uuid.New().String()

	fmt.Println("=== Strava Login ===")
	fmt.Println()
	fmt.Printf("1. Visit this URL in your browser:\n   %s\n\n", a.tokens.AuthCodeURL(state))
	fmt.Println("2. Authorize the application")
	fmt.Println("3. Paste the URL you were redirected to, or just its code parameter")

	input, err := readSecureInput(ctx, "\nEnter authorization code: ")
	if err != nil {
		return err
	}

	code, err := parseAuthorizationCode(input, state)
	if err != nil {
		return err
	}

	if err := a.tokens.Exchange(ctx, code); err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	status, err := a.tokens.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("=== Login Successful ===")
	fmt.Printf("Linked Strava athlete %d, tokens saved to %s storage\n", status.AthleteID, cfg.TokenStorage)

	return nil
}

func authLogoutAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := a.tokens.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Logout Successful ===")
	fmt.Println("Credentials cleared from configured storage")

	return nil
}

// parseAuthorizationCode extracts the code from a pasted redirect URL or
// returns the trimmed input as-is. A pasted URL must carry the expected state.
func parseAuthorizationCode(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("authorization code cannot be empty")
	}

	if !strings.Contains(input, "code=") && !strings.Contains(input, "error=") {
		return input, nil
	}

	rawQuery := input
	if u, err := url.Parse(input); err == nil && u.RawQuery != "" {
		rawQuery = u.RawQuery
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("parsing redirect URL: %w", err)
	}

	if denied := q.Get("error"); denied != "" {
		return "", fmt.Errorf("authorization denied: %s", denied)
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", errors.New("state mismatch, start the login again")
	}

	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect URL has no code parameter")
	}
	return code, nil
}

// readSecureInput reads user input with hidden display and context cancellation support.
// term.ReadPassword has no context support, so it runs in a goroutine.
func readSecureInput(ctx context.Context, prompt string) (string, error) {
	fmt.Print(prompt)
	defer fmt.Println()

	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		inputBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		resultCh <- result{value: string(inputBytes), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return res.value, nil
	}
}
