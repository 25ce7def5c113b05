// Package cli implements the govkeeper-admin command line tool: config
// initialization, parameter and authority updates, and ledger funding for
// dev and test environments. Every command authenticates against the server
// as the config authority.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errUsage = errors.New("usage: govkeeper-admin [-s server] <init|params|authority|fund> [args]")

type App struct {
	baseURL string
	client  *http.Client
	in      *bufio.Reader
	out     io.Writer
}

func NewApp(baseURL string, client *http.Client, in io.Reader, out io.Writer) *App {
	if client == nil {
		client = http.DefaultClient
	}
	return &App{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run authenticates and dispatches one admin command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	token, err := a.login(ctx)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	switch args[0] {
	case "init":
		return a.initConfig(ctx, token, args[1:])
	case "params":
		return a.updateParams(ctx, token, args[1:])
	case "authority":
		return a.updateAuthority(ctx, token, args[1:])
	case "fund":
		return a.fund(ctx, token, args[1:])
	default:
		return errUsage
	}
}

// login prompts for the authority credentials and exchanges them for an
// access token.
func (a *App) login(ctx context.Context) (string, error) {
	fmt.Fprint(a.out, "Owner\n> ")
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	owner := strings.TrimSpace(line)

	fmt.Fprint(a.out, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err = a.call(ctx, http.MethodPost, "/api/login", "",
		map[string]string{"owner": owner, "password": string(pw)}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (a *App) initConfig(ctx context.Context, token string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	srmMint := fs.String("srm-mint", "", "SRM mint address")
	msrmMint := fs.String("msrm-mint", "", "MSRM mint address")
	claimDelay := fs.Int64("claim-delay", 0, "claim delay, seconds")
	redeemDelay := fs.Int64("redeem-delay", 0, "redeem delay, seconds")
	cliff := fs.Int64("cliff", 0, "cliff period, seconds")
	linear := fs.Int64("linear", 0, "linear vesting period, seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.call(ctx, http.MethodPost, "/api/config/init", token, map[string]any{
		"srm_mint":              *srmMint,
		"msrm_mint":             *msrmMint,
		"claim_delay":           *claimDelay,
		"redeem_delay":          *redeemDelay,
		"cliff_period":          *cliff,
		"linear_vesting_period": *linear,
	}, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "config initialized")
	return nil
}

func (a *App) updateParams(ctx context.Context, token string, args []string) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	claimDelay := fs.Int64("claim-delay", 0, "claim delay, seconds")
	redeemDelay := fs.Int64("redeem-delay", 0, "redeem delay, seconds")
	cliff := fs.Int64("cliff", 0, "cliff period, seconds")
	linear := fs.Int64("linear", 0, "linear vesting period, seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.call(ctx, http.MethodPatch, "/api/config/params", token, map[string]any{
		"claim_delay":           *claimDelay,
		"redeem_delay":          *redeemDelay,
		"cliff_period":          *cliff,
		"linear_vesting_period": *linear,
	}, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "parameters updated")
	return nil
}

func (a *App) updateAuthority(ctx context.Context, token string, args []string) error {
	fs := flag.NewFlagSet("authority", flag.ContinueOnError)
	newAuthority := fs.String("new", "", "new authority owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *newAuthority == "" {
		return errors.New("authority: -new is required")
	}

	err := a.call(ctx, http.MethodPatch, "/api/config/authority", token,
		map[string]string{"new_authority": *newAuthority}, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "authority updated")
	return nil
}

func (a *App) fund(ctx context.Context, token string, args []string) error {
	fs := flag.NewFlagSet("fund", flag.ContinueOnError)
	owner := fs.String("owner", "", "owner to credit")
	asset := fs.String("asset", "SRM", "asset (SRM or MSRM)")
	amount := fs.Uint64("amount", 0, "amount to credit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *owner == "" || *amount == 0 {
		return errors.New("fund: -owner and -amount are required")
	}

	err := a.call(ctx, http.MethodPost, "/api/config/fund", token, map[string]any{
		"owner":  *owner,
		"asset":  *asset,
		"amount": *amount,
	}, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "credited %d %s to %s\n", *amount, *asset, *owner)
	return nil
}

// call performs one JSON request against the server API. A non-2xx response
// is returned as an error carrying the server's error message.
func (a *App) call(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
