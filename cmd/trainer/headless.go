package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	appconfig "github.com/entrhq/trainer/pkg/config"
	"github.com/entrhq/trainer/pkg/executor/headless"
	"github.com/entrhq/trainer/pkg/identity"
)

// runHeadless generates one plan from a YAML request file
func runHeadless(ctx context.Context, config *Config, a *app) error {
	request, err := headless.LoadConfig(config.Request)
	if err != nil {
		return err
	}

	who, err := signIn(ctx, config, a.resolver)
	if err != nil {
		return err
	}

	executor := headless.NewExecutor(a.pipeline, a.log, request)
	summary, err := executor.Generate(ctx, who)
	if err != nil {
		return err
	}
	if !summary.Saved {
		return fmt.Errorf("workout generated but not saved: %s", summary.Error)
	}
	return nil
}

// runHistory prints the signed-in user's past plans
func runHistory(ctx context.Context, config *Config, a *app) error {
	who, err := signIn(ctx, config, a.resolver)
	if err != nil {
		return err
	}

	executor := headless.NewExecutor(a.pipeline, a.log, headless.DefaultConfig())
	_, err = executor.History(ctx, who, config.Detail)
	return err
}

// signIn resolves the -secret flag, or a prompted password, to an identity.
func signIn(ctx context.Context, config *Config, resolver identity.Resolver) (string, error) {
	secret := config.Secret
	if secret == "" {
		var err error
		secret, err = headless.ReadSecret("Enter your password: ", os.Stdin, os.Stderr)
		if err != nil {
			return "", err
		}
	}

	who, err := resolver.Resolve(ctx, secret)
	switch {
	case errors.Is(err, identity.ErrNoIdentities):
		return "", fmt.Errorf("no users are configured; run `trainer -add-user NAME` first")
	case err != nil:
		return "", fmt.Errorf("invalid password")
	}

	fmt.Fprintln(os.Stderr, identity.Welcome(who))
	return who, nil
}

func readNewPassword() (string, error) {
	secret, err := headless.ReadSecret("New password: ", os.Stdin, os.Stderr)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return secret, nil
}

// runHashPassword prints a hash for the identity section
func runHashPassword() error {
	secret, err := readNewPassword()
	if err != nil {
		return err
	}
	hash, err := identity.HashSecret(secret)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

// runAddUser stores a hash for name in the config file. Passwords select the
// user on sign-in, so one already used by another user is refused.
func runAddUser(name string) error {
	section := appconfig.GetIdentity()
	if section == nil {
		return fmt.Errorf("identity section is not registered")
	}

	secret, err := readNewPassword()
	if err != nil {
		return err
	}
	if owner, taken := identity.SecretOwner(section.GetUsers(), secret, name); taken {
		return fmt.Errorf("user %s already signs in with this password; choose a different one", owner)
	}
	hash, err := identity.HashSecret(secret)
	if err != nil {
		return err
	}
	section.SetUser(name, hash)
	if err := appconfig.Global().SaveAll(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User %s saved. Configured users: %s\n", name, strings.Join(section.UserNames(), ", "))
	return nil
}

// runIssueToken prints a signed token for name
func runIssueToken(name string, ttl time.Duration) error {
	section := appconfig.GetIdentity()
	if section == nil || section.GetJWTSecret() == "" {
		return fmt.Errorf("set jwt_secret in the identity section to issue tokens")
	}

	token, err := identity.IssueToken(name, []byte(section.GetJWTSecret()), ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
