package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/canvas-helper-api/internal/config"
	"github.com/noah-isme/canvas-helper-api/internal/middleware"
)

type issueOptions struct {
	profile string
	scopes  []string
	ttl     time.Duration
}

func newRootCommand(loadConfig func() (config.Config, error)) *cobra.Command {
	root := &cobra.Command{
		Use:           "token",
		Short:         "Manage profile tokens for the canvas helper API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIssueCommand(loadConfig))
	return root
}

func newIssueCommand(loadConfig func() (config.Config, error)) *cobra.Command {
	opts := issueOptions{}

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a profile token for the extension",
		Example: "  token issue --profile alice\n" +
			"  token issue --profile kiosk --scope assignments --ttl 24h",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			scopes, err := normalizeScopes(opts.scopes)
			if err != nil {
				return err
			}

			ttl := opts.ttl
			if ttl <= 0 {
				ttl = cfg.AuthTokenTTL
			}

			token, err := middleware.IssueProfileToken(cfg.AuthJWTSecret, opts.profile, scopes, ttl, time.Now())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.profile, "profile", "", "profile id the token is bound to")
	cmd.Flags().StringSliceVar(&opts.scopes, "scope", middleware.AllScopes, "scopes to grant")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func normalizeScopes(requested []string) ([]string, error) {
	known := make(map[string]struct{}, len(middleware.AllScopes))
	for _, scope := range middleware.AllScopes {
		known[scope] = struct{}{}
	}

	scopes := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, scope := range requested {
		scope = strings.ToLower(strings.TrimSpace(scope))
		if scope == "" {
			continue
		}
		if _, ok := known[scope]; !ok {
			return nil, fmt.Errorf("unknown scope %q (known: %s)", scope, strings.Join(middleware.AllScopes, ", "))
		}
		if _, dup := seen[scope]; dup {
			continue
		}
		seen[scope] = struct{}{}
		scopes = append(scopes, scope)
	}

	if len(scopes) == 0 {
		return nil, fmt.Errorf("at least one scope is required")
	}
	return scopes, nil
}
