package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/restgen/internal/web/auth"
)

// NewTokenCommand creates the token command
func NewTokenCommand(flags *globalFlags) *cobra.Command {
	var claims []string
	var roles []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a login token for local testing",
		Long: `Sign a login token with auth.webtoken_key. Claims are given as
key=value pairs; roles end up in the "roles" claim read by role:<name> access.

Examples:
  restgen token --claim email=a@b.de
  restgen token --role admin --ttl 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.WebTokenKey == "" {
				return errors.New("auth.webtoken_key is not configured")
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.TokenTTL
			}

			c, err := parseClaims(claims)
			if err != nil {
				return err
			}
			if len(roles) > 0 {
				c["roles"] = roles
			}

			token, err := auth.NewTokenService(cfg.Auth.WebTokenKey, ttl).GenerateToken(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&claims, "claim", nil, "claim as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role granted by the token (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl, 0 never expires)")
	return cmd
}

func parseClaims(pairs []string) (auth.Claims, error) {
	claims := auth.Claims{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid claim %q, expected key=value", pair)
		}
		if key == "action" {
			return nil, errors.New("the action claim is reserved")
		}
		claims[key] = value
	}
	return claims, nil
}
