package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/wedding-site/internal/config"
	"github.com/jrsteele09/wedding-site/token"
	"github.com/spf13/cobra"
)

func newTokenCmd(envFile *string) *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Issue or check admin tokens offline"}
	tokenCmd.AddCommand(newTokenIssueCmd(envFile))
	tokenCmd.AddCommand(newTokenVerifyCmd(envFile))
	return tokenCmd
}

func signerFromConfig(envFile string, ttl time.Duration) (*token.HMACSigner, error) {
	c, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if c.GetAuthSecret() == "" {
		return nil, errors.New("AUTH_SECRET is not set")
	}
	if ttl <= 0 {
		ttl = c.GetTokenTTL()
	}
	return token.NewHMACSigner(c.GetAuthSecret(), token.WithTTL(ttl)), nil
}

func newTokenIssueCmd(envFile *string) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Print a new admin token signed with AUTH_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := signerFromConfig(*envFile, ttl)
			if err != nil {
				return err
			}
			var claims token.Claims
			if subject != "" {
				claims = token.Claims{"sub": subject}
			}
			tok, err := signer.Issue(claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Optional sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Lifetime (default AUTH_TOKEN_TTL)")
	return cmd
}

func newTokenVerifyCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token against AUTH_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := signerFromConfig(*envFile, 0)
			if err != nil {
				return err
			}
			claims, ok := signer.Claims(args[0])
			if !ok {
				return errors.New("token is invalid or expired")
			}
			exp, _ := claims.GetExpirationTime()
			fmt.Fprintf(cmd.OutOrStdout(), "valid until %s\n", exp.UTC().Format(time.RFC3339))
			return nil
		},
	}
}
