package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "issues an operator token for the refresh endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.TokensEnabled() {
				return errors.New("refusing to sign with the built-in jwt secret, set --jwt-secret or --allow-default-secret")
			}
			token, err := auth.Issue(a.cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
