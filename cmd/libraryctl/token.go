package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"libraryapi/internal/platform/crypto"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for the admin routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			tok, err := crypto.GenerateToken(opts.cfg.AuthSecret, subject, role, ttl)
			if err != nil {
				if errors.Is(err, crypto.ErrEmptySecret) {
					return errors.New("AUTH_SECRET is not set")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually an operator id")
	cmd.Flags().StringVar(&role, "role", crypto.RoleAdmin, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
