package main

import (
	"fmt"
	"slices"

	"github.com/jacobsenj/canto-fal/internal/jwt"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenScopes  []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token for the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		svc, err := jwt.NewJWTService(a.cfg.API.JWTSecret, a.cfg.API.JWTIssuer, a.cfg.API.JWTLifetime)
		if err != nil {
			return err
		}
		for _, scope := range tokenScopes {
			if !slices.Contains(jwt.AllScopes(), scope) {
				return fmt.Errorf("unknown scope %q", scope)
			}
		}

		token, err := svc.GenerateToken(tokenSubject, tokenScopes)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "cantofal", "subject the token is issued to")
	tokenIssueCmd.Flags().StringSliceVar(&tokenScopes, "scope", jwt.AllScopes(), "granted scopes")
	tokenCmd.AddCommand(tokenIssueCmd)
}
