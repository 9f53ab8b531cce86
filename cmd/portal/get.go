package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jrsteele09/go-job-portal/internal/config"
	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/spf13/cobra"
)

// getCmd calls any backend REST path with the session's bearer token
func getCmd(c config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "GET a backend path with the session's credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			target := ps.api.BaseURL().JoinPath(strings.TrimPrefix(args[0], "/"))
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target.String(), nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := ps.manager.HTTPClient(cmd.Context()).Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				// let the manager decide whether the session is gone
				_ = ps.manager.EnsureCurrentUser(cmd.Context(), true)
				return &perrors.APIError{Status: resp.StatusCode}
			}
			if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			fmt.Println()
			return nil
		},
	}
}
