package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"parent-care-assistant/pkg/gcalendar"
)

func newCalendarAuthCmd(root *rootOptions) *cobra.Command {
	var credsPath, tokenPath string

	cmd := &cobra.Command{
		Use:   "calendar-auth",
		Short: "Issue a Google Calendar token for desktop-app credentials",
		Long: `Calendar-auth prints the Google consent URL, reads the authorization code
from stdin and stores the token where google_calendar.token_path points.
Run it once before enabling calendar sync with desktop-app credentials.
Service-account credentials do not need it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if credsPath == "" || tokenPath == "" {
				cfg, _, err := root.load()
				if err != nil {
					return err
				}
				if credsPath == "" {
					credsPath = cfg.GoogleCalendar.CredentialsPath
				}
				if tokenPath == "" {
					tokenPath = cfg.GoogleCalendar.TokenPath
				}
			}
			if credsPath == "" {
				return errors.New("no credentials file: pass --credentials or set google_calendar.credentials_path")
			}

			data, err := os.ReadFile(credsPath)
			if err != nil {
				return fmt.Errorf("read credentials: %w", err)
			}
			oauthCfg, err := gcalendar.InstalledAppConfig(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL, sign in and approve calendar access:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, gcalendar.AuthCodeURL(oauthCfg))
			fmt.Fprintln(out)
			fmt.Fprint(out, "Authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			code = strings.TrimSpace(code)
			if code == "" {
				if err != nil {
					return fmt.Errorf("read authorization code: %w", err)
				}
				return errors.New("empty authorization code")
			}

			if tokenPath == "" {
				tokenPath = gcalendar.DefaultTokenPath
			}
			if err := gcalendar.ExchangeAndSave(cmd.Context(), oauthCfg, code, tokenPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "\ntoken saved to %s\n", tokenPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&credsPath, "credentials", "", "OAuth desktop-app credentials JSON")
	cmd.Flags().StringVar(&tokenPath, "token", "", "where to store the token (default: token.json)")
	return cmd
}
