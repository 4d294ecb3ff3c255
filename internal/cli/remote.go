package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/flashdeck/internal/client"
	"github.com/spf13/cobra"
)

var (
	flagURL      string
	flagPassword string
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running flashdeck server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewClient(flagURL)
		h, err := c.Health()
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		started := time.Now().Add(-time.Duration(h.Uptime * float64(time.Second)))
		fmt.Fprintf(cmd.OutOrStdout(), "%s, version %s, up since %s, db ok: %v\n",
			h.Status, h.Version, humanize.Time(started), h.DB)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a user's dashboard from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagUser == "" {
			return fmt.Errorf("--user is required")
		}
		password := flagPassword
		if password == "" {
			password = os.Getenv("FLASHDECK_PASSWORD")
		}

		c := client.NewClient(flagURL)
		if err := c.Login(flagUser, password); err != nil {
			return err
		}
		sum, err := c.Summary()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "streak: %d days, %d cards due\n", sum.Streak.Days, sum.DueTotal)
		for _, s := range sum.Sets {
			fmt.Fprintf(out, "  %-30s %3d due  %3d new  avg %.1f pts\n", s.Title, s.DueCount, s.Unstudied, s.MeanPoints)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{healthCmd, summaryCmd} {
		c.Flags().StringVar(&flagURL, "url", "", "server URL (default $FLASHDECK_URL or http://127.0.0.1:37780)")
	}
	summaryCmd.Flags().StringVar(&flagUser, "user", "", "username")
	summaryCmd.Flags().StringVar(&flagPassword, "password", "", "password (default $FLASHDECK_PASSWORD)")
}
