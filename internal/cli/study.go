package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/flashdeck/internal/deck"
	"github.com/lazypower/flashdeck/internal/engine"
	"github.com/lazypower/flashdeck/internal/search"
	"github.com/lazypower/flashdeck/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagUser   string
	flagSet    string
	flagOffset string
	flagLimit  int
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a deck (.yaml, .jsonl, .csv, .xlsx) as a new set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deck.ParseFile(args[0])
		if err != nil {
			return err
		}

		db, _, err := openLocal()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		user, err := lookupUser(ctx, db, flagUser)
		if err != nil {
			return err
		}

		set, skipped, err := importDeck(ctx, db, user.ID, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s: %d cards", set.Title, set.ID, set.CardCount)
		if skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d skipped)", skipped)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

// importDeck creates a set owned by ownerID from d. Cards that fail
// validation are skipped and counted with the ones the parser dropped.
func importDeck(ctx context.Context, db *store.DB, ownerID int64, d *deck.Deck) (*store.Set, int, error) {
	in, err := engine.SetInput{Title: d.Title, Description: d.Description}.Validate()
	if err != nil {
		return nil, 0, err
	}

	set := &store.Set{OwnerID: ownerID, Title: in.Title, Description: in.Description}
	if err := db.CreateSet(ctx, set); err != nil {
		return nil, 0, err
	}

	skipped := d.Skipped
	for _, c := range d.Cards {
		card, err := engine.CardInput{Front: c.Front, Back: c.Back}.Validate()
		if err != nil {
			skipped++
			continue
		}
		if err := db.CreateCard(ctx, &store.Card{SetID: set.ID, Front: card.Front, Back: card.Back}); err != nil {
			return nil, 0, fmt.Errorf("import card %q: %w", card.Front, err)
		}
		set.CardCount++
	}
	return set, skipped, nil
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List cards due for study in a set",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSet == "" {
			return fmt.Errorf("--set is required")
		}
		offset, filter, err := engine.ParsePlanningOffset(flagOffset)
		if err != nil {
			return err
		}
		if !filter {
			offset = 0
		}

		db, eng, err := openLocal()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		user, err := lookupUser(ctx, db, flagUser)
		if err != nil {
			return err
		}

		due, err := eng.DueCards(ctx, user.ID, flagSet, offset)
		if err != nil {
			return err
		}
		printDue(cmd.OutOrStdout(), due, offset)
		return nil
	},
}

func printDue(w io.Writer, due []engine.CardStatus, offset float64) {
	if len(due) == 0 {
		fmt.Fprintln(w, "nothing due")
		return
	}
	if offset > 0 {
		fmt.Fprintf(w, "%d cards due within %g days:\n", len(due), offset)
	} else {
		fmt.Fprintf(w, "%d cards due:\n", len(due))
	}
	for _, st := range due {
		seen := "never studied"
		if st.LastReviewed != nil {
			seen = "reviewed " + humanize.Time(time.Unix(*st.LastReviewed, 0))
		}
		fmt.Fprintf(w, "  [%s] %s  (%d pts, %s)\n", st.Card.ID, st.Card.Front, st.Points, seen)
	}
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show a user's study streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, eng, err := openLocal()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		user, err := lookupUser(ctx, db, flagUser)
		if err != nil {
			return err
		}
		days, state, err := eng.Streak(ctx, user.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if days == 0 {
			fmt.Fprintf(out, "%s has no active streak\n", user.Username)
			return nil
		}
		fmt.Fprintf(out, "%s: %d day streak (started %s, last study %s)\n",
			user.Username, days,
			humanize.Time(time.Unix(*state.StartDate, 0)),
			humanize.Time(time.Unix(lastStudy(state), 0)))
		return nil
	},
}

func lastStudy(s engine.StreakState) int64 {
	if s.LastUpdated != nil {
		return *s.LastUpdated
	}
	return *s.StartDate
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search set titles",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openLocal()
		if err != nil {
			return err
		}
		defer db.Close()

		sets, err := db.ListAllSets(context.Background())
		if err != nil {
			return err
		}
		var q string
		if len(args) == 1 {
			q = args[0]
		}

		results := search.Sets(sets, q, flagLimit)
		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "no matching sets")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (%s cards)\n", r.Set.ID, r.Set.Title, humanize.Comma(int64(r.Set.CardCount)))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{importCmd, dueCmd, streakCmd} {
		c.Flags().StringVar(&flagUser, "user", "", "username")
	}
	dueCmd.Flags().StringVar(&flagSet, "set", "", "set id")
	dueCmd.Flags().StringVar(&flagOffset, "offset", "true", "days to look ahead, or true for now")
	searchCmd.Flags().IntVar(&flagLimit, "limit", search.DefaultLimit, "maximum results")
}
