package store

import (
	"context"
	"errors"
	"testing"
)

func TestUpdateProgress(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	user, set, cards := seed(t, db, 2)

	p, err := db.GetProgress(ctx, user.ID, cards[0].ID)
	if err != nil || p != nil {
		t.Fatalf("GetProgress before study = %v, %v; want nil, nil", p, err)
	}

	var sawNil bool
	saved, err := db.UpdateProgress(ctx, user.ID, cards[0].ID, func(cur *Progress) Progress {
		sawNil = cur == nil
		return Progress{Points: 1, LastReviewed: 100}
	})
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if !sawNil {
		t.Error("first update should see a nil row")
	}
	if saved.OwnerID != user.ID || saved.CardID != cards[0].ID {
		t.Errorf("saved keys = %d/%s", saved.OwnerID, saved.CardID)
	}

	saved, err = db.UpdateProgress(ctx, user.ID, cards[0].ID, func(cur *Progress) Progress {
		return Progress{Points: cur.Points + 1, LastReviewed: 200}
	})
	if err != nil {
		t.Fatalf("UpdateProgress again: %v", err)
	}
	if saved.Points != 2 {
		t.Errorf("Points = %d, want 2", saved.Points)
	}

	// Negative results are floored at zero.
	saved, _ = db.UpdateProgress(ctx, user.ID, cards[1].ID, func(*Progress) Progress {
		return Progress{Points: -3, LastReviewed: 300}
	})
	if saved.Points != 0 {
		t.Errorf("Points = %d, want 0", saved.Points)
	}

	all, err := db.ListProgressForSet(ctx, user.ID, set.ID)
	if err != nil {
		t.Fatalf("ListProgressForSet: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("progress rows = %d, want 2", len(all))
	}
	if got := all[cards[0].ID]; got.Points != 2 || got.LastReviewed != 200 {
		t.Errorf("card 0 progress = %+v", got)
	}
}

func TestProgressIsPerUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, set, cards := seed(t, db, 1)
	bob, _ := db.CreateUser(ctx, "bob", "hash")

	if _, err := db.UpdateProgress(ctx, bob.ID, cards[0].ID, func(*Progress) Progress {
		return Progress{Points: 5, LastReviewed: 1}
	}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	all, _ := db.ListProgressForSet(ctx, 1, set.ID)
	if len(all) != 0 {
		t.Errorf("owner sees %d progress rows from bob, want 0", len(all))
	}
	all, _ = db.ListProgressForSet(ctx, bob.ID, set.ID)
	if all[cards[0].ID].Points != 5 {
		t.Errorf("bob's points = %d, want 5", all[cards[0].ID].Points)
	}
}

func TestRecordReview(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	user, _, cards := seed(t, db, 1)

	start := int64(500)
	saved, streak, err := db.RecordReview(ctx, user.ID, cards[0].ID,
		func(cur *Progress) Progress { return Progress{Points: 1, LastReviewed: 500} },
		func(cur Streak) Streak {
			if cur.StartDate != nil {
				t.Errorf("new user streak = %+v, want empty", cur)
			}
			return Streak{StartDate: &start, LastUpdated: &start}
		})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if saved.Points != 1 || *streak.StartDate != 500 {
		t.Errorf("saved = %+v, streak = %+v", saved, streak)
	}

	got, _ := db.GetStreak(ctx, user.ID)
	if got.StartDate == nil || *got.StartDate != 500 {
		t.Errorf("stored streak = %+v, want start 500", got)
	}
	p, _ := db.GetProgress(ctx, user.ID, cards[0].ID)
	if p == nil || p.Points != 1 {
		t.Errorf("stored progress = %+v, want 1 point", p)
	}
}

func TestRecordReviewMissingUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, _, cards := seed(t, db, 1)

	_, _, err := db.RecordReview(ctx, 9999, cards[0].ID,
		func(*Progress) Progress { return Progress{Points: 1, LastReviewed: 1} },
		func(cur Streak) Streak { return cur })
	if !errors.Is(err, ErrNoUser) {
		t.Errorf("err = %v, want ErrNoUser", err)
	}
}
