package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidstream/vidstream/internal/models"
)

type historyEnv struct {
	users   *fakeUserStore
	videos  *fakeVideoStore
	likes   *fakeLikeStore
	history *fakeHistoryStore
	service *HistoryService
}

func newHistoryEnv() *historyEnv {
	users := newFakeUserStore()
	videos := newFakeVideoStore()
	likes := newFakeLikeStore()
	history := newFakeHistoryStore(videos)

	return &historyEnv{
		users:   users,
		videos:  videos,
		likes:   likes,
		history: history,
		service: NewHistoryService(history, users, likes, time.Second, testLogger()),
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()

	viewer := env.users.add("viewer")
	owner := env.users.add("creator")
	video := env.videos.add(owner.ID, "launch", true)

	for i := 0; i < 3; i++ {
		if err := env.service.Record(ctx, viewer.ID, video.ID); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	if len(env.history.entries) != 1 {
		t.Fatalf("entries after repeat records: got %d, want 1", len(env.history.entries))
	}
}

func TestGetWatchHistoryOrder(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()

	viewer := env.users.add("viewer")
	owner := env.users.add("creator")
	first := env.videos.add(owner.ID, "first", true)
	second := env.videos.add(owner.ID, "second", true)
	third := env.videos.add(owner.ID, "third", true)

	for _, v := range []*models.Video{first, second, third} {
		if err := env.service.Record(ctx, viewer.ID, v.ID); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	// Viewing order, most recent last.
	history, err := env.service.GetWatchHistory(ctx, viewer.ID.String(), false)
	if err != nil {
		t.Fatalf("GetWatchHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length: got %d, want 3", len(history))
	}
	if history[0].ID != first.ID || history[2].ID != third.ID {
		t.Errorf("history order wrong: %s .. %s", history[0].Title, history[2].Title)
	}

	reversed, err := env.service.GetWatchHistory(ctx, viewer.ID.String(), true)
	if err != nil {
		t.Fatalf("GetWatchHistory newest first: %v", err)
	}
	if reversed[0].ID != third.ID {
		t.Errorf("newest-first order wrong: first is %s", reversed[0].Title)
	}
}

func TestGetWatchHistorySkipsDeletedVideos(t *testing.T) {
	env := newHistoryEnv()
	ctx := context.Background()

	viewer := env.users.add("viewer")
	owner := env.users.add("creator")
	kept := env.videos.add(owner.ID, "kept", true)
	doomed := env.videos.add(owner.ID, "doomed", true)

	env.service.Record(ctx, viewer.ID, kept.ID)
	env.service.Record(ctx, viewer.ID, doomed.ID)
	env.videos.Delete(ctx, doomed.ID)

	history, err := env.service.GetWatchHistory(ctx, viewer.ID.String(), false)
	if err != nil {
		t.Fatalf("GetWatchHistory: %v", err)
	}
	if len(history) != 1 || history[0].ID != kept.ID {
		t.Fatalf("history after deletion: got %d entries", len(history))
	}
}

func TestGetWatchHistoryRequiresViewer(t *testing.T) {
	env := newHistoryEnv()

	_, err := env.service.GetWatchHistory(context.Background(), "", false)
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("anonymous history: got %v, want ErrUnauthorized", err)
	}

	_, err = env.service.GetWatchHistory(context.Background(), "not-a-uuid", false)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("malformed viewer: got %v, want ErrInvalidArgument", err)
	}
}
