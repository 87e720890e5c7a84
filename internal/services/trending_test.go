package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vidstream/vidstream/internal/models"
)

type fakeRanker struct {
	members  []redis.Z
	lastStop int64
}

func (f *fakeRanker) ZRevRangeWithScores(_ context.Context, _ string, start, stop int64) ([]redis.Z, error) {
	f.lastStop = stop
	if start >= int64(len(f.members)) {
		return nil, nil
	}
	if stop >= int64(len(f.members)) || stop < 0 {
		stop = int64(len(f.members)) - 1
	}
	return f.members[start : stop+1], nil
}

func TestGetTrendingResolvesVideos(t *testing.T) {
	users := newFakeUserStore()
	videos := newFakeVideoStore()
	likes := newFakeLikeStore()

	owner := users.add("creator")
	hot := videos.add(owner.ID, "hot", true)
	warm := videos.add(owner.ID, "warm", true)
	draft := videos.add(owner.ID, "draft", false)
	deleted := videos.add(owner.ID, "gone", true)
	videos.Delete(context.Background(), deleted.ID)

	ranker := &fakeRanker{members: []redis.Z{
		{Score: 42, Member: hot.ID.String()},
		{Score: 20, Member: deleted.ID.String()},
		{Score: 15, Member: draft.ID.String()},
		{Score: 7, Member: warm.ID.String()},
	}}

	service := NewTrendingService(ranker, videos, users, likes, "trending:videos", 50, time.Second, testLogger())

	trending, err := service.GetTrending(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetTrending: %v", err)
	}

	// Deleted and unpublished members drop out; order follows the scores.
	if len(trending) != 2 {
		t.Fatalf("trending: got %d entries, want 2", len(trending))
	}
	if trending[0].Video.ID != hot.ID || trending[1].Video.ID != warm.ID {
		t.Errorf("order wrong: %s, %s", trending[0].Video.Title, trending[1].Video.Title)
	}
	if trending[0].Score != 42 {
		t.Errorf("score: got %f, want 42", trending[0].Score)
	}
}

func TestGetTrendingLimitValidation(t *testing.T) {
	ranker := &fakeRanker{}
	service := NewTrendingService(ranker, newFakeVideoStore(), newFakeUserStore(), newFakeLikeStore(), "trending:videos", 50, time.Second, testLogger())

	_, err := service.GetTrending(context.Background(), 0)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("zero limit: got %v, want ErrInvalidArgument", err)
	}

	// An oversized limit is clamped, not passed through to the ranked set.
	if _, err := service.GetTrending(context.Background(), 1000000); err != nil {
		t.Fatalf("oversized limit: %v", err)
	}
	if ranker.lastStop != 49 {
		t.Errorf("range stop: got %d, want 49", ranker.lastStop)
	}
}
