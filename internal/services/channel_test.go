package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
)

type channelEnv struct {
	users   *fakeUserStore
	videos  *fakeVideoStore
	likes   *fakeLikeStore
	subs    *fakeSubscriptionStore
	service *ChannelService
}

func newChannelEnv() *channelEnv {
	users := newFakeUserStore()
	videos := newFakeVideoStore()
	likes := newFakeLikeStore()
	subs := newFakeSubscriptionStore(users)

	return &channelEnv{
		users:   users,
		videos:  videos,
		likes:   likes,
		subs:    subs,
		service: NewChannelService(users, videos, likes, subs, time.Second, testLogger()),
	}
}

func TestGetChannelProfile(t *testing.T) {
	env := newChannelEnv()
	ctx := context.Background()

	channel := env.users.add("creator")
	fan := env.users.add("fan")
	other := env.users.add("other")

	env.subs.Create(ctx, &models.Subscription{SubscriberID: fan.ID, ChannelID: channel.ID})
	env.subs.Create(ctx, &models.Subscription{SubscriberID: other.ID, ChannelID: channel.ID})
	env.subs.Create(ctx, &models.Subscription{SubscriberID: channel.ID, ChannelID: other.ID})

	// Lookup is case-insensitive.
	profile, err := env.service.GetChannelProfile(ctx, "CREATOR", fan.ID.String())
	if err != nil {
		t.Fatalf("GetChannelProfile: %v", err)
	}

	if profile.SubscribersCount != 2 {
		t.Errorf("subscribers: got %d, want 2", profile.SubscribersCount)
	}
	if profile.SubscribedToCount != 1 {
		t.Errorf("subscribed to: got %d, want 1", profile.SubscribedToCount)
	}
	if !profile.IsViewerSubscribed {
		t.Error("fan's subscription not reflected")
	}

	// Anonymous viewers never read as subscribed.
	profile, err = env.service.GetChannelProfile(ctx, "creator", "")
	if err != nil {
		t.Fatalf("anonymous profile: %v", err)
	}
	if profile.IsViewerSubscribed {
		t.Error("anonymous viewer reported as subscribed")
	}
}

func TestGetChannelProfileMissing(t *testing.T) {
	env := newChannelEnv()

	_, err := env.service.GetChannelProfile(context.Background(), "ghost", "")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing channel: got %v, want ErrNotFound", err)
	}

	_, err = env.service.GetChannelProfile(context.Background(), "", "")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("empty username: got %v, want ErrInvalidArgument", err)
	}
}

func TestGetChannelStats(t *testing.T) {
	env := newChannelEnv()
	ctx := context.Background()

	channel := env.users.add("creator")
	fanA := env.users.add("fana")
	fanB := env.users.add("fanb")

	first := env.videos.add(channel.ID, "first", true)
	first.Views = 5
	second := env.videos.add(channel.ID, "second", true)
	second.Views = 7
	draft := env.videos.add(channel.ID, "draft", false)
	draft.Views = 100

	env.likes.Create(ctx, &models.Like{UserID: fanA.ID, SubjectType: models.SubjectVideo, SubjectID: first.ID})
	env.likes.Create(ctx, &models.Like{UserID: fanB.ID, SubjectType: models.SubjectVideo, SubjectID: first.ID})
	env.subs.Create(ctx, &models.Subscription{SubscriberID: fanA.ID, ChannelID: channel.ID})
	env.subs.Create(ctx, &models.Subscription{SubscriberID: fanB.ID, ChannelID: channel.ID})

	stats, err := env.service.GetChannelStats(ctx, channel.ID.String(), channel.ID.String())
	if err != nil {
		t.Fatalf("GetChannelStats: %v", err)
	}

	// Draft videos stay out of every total.
	if stats.TotalVideos != 2 {
		t.Errorf("total videos: got %d, want 2", stats.TotalVideos)
	}
	if stats.TotalViews != 12 {
		t.Errorf("total views: got %d, want 12", stats.TotalViews)
	}
	if stats.TotalLikes != 2 {
		t.Errorf("total likes: got %d, want 2", stats.TotalLikes)
	}
	if stats.TotalSubscribers != 2 {
		t.Errorf("total subscribers: got %d, want 2", stats.TotalSubscribers)
	}
}

func TestGetChannelStatsOwnerOnly(t *testing.T) {
	env := newChannelEnv()

	channel := env.users.add("creator")
	stranger := env.users.add("stranger")

	_, err := env.service.GetChannelStats(context.Background(), channel.ID.String(), stranger.ID.String())
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("stranger reading stats: got %v, want ErrUnauthorized", err)
	}
}

func TestGetChannelVideosVisibility(t *testing.T) {
	env := newChannelEnv()
	ctx := context.Background()

	channel := env.users.add("creator")
	env.videos.add(channel.ID, "published", true)
	env.videos.add(channel.ID, "draft", false)

	videos, err := env.service.GetChannelVideos(ctx, channel.ID.String(), "")
	if err != nil {
		t.Fatalf("GetChannelVideos: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("stranger view: got %d videos, want 1", len(videos))
	}

	videos, err = env.service.GetChannelVideos(ctx, channel.ID.String(), channel.ID.String())
	if err != nil {
		t.Fatalf("GetChannelVideos as owner: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("owner view: got %d videos, want 2", len(videos))
	}
}

func TestSubscriberListings(t *testing.T) {
	env := newChannelEnv()
	ctx := context.Background()

	channel := env.users.add("creator")
	fan := env.users.add("fan")

	env.subs.Create(ctx, &models.Subscription{SubscriberID: fan.ID, ChannelID: channel.ID})

	subscribers, err := env.service.GetSubscribers(ctx, channel.ID.String())
	if err != nil {
		t.Fatalf("GetSubscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].Username != "fan" {
		t.Fatalf("subscribers: got %+v", subscribers)
	}

	channels, err := env.service.GetSubscribedChannels(ctx, fan.ID.String())
	if err != nil {
		t.Fatalf("GetSubscribedChannels: %v", err)
	}
	if len(channels) != 1 || channels[0].Username != "creator" {
		t.Fatalf("channels: got %+v", channels)
	}

	if _, err := env.service.GetSubscribers(ctx, "nope"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("bad channel ID: got %v, want ErrInvalidArgument", err)
	}
	if _, err := env.service.GetSubscribedChannels(ctx, uuid.NewString()); err != nil {
		t.Fatalf("unknown subscriber should list empty, got %v", err)
	}
}
