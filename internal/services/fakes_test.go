package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
)

// In-memory fakes backing the service tests. They honor the same contracts
// as the gorm repositories: nil on missing point lookups, ErrConflict on
// duplicate edges.

func testLogger() *logger.Logger {
	return logger.NewLogger("error")
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Username = strings.ToLower(user.Username)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == strings.ToLower(username) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) add(username string) *models.User {
	user := &models.User{
		ID:       uuid.New(),
		Username: strings.ToLower(username),
		Email:    username + "@example.com",
		FullName: username,
	}
	f.users[user.ID] = user
	return user
}

type fakeVideoStore struct {
	videos []*models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{}
}

func (f *fakeVideoStore) Create(_ context.Context, video *models.Video) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	f.videos = append(f.videos, video)
	return nil
}

func (f *fakeVideoStore) GetByID(_ context.Context, id uuid.UUID) (*models.Video, error) {
	for _, v := range f.videos {
		if v.ID == id {
			// Detached row, as gorm returns; later IncrementViews calls must
			// not show through an already-fetched snapshot.
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeVideoStore) List(_ context.Context, filter models.VideoFilter) ([]*models.Video, error) {
	var out []*models.Video
	for _, v := range f.videos {
		if filter.PublishedOnly && !v.IsPublished {
			continue
		}
		if filter.OwnerID != nil && v.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(v.Title), q) &&
				!strings.Contains(strings.ToLower(v.Description), q) {
				continue
			}
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "views":
			less = out[i].Views < out[j].Views
		case "duration":
			less = out[i].Duration < out[j].Duration
		case "title":
			less = out[i].Title < out[j].Title
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if filter.Ascending {
			return less
		}
		return !less
	})
	return out, nil
}

func (f *fakeVideoStore) ListByOwner(_ context.Context, ownerID uuid.UUID, publishedOnly bool) ([]*models.Video, error) {
	var out []*models.Video
	for _, v := range f.videos {
		if v.OwnerID != ownerID {
			continue
		}
		if publishedOnly && !v.IsPublished {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVideoStore) Update(_ context.Context, video *models.Video) error {
	for i, v := range f.videos {
		if v.ID == video.ID {
			f.videos[i] = video
			return nil
		}
	}
	return fmt.Errorf("video %s not found", video.ID)
}

func (f *fakeVideoStore) Delete(_ context.Context, id uuid.UUID) error {
	for i, v := range f.videos {
		if v.ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeVideoStore) IncrementViews(_ context.Context, id uuid.UUID) error {
	for _, v := range f.videos {
		if v.ID == id {
			v.Views++
			return nil
		}
	}
	return nil
}

func (f *fakeVideoStore) add(ownerID uuid.UUID, title string, published bool) *models.Video {
	video := &models.Video{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		VideoURL:    "https://cdn.example.com/" + title + ".mp4",
		IsPublished: published,
		CreatedAt:   time.Now(),
	}
	f.videos = append(f.videos, video)
	return video
}

type fakeCommentStore struct {
	comments []*models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{}
}

func (f *fakeCommentStore) Create(_ context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCommentStore) ListByVideo(_ context.Context, videoID uuid.UUID) ([]*models.Comment, error) {
	var out []*models.Comment
	for i := len(f.comments) - 1; i >= 0; i-- {
		if f.comments[i].VideoID == videoID {
			out = append(out, f.comments[i])
		}
	}
	return out, nil
}

func (f *fakeCommentStore) CountByVideo(_ context.Context, videoID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range f.comments {
		if c.VideoID == videoID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCommentStore) Update(_ context.Context, comment *models.Comment) error {
	for i, c := range f.comments {
		if c.ID == comment.ID {
			f.comments[i] = comment
			return nil
		}
	}
	return fmt.Errorf("comment %s not found", comment.ID)
}

func (f *fakeCommentStore) Delete(_ context.Context, id uuid.UUID) error {
	for i, c := range f.comments {
		if c.ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeTweetStore struct {
	tweets []*models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{}
}

func (f *fakeTweetStore) Create(_ context.Context, tweet *models.Tweet) error {
	if tweet.ID == uuid.Nil {
		tweet.ID = uuid.New()
	}
	f.tweets = append(f.tweets, tweet)
	return nil
}

func (f *fakeTweetStore) GetByID(_ context.Context, id uuid.UUID) (*models.Tweet, error) {
	for _, t := range f.tweets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTweetStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for i := len(f.tweets) - 1; i >= 0; i-- {
		if f.tweets[i].OwnerID == ownerID {
			out = append(out, f.tweets[i])
		}
	}
	return out, nil
}

func (f *fakeTweetStore) Update(_ context.Context, tweet *models.Tweet) error {
	for i, t := range f.tweets {
		if t.ID == tweet.ID {
			f.tweets[i] = tweet
			return nil
		}
	}
	return fmt.Errorf("tweet %s not found", tweet.ID)
}

func (f *fakeTweetStore) Delete(_ context.Context, id uuid.UUID) error {
	for i, t := range f.tweets {
		if t.ID == id {
			f.tweets = append(f.tweets[:i], f.tweets[i+1:]...)
			return nil
		}
	}
	return nil
}

type likeKey struct {
	userID    uuid.UUID
	subject   models.SubjectType
	subjectID uuid.UUID
}

type fakeLikeStore struct {
	order []likeKey
	likes map[likeKey]*models.Like

	// forceConflict makes the next Create fail with ErrConflict while still
	// recording the edge, simulating a concurrent insert winning the race.
	forceConflict bool
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[likeKey]*models.Like)}
}

func (f *fakeLikeStore) Create(_ context.Context, like *models.Like) error {
	key := likeKey{like.UserID, like.SubjectType, like.SubjectID}
	if _, ok := f.likes[key]; ok {
		return fmt.Errorf("like edge exists: %w", models.ErrConflict)
	}
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	f.likes[key] = like
	f.order = append(f.order, key)
	if f.forceConflict {
		f.forceConflict = false
		return fmt.Errorf("like edge exists: %w", models.ErrConflict)
	}
	return nil
}

func (f *fakeLikeStore) Delete(_ context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) error {
	key := likeKey{userID, subject, subjectID}
	delete(f.likes, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeLikeStore) Get(_ context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (*models.Like, error) {
	return f.likes[likeKey{userID, subject, subjectID}], nil
}

func (f *fakeLikeStore) CountBySubject(_ context.Context, subject models.SubjectType, subjectID uuid.UUID) (int64, error) {
	var n int64
	for key := range f.likes {
		if key.subject == subject && key.subjectID == subjectID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLikeStore) IsLiked(_ context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (bool, error) {
	_, ok := f.likes[likeKey{userID, subject, subjectID}]
	return ok, nil
}

func (f *fakeLikeStore) ListVideoLikesByUser(_ context.Context, userID uuid.UUID) ([]*models.Like, error) {
	var out []*models.Like
	for i := len(f.order) - 1; i >= 0; i-- {
		key := f.order[i]
		if key.userID == userID && key.subject == models.SubjectVideo {
			out = append(out, f.likes[key])
		}
	}
	return out, nil
}

type subKey struct {
	subscriberID uuid.UUID
	channelID    uuid.UUID
}

type fakeSubscriptionStore struct {
	users *fakeUserStore
	subs  map[subKey]*models.Subscription
}

func newFakeSubscriptionStore(users *fakeUserStore) *fakeSubscriptionStore {
	return &fakeSubscriptionStore{users: users, subs: make(map[subKey]*models.Subscription)}
}

func (f *fakeSubscriptionStore) Create(_ context.Context, sub *models.Subscription) error {
	key := subKey{sub.SubscriberID, sub.ChannelID}
	if _, ok := f.subs[key]; ok {
		return fmt.Errorf("subscription edge exists: %w", models.ErrConflict)
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	f.subs[key] = sub
	return nil
}

func (f *fakeSubscriptionStore) Delete(_ context.Context, subscriberID, channelID uuid.UUID) error {
	delete(f.subs, subKey{subscriberID, channelID})
	return nil
}

func (f *fakeSubscriptionStore) Get(_ context.Context, subscriberID, channelID uuid.UUID) (*models.Subscription, error) {
	return f.subs[subKey{subscriberID, channelID}], nil
}

func (f *fakeSubscriptionStore) CountByChannel(_ context.Context, channelID uuid.UUID) (int64, error) {
	var n int64
	for key := range f.subs {
		if key.channelID == channelID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptionStore) CountBySubscriber(_ context.Context, subscriberID uuid.UUID) (int64, error) {
	var n int64
	for key := range f.subs {
		if key.subscriberID == subscriberID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptionStore) IsSubscribed(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	_, ok := f.subs[subKey{subscriberID, channelID}]
	return ok, nil
}

func (f *fakeSubscriptionStore) ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for key := range f.subs {
		if key.channelID == channelID {
			if u := f.users.users[key.subscriberID]; u != nil {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeSubscriptionStore) ListChannels(ctx context.Context, subscriberID uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for key := range f.subs {
		if key.subscriberID == subscriberID {
			if u := f.users.users[key.channelID]; u != nil {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakeHistoryStore struct {
	videos  *fakeVideoStore
	entries []*models.WatchHistoryEntry
}

func newFakeHistoryStore(videos *fakeVideoStore) *fakeHistoryStore {
	return &fakeHistoryStore{videos: videos}
}

func (f *fakeHistoryStore) Contains(_ context.Context, userID, videoID uuid.UUID) (bool, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHistoryStore) Append(ctx context.Context, entry *models.WatchHistoryEntry) error {
	seen, _ := f.Contains(ctx, entry.UserID, entry.VideoID)
	if seen {
		return fmt.Errorf("history entry exists: %w", models.ErrConflict)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.WatchHistoryEntry, error) {
	var out []*models.WatchHistoryEntry
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		resolved := *e
		if video, _ := f.videos.GetByID(ctx, e.VideoID); video != nil {
			resolved.Video = *video
		}
		out = append(out, &resolved)
	}
	return out, nil
}

type fakePlaylistStore struct {
	playlists []*models.Playlist
	entries   []*models.PlaylistVideo
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{}
}

func (f *fakePlaylistStore) Create(_ context.Context, playlist *models.Playlist) error {
	if playlist.ID == uuid.Nil {
		playlist.ID = uuid.New()
	}
	f.playlists = append(f.playlists, playlist)
	return nil
}

func (f *fakePlaylistStore) GetByID(_ context.Context, id uuid.UUID) (*models.Playlist, error) {
	for _, p := range f.playlists {
		if p.ID == id {
			resolved := *p
			resolved.Videos = nil
			for _, e := range f.entries {
				if e.PlaylistID == id {
					resolved.Videos = append(resolved.Videos, *e)
				}
			}
			sort.SliceStable(resolved.Videos, func(i, j int) bool {
				return resolved.Videos[i].Position < resolved.Videos[j].Position
			})
			return &resolved, nil
		}
	}
	return nil, nil
}

func (f *fakePlaylistStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Playlist, error) {
	var out []*models.Playlist
	for _, p := range f.playlists {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlaylistStore) AddVideo(_ context.Context, entry *models.PlaylistVideo) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID uuid.UUID) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.PlaylistID == playlistID && e.VideoID == videoID {
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return nil
}

func (f *fakePlaylistStore) NextPosition(_ context.Context, playlistID uuid.UUID) (int, error) {
	max := -1
	for _, e := range f.entries {
		if e.PlaylistID == playlistID && e.Position > max {
			max = e.Position
		}
	}
	return max + 1, nil
}

func (f *fakePlaylistStore) Update(_ context.Context, playlist *models.Playlist) error {
	for i, p := range f.playlists {
		if p.ID == playlist.ID {
			f.playlists[i] = playlist
			return nil
		}
	}
	return fmt.Errorf("playlist %s not found", playlist.ID)
}

func (f *fakePlaylistStore) Delete(_ context.Context, id uuid.UUID) error {
	for i, p := range f.playlists {
		if p.ID == id {
			f.playlists = append(f.playlists[:i], f.playlists[i+1:]...)
			break
		}
	}
	return f.RemoveVideoAll(id)
}

func (f *fakePlaylistStore) RemoveVideoAll(playlistID uuid.UUID) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.PlaylistID == playlistID {
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return nil
}

var errCacheMiss = errors.New("cache miss")

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return errCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

type publishedEvent struct {
	Key   string
	Value interface{}
}

type fakeProducer struct {
	events []publishedEvent
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{}
}

func (f *fakeProducer) Publish(_ context.Context, key string, value interface{}) error {
	f.events = append(f.events, publishedEvent{Key: key, Value: value})
	return nil
}
