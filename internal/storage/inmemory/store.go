package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/youknowom/campus-connect/internal/domain"
	"github.com/youknowom/campus-connect/internal/storage"

	"github.com/google/uuid"
)

// Store реализует интерфейс Storage в памяти.
// Вся конкурентность сериализуется мьютексом, поэтому инвариант
// "один голос на пару (user, post)" здесь держится тривиально.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	posts    map[string]*domain.Post
	comments map[string]*domain.Comment
	//    map[postID] map[userID] vote
	votes map[string]map[string]*domain.Vote
	//             map[postID][]commentID
	commentsByPost map[string][]string
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:          make(map[string]*domain.User),
		posts:          make(map[string]*domain.Post),
		comments:       make(map[string]*domain.Comment),
		votes:          make(map[string]map[string]*domain.Vote),
		commentsByPost: make(map[string][]string),
	}
}

// === User Methods ===

func (s *Store) EnsureUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Профиль неизменяем: если запись уже есть, возвращаем ее как есть.
	if existing, ok := s.users[user.ID]; ok {
		return existing, nil
	}

	u := *user
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = &u
	return &u, nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC()
	post.Author = s.users[post.AuthorID]
	s.posts[post.ID] = post
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	return post, nil
}

func (s *Store) GetFeed(ctx context.Context) ([]*domain.FeedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := make([]*domain.FeedPost, 0, len(s.posts))
	for _, p := range s.posts {
		entry := &domain.FeedPost{
			Post:         *p,
			CommentCount: int64(len(s.commentsByPost[p.ID])),
			VoteCount:    int64(len(s.votes[p.ID])),
		}
		entry.Author = s.users[p.AuthorID]
		feed = append(feed, entry)
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, storage.ErrPostNotFound
	}

	// Валидация содержимого: храним уже обрезанный текст.
	content := strings.TrimSpace(comment.Content)
	if content == "" {
		return nil, storage.ErrEmptyContent
	}
	if len(content) > 2000 {
		return nil, storage.ErrContentTooLong
	}
	comment.Content = content

	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	comment.Author = s.users[comment.AuthorID]
	s.comments[comment.ID] = comment
	s.commentsByPost[comment.PostID] = append(s.commentsByPost[comment.PostID], comment.ID)

	return comment, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentsByPost[postID]
	comments := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			comments = append(comments, c)
		}
	}

	// От новых к старым.
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// === Vote Methods ===

func (s *Store) UpsertVote(ctx context.Context, vote *domain.Vote) (*domain.Vote, error) {
	if vote.Value != 1 && vote.Value != -1 {
		return nil, storage.ErrInvalidVoteValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[vote.PostID]; !ok {
		return nil, storage.ErrPostNotFound
	}

	now := time.Now().UTC()
	if existing, ok := s.votes[vote.PostID][vote.UserID]; ok {
		// Перезапись существующего голоса. Повтор с тем же значением -
		// тоже перезапись, а не переключение.
		existing.Value = vote.Value
		existing.UpdatedAt = now
		return existing, nil
	}

	vote.ID = uuid.NewString()
	vote.CreatedAt = now
	vote.UpdatedAt = now
	if s.votes[vote.PostID] == nil {
		s.votes[vote.PostID] = make(map[string]*domain.Vote)
	}
	s.votes[vote.PostID][vote.UserID] = vote
	return vote, nil
}

func (s *Store) DeleteVote(ctx context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	postVotes, ok := s.votes[postID]
	if !ok {
		return storage.ErrVoteNotFound
	}
	if _, ok := postVotes[userID]; !ok {
		return storage.ErrVoteNotFound
	}
	delete(postVotes, userID)
	if len(postVotes) == 0 {
		delete(s.votes, postID)
	}
	return nil
}

func (s *Store) GetVoteAggregate(ctx context.Context, postID string, userID *string) (*domain.VoteAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := &domain.VoteAggregate{}
	for _, v := range s.votes[postID] {
		agg.Total += v.Value
		if userID != nil && v.UserID == *userID {
			value := v.Value
			agg.UserVote = &value
		}
	}
	return agg, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}
