package storage

import (
	"context"
	"errors"

	"github.com/youknowom/campus-connect/internal/domain"
)

// Сигнальные ошибки хранилища. Транспортный слой сопоставляет их
// с HTTP-статусами, поэтому обе реализации обязаны возвращать именно их.
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrContentTooLong   = errors.New("content is too long")
	ErrInvalidVoteValue = errors.New("vote value must be +1 or -1")
)

// Storage определяет контракт для хранилищ.
type Storage interface {
	// EnsureUser создает запись пользователя, если ее еще нет.
	// Существующая запись не перезаписывается: профиль неизменяем
	// после первого появления.
	EnsureUser(ctx context.Context, user *domain.User) (*domain.User, error)

	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	// GetFeed возвращает все посты от новых к старым, с автором
	// и счетчиками комментариев и голосов.
	GetFeed(ctx context.Context) ([]*domain.FeedPost, error)

	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error)

	// UpsertVote атомарно вставляет или перезаписывает голос по ключу
	// (UserID, PostID). Повторный голос с тем же значением - безобидная
	// перезапись, не переключение.
	UpsertVote(ctx context.Context, vote *domain.Vote) (*domain.Vote, error)
	DeleteVote(ctx context.Context, postID, userID string) error
	GetVoteAggregate(ctx context.Context, postID string, userID *string) (*domain.VoteAggregate, error)

	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
