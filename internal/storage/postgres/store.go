package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/youknowom/campus-connect/internal/domain"
	"github.com/youknowom/campus-connect/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы. Уникальный индекс на (user_id, post_id)
	// в таблице votes создается отсюда же, из gorm-тегов модели.
	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}, &domain.Vote{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// === User Methods ===

func (s *Store) EnsureUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	// Insert-or-ignore по первичному ключу: повторное появление пользователя
	// не трогает уже сохраненный профиль.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(user).Error
	if err != nil {
		return nil, err
	}

	// При конфликте Create не возвращает существующую запись,
	// поэтому перечитываем ее явно.
	var stored domain.User
	if err := s.db.WithContext(ctx).First(&stored, "id = ?", user.ID).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	// GORM заполнит ID и CreatedAt после создания; автора подгружаем сами.
	var author domain.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", post.AuthorID).Error; err == nil {
		post.Author = &author
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := s.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *Store) GetFeed(ctx context.Context) ([]*domain.FeedPost, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []*domain.FeedPost{}, nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	commentCounts, err := s.countByPostIDs(ctx, &domain.Comment{}, ids)
	if err != nil {
		return nil, err
	}
	voteCounts, err := s.countByPostIDs(ctx, &domain.Vote{}, ids)
	if err != nil {
		return nil, err
	}

	feed := make([]*domain.FeedPost, len(posts))
	for i, p := range posts {
		feed[i] = &domain.FeedPost{
			Post:         *p,
			CommentCount: commentCounts[p.ID],
			VoteCount:    voteCounts[p.ID],
		}
	}
	return feed, nil
}

// countByPostIDs считает записи модели, сгруппированные по post_id,
// одним запросом для всей страницы постов.
func (s *Store) countByPostIDs(ctx context.Context, model interface{}, postIDs []string) (map[string]int64, error) {
	var rows []struct {
		PostID string
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(model).
		Select("post_id, count(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.PostID] = r.Total
	}
	return result, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	// Валидация: храним уже обрезанный текст.
	content := strings.TrimSpace(comment.Content)
	if content == "" {
		return nil, storage.ErrEmptyContent
	}
	if len(content) > 2000 {
		return nil, storage.ErrContentTooLong
	}
	comment.Content = content

	// Проверяем существование поста и создаем комментарий в одной транзакции.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postCount int64
		if err := tx.Model(&domain.Post{}).Where("id = ?", comment.PostID).Count(&postCount).Error; err != nil {
			return err
		}
		if postCount == 0 {
			return storage.ErrPostNotFound
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}

	var author domain.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", comment.AuthorID).Error; err == nil {
		comment.Author = &author
	}
	return comment, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// === Vote Methods ===

func (s *Store) UpsertVote(ctx context.Context, vote *domain.Vote) (*domain.Vote, error) {
	if vote.Value != 1 && vote.Value != -1 {
		return nil, storage.ErrInvalidVoteValue
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postCount int64
		if err := tx.Model(&domain.Post{}).Where("id = ?", vote.PostID).Count(&postCount).Error; err != nil {
			return err
		}
		if postCount == 0 {
			return storage.ErrPostNotFound
		}

		// Атомарный upsert по уникальному индексу (user_id, post_id).
		// Никакого read-then-branch: гонку двух одновременных голосов
		// разрешает сама БД.
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      vote.Value,
				"updated_at": time.Now().UTC(),
			}),
		}).Create(vote).Error
	})
	if err != nil {
		return nil, err
	}

	// При конфликте строка сохранила исходный ID и CreatedAt,
	// поэтому возвращаем то, что реально лежит в БД.
	var stored domain.Vote
	err = s.db.WithContext(ctx).
		First(&stored, "user_id = ? AND post_id = ?", vote.UserID, vote.PostID).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Store) DeleteVote(ctx context.Context, postID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&domain.Vote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrVoteNotFound
	}
	return nil
}

func (s *Store) GetVoteAggregate(ctx context.Context, postID string, userID *string) (*domain.VoteAggregate, error) {
	agg := &domain.VoteAggregate{}

	var total int64
	err := s.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("post_id = ?", postID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}
	agg.Total = int(total)

	if userID != nil {
		var own domain.Vote
		err := s.db.WithContext(ctx).
			First(&own, "user_id = ? AND post_id = ?", *userID, postID).Error
		switch {
		case err == nil:
			value := own.Value
			agg.UserVote = &value
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Пользователь не голосовал - UserVote остается nil.
		default:
			return nil, err
		}
	}
	return agg, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
