package domain

import "time"

// User представляет пользователя сервиса.
// ID приходит от внешнего провайдера аутентификации и никогда не генерируется
// локально. Запись создается лениво при первом авторизованном действии
// и после этого не изменяется.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(255);primary_key"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null"`
	AvatarURL *string   `json:"image,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
}

// Post представляет пост в ленте.
type Post struct {
	ID        string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID  string     `json:"authorId" gorm:"type:varchar(255);not null;index"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	ImageURL  *string    `json:"imageUrl,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;default:now()"`
	Author    *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Comments  []*Comment `json:"-" gorm:"foreignKey:PostID"` // gorm only
	Votes     []*Vote    `json:"-" gorm:"foreignKey:PostID"` // gorm only
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;index"`
	AuthorID  string    `json:"authorId" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:varchar(2000);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// Vote представляет голос пользователя за пост.
// Инвариант: не больше одной записи на пару (UserID, PostID), Value
// принимает только значения +1 и -1. Уникальный индекс - единственный
// механизм защиты от дублей при конкурентных запросах.
type Vote struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    string    `json:"userId" gorm:"type:varchar(255);not null;uniqueIndex:idx_votes_user_post"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_post"`
	Value     int       `json:"value" gorm:"not null"` // +1 или -1
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now()"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;default:now()"`
}

// FeedPost - пост в ленте вместе с денормализованными счетчиками.
// Счетчики, а не сами коллекции: лента не должна тащить все комментарии.
type FeedPost struct {
	Post
	CommentCount int64 `json:"commentCount" gorm:"-"`
	VoteCount    int64 `json:"voteCount" gorm:"-"`
}

// VoteAggregate - агрегат голосов по посту.
// UserVote равен nil, если запрашивающий пользователь не голосовал
// или запрос анонимный.
type VoteAggregate struct {
	Total    int  `json:"total"`
	UserVote *int `json:"userVote"`
}
