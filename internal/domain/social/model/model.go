package model

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Content   string
	Likes     []uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Article) LikedBy(id uuid.UUID) bool {
	for _, l := range a.Likes {
		if l == id {
			return true
		}
	}
	return false
}

type Comment struct {
	ID        uuid.UUID
	ArticleID uuid.UUID
	OwnerID   uuid.UUID
	Content   string
	CreatedAt time.Time
}

type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
