package models

import (
	"fmt"
	"time"
)

type User struct {
	UserID       string    `json:"userId" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// RefreshToken belongs to exactly one user; user_id is unique, so a user
// holds at most one live token.
type RefreshToken struct {
	RefreshTokenID string    `json:"refreshTokenId" db:"refresh_token_id"`
	Token          string    `json:"token" db:"token"`
	UserID         string    `json:"userId" db:"user_id"`
	ExpiresAt      time.Time `json:"expiresAt" db:"expires_at"`
}

type Tag struct {
	TagID string `json:"id" db:"tag_id"`
	Name  string `json:"name" db:"name"`
}

type Post struct {
	PostID    string    `json:"id" db:"post_id"`
	Title     string    `json:"title" db:"title"`
	Content1  *string   `json:"content1" db:"content1"`
	Content2  *string   `json:"content2" db:"content2"`
	Content3  *string   `json:"content3" db:"content3"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Gallery identifies one of the three per-post image collections.
type Gallery int

const (
	Gallery1 Gallery = iota + 1
	Gallery2
	Gallery3
)

var Galleries = []Gallery{Gallery1, Gallery2, Gallery3}

func (g Gallery) Valid() bool {
	return g >= Gallery1 && g <= Gallery3
}

// Table is the backing table of the gallery: images1, images2 or images3.
func (g Gallery) Table() string {
	return fmt.Sprintf("images%d", int(g))
}

func (g Gallery) String() string {
	return g.Table()
}

func ParseGallery(s string) (Gallery, error) {
	switch s {
	case "1", "images1":
		return Gallery1, nil
	case "2", "images2":
		return Gallery2, nil
	case "3", "images3":
		return Gallery3, nil
	}
	return 0, fmt.Errorf("unknown gallery %q", s)
}

// PostView is the flattened projection returned by create, get and update.
type PostView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content1  *string   `json:"content1"`
	Content2  *string   `json:"content2"`
	Content3  *string   `json:"content3"`
	CreatedAt time.Time `json:"createdAt"`
	TagIDs    []string  `json:"tagIds"`
	Images1   []string  `json:"images1"`
	Images2   []string  `json:"images2"`
	Images3   []string  `json:"images3"`
}

func (v *PostView) SetImages(g Gallery, srcs []string) {
	switch g {
	case Gallery1:
		v.Images1 = srcs
	case Gallery2:
		v.Images2 = srcs
	case Gallery3:
		v.Images3 = srcs
	}
}

type PostListItem struct {
	ID     string   `json:"id" db:"post_id"`
	Title  string   `json:"title" db:"title"`
	TagIDs []string `json:"tagIds" db:"-"`
}

type PostPage struct {
	TotalCount int            `json:"totalCount"`
	Posts      []PostListItem `json:"posts"`
}
