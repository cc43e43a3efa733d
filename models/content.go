// models/content.go - Catalog entities (movies, episodes, comics, chapters)
// plus the user-generated records hanging off them.
package models

import "time"

// Comment / rating / report targets.
const (
	TargetMovie = "movie"
	TargetComic = "comic"
)

// Report statuses.
const (
	ReportPending  = "pending"
	ReportResolved = "resolved"
	ReportRejected = "rejected"
)

type Movie struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200;index"`
	Description string    `json:"description" gorm:"type:text"`
	PosterURL   string    `json:"poster_url"`
	ReleaseYear int       `json:"release_year" gorm:"index"`
	IsPublished bool      `json:"is_published" gorm:"default:true"`
	ViewCount   int64     `json:"view_count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Episodes    []Episode `json:"episodes,omitempty" gorm:"foreignKey:MovieID"`
}

type Episode struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	MovieID  uint   `json:"movie_id" gorm:"not null;index"`
	Movie    *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
	Number   int    `json:"number" gorm:"not null"`
	Title    string `json:"title" gorm:"size:200"`
	VideoURL string `json:"video_url"`
	Duration int    `json:"duration" gorm:"default:0"` // in seconds
}

type Comic struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200;index"`
	Author      string    `json:"author" gorm:"size:120"`
	Description string    `json:"description" gorm:"type:text"`
	CoverURL    string    `json:"cover_url"`
	IsPublished bool      `json:"is_published" gorm:"default:true"`
	ViewCount   int64     `json:"view_count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Chapters    []Chapter `json:"chapters,omitempty" gorm:"foreignKey:ComicID"`
}

type Chapter struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ComicID   uint   `json:"comic_id" gorm:"not null;index"`
	Comic     *Comic `json:"comic,omitempty" gorm:"foreignKey:ComicID"`
	Number    int    `json:"number" gorm:"not null"`
	Title     string `json:"title" gorm:"size:200"`
	PageCount int    `json:"page_count" gorm:"default:0"`
}

type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ParentID   *uint     `json:"parent_id,omitempty" gorm:"index"`
	TargetType string    `json:"target_type" gorm:"not null;size:20;index:idx_comments_target"`
	TargetID   uint      `json:"target_id" gorm:"not null;index:idx_comments_target"`
	Content    string    `json:"content" gorm:"not null;type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

type Rating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_rating"`
	TargetType string    `json:"target_type" gorm:"not null;size:20;uniqueIndex:idx_user_rating"`
	TargetID   uint      `json:"target_id" gorm:"not null;uniqueIndex:idx_user_rating"`
	Score      int       `json:"score" gorm:"not null"` // 1-10
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Report struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ReporterID uint      `json:"reporter_id" gorm:"not null;index"`
	Reporter   *User     `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	TargetType string    `json:"target_type" gorm:"not null;size:20"`
	TargetID   uint      `json:"target_id" gorm:"not null"`
	Reason     string    `json:"reason" gorm:"not null;type:text"`
	Status     string    `json:"status" gorm:"default:'pending';size:20;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Movie) TableName() string   { return "movies" }
func (Episode) TableName() string { return "episodes" }
func (Comic) TableName() string   { return "comics" }
func (Chapter) TableName() string { return "chapters" }
func (Comment) TableName() string { return "comments" }
func (Rating) TableName() string  { return "ratings" }
func (Report) TableName() string  { return "reports" }
