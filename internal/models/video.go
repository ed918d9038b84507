package models

import (
	"time"

	"github.com/google/uuid"
)

type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusPublished  VideoStatus = "published"
	VideoStatusDraft      VideoStatus = "draft"
	VideoStatusPrivate    VideoStatus = "private"
)

type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryEducation     Category = "education"
	CategoryMusic         Category = "music"
	CategorySports        Category = "sports"
	CategoryNews          Category = "news"
	CategoryGaming        Category = "gaming"
	CategoryTechnology    Category = "technology"
	CategoryOther         Category = "other"
)

type Video struct {
	VideoID      int64       `json:"id" db:"id"`
	UserID       uuid.UUID   `json:"user_id" db:"user_id"`
	Title        string      `json:"title" db:"title"`
	Description  string      `json:"description" db:"description"`
	Category     Category    `json:"category" db:"category"`
	VideoURL     string      `json:"video_url" db:"video_url"`
	ThumbnailURL string      `json:"thumbnail_url" db:"thumbnail_url"`
	Duration     int64       `json:"duration" db:"duration"`
	FileSize     int64       `json:"file_size" db:"file_size"`
	Status       VideoStatus `json:"status" db:"status"`
	Views        int64       `json:"views" db:"views"`
	Likes        int64       `json:"likes" db:"likes"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

type VideoList struct {
	Videos     []*Video `json:"videos"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	HasMore    bool     `json:"has_more"`
}

// VideoFilter narrows a catalog listing.
type VideoFilter struct {
	Category  string
	Search    string
	Status    VideoStatus
	SortBy    string
	SortOrder string
}

// VideoDraft is a metadata-only record whose media is produced elsewhere.
// It is stored as processing and stays out of public listings until its status changes.
type VideoDraft struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	Category     Category `json:"category" validate:"required,oneof=entertainment education music sports news gaming technology other"`
	VideoURL     string   `json:"video_url" validate:"required,url"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,url"`
	Duration     int64    `json:"duration" validate:"gte=0"`
}

// VideoUpdate carries a partial edit; nil fields are left untouched.
type VideoUpdate struct {
	Title       *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Category    *Category    `json:"category" validate:"omitempty,oneof=entertainment education music sports news gaming technology other"`
	Status      *VideoStatus `json:"status" validate:"omitempty,oneof=draft processing published private"`
}

func (u *VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Status == nil
}
