package repository

import (
	"context"

	"github.com/fieldops/duty-assignment-api/internal/models"
	"gorm.io/gorm"
)

// GormPostDirectory is a GORM implementation of PostDirectory
type GormPostDirectory struct {
	db *gorm.DB
}

// NewPostDirectory creates a new PostDirectory
func NewPostDirectory(db *gorm.DB) PostDirectory {
	return &GormPostDirectory{db: db}
}

// GetPost finds a post by ID
func (r *GormPostDirectory) GetPost(ctx context.Context, id uint64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts lists posts, optionally only active ones
func (r *GormPostDirectory) ListPosts(ctx context.Context, activeOnly bool) ([]models.Post, error) {
	var posts []models.Post
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
