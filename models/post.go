package models

import (
	"stagesite/db"
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID        uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	Title     string `gorm:"type:varchar(200);not null"`
	Content   string `gorm:"type:text;not null"`
	Author    string `gorm:"type:varchar(100);not null"`
	// Older posts carried a single image directly
	ImageFilename string      `gorm:"type:varchar(200)"`
	Images        []PostImage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func orderedImages(tx *gorm.DB) *gorm.DB {
	return tx.Order("display_order ASC, id ASC")
}

// PostList returns all posts, newest first
func PostList() (posts []Post, err error) {
	err = db.Instance.Preload("Images", orderedImages).Order("created_at DESC, id DESC").Find(&posts).Error
	return
}

// PostRecent returns the n newest posts
func PostRecent(n int) (posts []Post, err error) {
	err = db.Instance.Preload("Images", orderedImages).Order("created_at DESC, id DESC").Limit(n).Find(&posts).Error
	return
}

// PostByID returns gorm.ErrRecordNotFound for unknown ids
func PostByID(id uint64) (post Post, err error) {
	err = db.Instance.Preload("Images", orderedImages).First(&post, id).Error
	return
}

func PostCount() (count int64) {
	db.Instance.Model(&Post{}).Count(&count)
	return
}

// CreateWithImages inserts the post and its images in one transaction
func (p *Post) CreateWithImages(images []PostImage) error {
	NormalizePrimary(images)
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		p.Images = nil
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].PostID = p.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		p.Images = images
		return nil
	})
}

// Update saves title/content/author. When newImages is not nil every previous
// image row is deleted before the new set is inserted; the removed rows are
// returned so the caller can delete their files once the transaction committed
func (p *Post) Update(newImages []PostImage) (removed []PostImage, err error) {
	NormalizePrimary(newImages)
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Select("title", "content", "author", "image_filename", "updated_at").Updates(p).Error; err != nil {
			return err
		}
		if newImages == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", p.ID).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&PostImage{}).Error; err != nil {
			return err
		}
		for i := range newImages {
			newImages[i].ID = 0
			newImages[i].PostID = p.ID
		}
		if len(newImages) > 0 {
			if err := tx.Create(&newImages).Error; err != nil {
				return err
			}
		}
		p.Images = newImages
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Delete removes the post and its image rows (files are the caller's business)
func (p *Post) Delete() error {
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", p.ID).Delete(&PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Post{}, p.ID).Error
	})
}

// PrimaryImage is the image flagged as primary, else the lowest display order.
// Posts without image rows fall back to the legacy single image
func (p Post) PrimaryImage() *PostImage {
	var primary *PostImage
	for i := range p.Images {
		img := &p.Images[i]
		if img.IsPrimary {
			return img
		}
		if primary == nil || img.DisplayOrder < primary.DisplayOrder {
			primary = img
		}
	}
	if primary == nil && p.ImageFilename != "" {
		primary = &PostImage{PostID: p.ID, Filename: p.ImageFilename, DisplayOrder: 1}
	}
	return primary
}

func (p Post) ImageCount() int {
	if len(p.Images) == 0 && p.ImageFilename != "" {
		return 1
	}
	return len(p.Images)
}

func (p Post) DisplayDate() time.Time {
	return DisplayDate(p.Content, p.CreatedAt)
}
