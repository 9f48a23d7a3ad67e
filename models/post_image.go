package models

import (
	"stagesite/db"
	"time"

	"gorm.io/gorm"
)

type PostImage struct {
	ID               uint64    `gorm:"primaryKey"`
	PostID           uint64    `gorm:"not null;index"`
	Filename         string    `gorm:"type:varchar(200);not null"`
	OriginalFilename string    `gorm:"type:varchar(200)"`
	DisplayOrder     int       `gorm:"not null;default:1"`
	IsPrimary        bool      `gorm:"not null;default:false"`
	UploadedAt       time.Time `gorm:"autoCreateTime"`
}

// NormalizePrimary keeps at most one image flagged as primary (the first one)
func NormalizePrimary(images []PostImage) {
	seen := false
	for i := range images {
		if images[i].IsPrimary {
			if seen {
				images[i].IsPrimary = false
			}
			seen = true
		}
	}
}

// PostImageSetPrimary flags one image of a post as primary and clears the rest
func PostImageSetPrimary(postID, imageID uint64) error {
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		var image PostImage
		if err := tx.Where("id = ? AND post_id = ?", imageID, postID).First(&image).Error; err != nil {
			return err
		}
		if err := tx.Model(&PostImage{}).Where("post_id = ?", postID).Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&image).Update("is_primary", true).Error
	})
}
