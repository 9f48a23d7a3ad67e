package models

import (
	"stagesite/db"
	"time"
)

// Contact is a message left through the contact form. Only Answered ever changes
type Contact struct {
	ID       uint64    `gorm:"primaryKey"`
	Name     string    `gorm:"type:varchar(100);not null"`
	Email    string    `gorm:"type:varchar(150);not null"`
	Message  string    `gorm:"type:text;not null"`
	SentAt   time.Time `gorm:"autoCreateTime;index"`
	Answered bool      `gorm:"not null;default:false"`
}

func (c *Contact) Create() error {
	c.ID = 0
	c.Answered = false
	return db.Instance.Create(c).Error
}

// ContactList returns all messages, newest first
func ContactList() (contacts []Contact, err error) {
	err = db.Instance.Order("sent_at DESC, id DESC").Find(&contacts).Error
	return
}

func ContactByID(id uint64) (contact Contact, err error) {
	err = db.Instance.First(&contact, id).Error
	return
}

// ContactToggleAnswered flips the answered flag and returns the new state
func ContactToggleAnswered(id uint64) (contact Contact, err error) {
	if contact, err = ContactByID(id); err != nil {
		return
	}
	contact.Answered = !contact.Answered
	err = db.Instance.Model(&contact).Update("answered", contact.Answered).Error
	return
}

func ContactDelete(id uint64) error {
	return db.Instance.Delete(&Contact{}, id).Error
}

func ContactCounts() (total, unanswered int64) {
	db.Instance.Model(&Contact{}).Count(&total)
	db.Instance.Model(&Contact{}).Where("answered = ?", false).Count(&unanswered)
	return
}
