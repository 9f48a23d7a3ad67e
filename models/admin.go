package models

import (
	"errors"
	"stagesite/db"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is lowered in tests
var BcryptCost = bcrypt.DefaultCost

// AdminUser is the credential store behind the admin gate
type AdminUser struct {
	ID           uint64 `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
}

// AdminSession is an explicitly issued (and revocable) admin login
type AdminSession struct {
	Token       string    `gorm:"type:varchar(36);primaryKey"`
	AdminUserID uint64    `gorm:"not null;index"`
	AdminUser   AdminUser `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

func (u *AdminUser) SetPassword(plainTextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), BcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *AdminUser) CheckPassword(plainTextPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainTextPassword)) == nil
}

// AdminEnsure creates the admin account, or updates its password if it changed
func AdminEnsure(username, plainTextPassword string) error {
	var u AdminUser
	err := db.Instance.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u.Username = username
		if err = u.SetPassword(plainTextPassword); err != nil {
			return err
		}
		return db.Instance.Create(&u).Error
	}
	if err != nil {
		return err
	}
	if u.CheckPassword(plainTextPassword) {
		return nil
	}
	if err = u.SetPassword(plainTextPassword); err != nil {
		return err
	}
	return db.Instance.Model(&u).Update("password_hash", u.PasswordHash).Error
}

func AdminLogin(username, plainTextPassword string) (u AdminUser, err error) {
	if err = db.Instance.Where("username = ?", username).First(&u).Error; err != nil {
		return AdminUser{}, ErrInvalidLogin
	}
	if !u.CheckPassword(plainTextPassword) {
		return AdminUser{}, ErrInvalidLogin
	}
	return u, nil
}

func AdminSessionIssue(u *AdminUser) (s AdminSession, err error) {
	s = AdminSession{
		Token:       uuid.NewString(),
		AdminUserID: u.ID,
	}
	err = db.Instance.Omit("AdminUser").Create(&s).Error
	s.AdminUser = *u
	return
}

// AdminSessionValid loads a session that exists and was not revoked
func AdminSessionValid(token string) (s AdminSession, ok bool) {
	if token == "" {
		return s, false
	}
	err := db.Instance.Preload("AdminUser").
		Where("token = ? AND revoked_at IS NULL", token).
		First(&s).Error
	return s, err == nil
}

func AdminSessionRevoke(token string) error {
	return db.Instance.Model(&AdminSession{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", time.Now()).Error
}
