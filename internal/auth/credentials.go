package auth

import (
	"crypto/subtle"
	"errors"

	"innkeep/config"
	"innkeep/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminPasswordKey = "admin_password_hash"

var (
	ErrBadPassword  = errors.New("invalid password")
	ErrWeakPassword = errors.New("password too short")
)

// Credentials — проверка и смена пароля администратора.
// Хэш в settings (если админ менял пароль) имеет приоритет над конфигом.
type Credentials struct {
	db  *gorm.DB
	cfg config.AdminConfig
}

func NewCredentials(db *gorm.DB, cfg config.AdminConfig) *Credentials {
	return &Credentials{db: db, cfg: cfg}
}

func (c *Credentials) storedHash() string {
	if c.db == nil {
		return ""
	}
	var s models.Setting
	if err := c.db.Where("setting_key = ?", adminPasswordKey).First(&s).Error; err != nil {
		return ""
	}
	return s.Value
}

func (c *Credentials) Check(password string) bool {
	if hash := c.storedHash(); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	if c.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.cfg.PasswordHash), []byte(password)) == nil
	}
	if c.cfg.Password != "" {
		return subtle.ConstantTimeCompare([]byte(c.cfg.Password), []byte(password)) == 1
	}
	return false
}

// Change проверяет текущий пароль и сохраняет bcrypt-хэш нового в БД.
func (c *Credentials) Change(current, next string) error {
	if !c.Check(current) {
		return ErrBadPassword
	}
	if len(next) < 8 {
		return ErrWeakPassword
	}
	if c.db == nil {
		return errors.New("password change requires a database")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var s models.Setting
	err = c.db.Where("setting_key = ?", adminPasswordKey).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.db.Create(&models.Setting{Key: adminPasswordKey, Value: string(hash)}).Error
	}
	if err != nil {
		return err
	}
	s.Value = string(hash)
	return c.db.Save(&s).Error
}
