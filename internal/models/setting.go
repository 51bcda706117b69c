package models

import "time"

// Setting — key/value настройки, которые админ меняет из консоли
// (сейчас только хэш пароля администратора).
type Setting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"column:setting_key;type:varchar(64);uniqueIndex"`
	Value     string `gorm:"type:varchar(255)"`
	UpdatedAt time.Time
}
