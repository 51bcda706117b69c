package models

import (
	"sort"
	"strings"
	"time"
)

type DeviceStatus string

const (
	DevicePending DeviceStatus = "PENDING"
	DeviceActive  DeviceStatus = "ACTIVE"
	DeviceRevoked DeviceStatus = "REVOKED"
)

// Device — зарегистрированный планшет/телефон персонала.
// Roles хранится как CSV; наружу всегда через RoleList/SetRoleList.
type Device struct {
	ID           uint         `gorm:"primaryKey"`
	DeviceID     string       `gorm:"column:device_id;type:varchar(64);uniqueIndex"`
	DisplayName  string       `gorm:"type:varchar(128)"`
	PublicKeyAlg string       `gorm:"column:public_key_alg;type:varchar(32)"`
	Status       DeviceStatus `gorm:"type:varchar(8);index"`
	Roles        string       `gorm:"type:varchar(255)"`
	CreatedAt    time.Time    `gorm:"index"`
	UpdatedAt    time.Time
	ActivatedAt  *time.Time
	RevokedAt    *time.Time
	LastSeenAt   *time.Time
}

// RoleList возвращает отсортированный список ролей; пустая строка — пустой список.
func (d *Device) RoleList() []string {
	if strings.TrimSpace(d.Roles) == "" {
		return []string{}
	}
	parts := strings.Split(d.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (d *Device) SetRoleList(roles []string) {
	rs := append([]string(nil), roles...)
	sort.Strings(rs)
	d.Roles = strings.Join(rs, ",")
}

// HasRole: пустой набор ролей = без ограничений (обратная совместимость,
// устройства активированные до ввода ролей).
func (d *Device) HasRole(role string) bool {
	if strings.TrimSpace(d.Roles) == "" {
		return true
	}
	for _, r := range d.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}
