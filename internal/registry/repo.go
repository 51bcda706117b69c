package registry

import (
	"errors"
	"time"

	"innkeep/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("device not found")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(id uint) (models.Device, error) {
	var d models.Device
	if err := r.db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, ErrNotFound
		}
		return d, err
	}
	return d, nil
}

func (r *Repo) FindByDeviceID(deviceID string) (models.Device, error) {
	var d models.Device
	if err := r.db.Where("device_id = ?", deviceID).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, ErrNotFound
		}
		return d, err
	}
	return d, nil
}

// ListByStatus — устройства по группам жизненного цикла, новые сверху.
func (r *Repo) ListByStatus() (pending, active, revoked []models.Device, err error) {
	byStatus := func(st models.DeviceStatus) ([]models.Device, error) {
		var out []models.Device
		e := r.db.Where("status = ?", st).Order("created_at DESC").Find(&out).Error
		return out, e
	}
	if pending, err = byStatus(models.DevicePending); err != nil {
		return
	}
	if active, err = byStatus(models.DeviceActive); err != nil {
		return
	}
	revoked, err = byStatus(models.DeviceRevoked)
	return
}

func (r *Repo) CountPending() (int64, error) {
	var n int64
	err := r.db.Model(&models.Device{}).Where("status = ?", models.DevicePending).Count(&n).Error
	return n, err
}

// Activate — только из PENDING; из других статусов тихий no-op.
// Пустой отфильтрованный выбор ролей оставляет текущие роли нетронутыми
// (в отличие от SetRoles).
func (r *Repo) Activate(id uint, requested []string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var d models.Device
		if err := tx.First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if d.Status != models.DevicePending {
			return nil
		}
		if filtered := models.FilterRoles(requested); len(filtered) > 0 {
			d.SetRoleList(filtered)
		}
		d.Status = models.DeviceActive
		d.ActivatedAt = &now
		return tx.Save(&d).Error
	})
}

// SetRoles заменяет набор ролей активного устройства; пустой результат —
// валидная замена. Для неактивных — тихий no-op.
func (r *Repo) SetRoles(id uint, requested []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var d models.Device
		if err := tx.First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if d.Status != models.DeviceActive {
			return nil
		}
		d.SetRoleList(models.FilterRoles(requested))
		return tx.Save(&d).Error
	})
}

func (r *Repo) Revoke(id uint, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var d models.Device
		if err := tx.First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if d.Status == models.DeviceRevoked {
			return nil
		}
		d.Status = models.DeviceRevoked
		d.RevokedAt = &now
		return tx.Save(&d).Error
	})
}

func (r *Repo) Delete(id uint) error {
	res := r.db.Delete(&models.Device{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteAllPending() (int64, error) {
	res := r.db.Where("status = ?", models.DevicePending).Delete(&models.Device{})
	return res.RowsAffected, res.Error
}

// RegisterPending — регистрация устройства агентом; идемпотентна по device_id.
func (r *Repo) RegisterPending(deviceID, name, alg string) (models.Device, bool, error) {
	var d models.Device
	err := r.db.Where("device_id = ?", deviceID).First(&d).Error
	if err == nil {
		return d, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return d, false, err
	}
	d = models.Device{
		DeviceID:     deviceID,
		DisplayName:  name,
		PublicKeyAlg: alg,
		Status:       models.DevicePending,
	}
	if err := r.db.Create(&d).Error; err != nil {
		return d, false, err
	}
	return d, true, nil
}

func (r *Repo) TouchLastSeen(deviceID string, at time.Time) error {
	res := r.db.Model(&models.Device{}).
		Where("device_id = ?", deviceID).
		Update("last_seen_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
