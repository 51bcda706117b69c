package reports

import (
	"errors"
	"strconv"
	"time"

	"innkeep/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("report not found")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

type ListResult struct {
	Total      int64
	Page       int
	PagesTotal int
	PerPage    int
	Reports    []models.Report
	// Фото страницы, сгруппированные по отчёту, отсортированы по sort_order ASC.
	PhotosByReport map[uint][]models.ReportPhoto
}

func (r *Repo) applyFilters(tx *gorm.DB, q ListQuery) *gorm.DB {
	if q.Category != nil {
		tx = tx.Where("report_type = ?", *q.Category)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.Room != nil {
		tx = tx.Where("room = ?", strconv.Itoa(*q.Room))
	}
	if q.Day != nil {
		start := *q.Day
		end := start.Add(24 * time.Hour)
		tx = tx.Where("created_at >= ? AND created_at < ?", start, end)
	}
	return tx
}

// List — листинг с фильтрами/сортировкой/пагинацией. Только чтение.
func (r *Repo) List(q ListQuery) (ListResult, error) {
	out := ListResult{Page: q.Page, PerPage: q.PerPage, PhotosByReport: map[uint][]models.ReportPhoto{}}

	if err := r.applyFilters(r.db.Model(&models.Report{}), q).Count(&out.Total).Error; err != nil {
		return out, err
	}
	out.PagesTotal = PagesTotal(out.Total, q.PerPage)

	err := r.applyFilters(r.db.Model(&models.Report{}), q).
		Order(sortClauses[q.Sort]).
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&out.Reports).Error
	if err != nil {
		return out, err
	}

	if len(out.Reports) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(out.Reports))
	for _, rep := range out.Reports {
		ids = append(ids, rep.ID)
	}
	var photos []models.ReportPhoto
	if err := r.db.Where("report_id IN ?", ids).
		Order("report_id ASC, sort_order ASC").
		Find(&photos).Error; err != nil {
		return out, err
	}
	for _, p := range photos {
		out.PhotosByReport[p.ReportID] = append(out.PhotosByReport[p.ReportID], p)
	}
	return out, nil
}

func (r *Repo) Get(id uint) (models.Report, error) {
	var rep models.Report
	if err := r.db.First(&rep, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rep, ErrNotFound
		}
		return rep, err
	}
	return rep, nil
}

func (r *Repo) GetPhoto(id uint) (models.ReportPhoto, error) {
	var p models.ReportPhoto
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, ErrNotFound
		}
		return p, err
	}
	return p, nil
}

// Detail — отчёт с фото (sort_order ASC) и историей (новые сверху).
func (r *Repo) Detail(id uint) (models.Report, []models.ReportPhoto, []models.ReportHistory, error) {
	rep, err := r.Get(id)
	if err != nil {
		return rep, nil, nil, err
	}
	var photos []models.ReportPhoto
	if err := r.db.Where("report_id = ?", id).Order("sort_order ASC").Find(&photos).Error; err != nil {
		return rep, nil, nil, err
	}
	var history []models.ReportHistory
	if err := r.db.Where("report_id = ?", id).Order("created_at DESC").Find(&history).Error; err != nil {
		return rep, photos, nil, err
	}
	return rep, photos, history, nil
}

// MarkDone переводит отчёт в DONE; повторный вызов — no-op.
// done_by намеренно сбрасывается: действие из админки не атрибутируется
// устройству, актора фиксирует строка истории.
func (r *Repo) MarkDone(id uint, now time.Time) (bool, error) {
	changed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rep models.Report
		if err := tx.First(&rep, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		tr, ok := PlanMarkDone(rep.Status)
		if !ok {
			return nil
		}
		rep.Status = tr.To
		rep.DoneAt = &now
		rep.DoneByDeviceID = nil
		if err := tx.Save(&rep).Error; err != nil {
			return err
		}
		changed = true
		return tx.Create(&models.ReportHistory{
			ReportID:   rep.ID,
			Action:     tr.Action,
			ActorType:  models.ActorAdmin,
			FromStatus: tr.From,
			ToStatus:   tr.To,
		}).Error
	})
	return changed, err
}

// Reopen возвращает отчёт в OPEN и чистит done_at/done_by; из OPEN — no-op.
func (r *Repo) Reopen(id uint, now time.Time) (bool, error) {
	changed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rep models.Report
		if err := tx.First(&rep, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		tr, ok := PlanReopen(rep.Status)
		if !ok {
			return nil
		}
		rep.Status = tr.To
		rep.DoneAt = nil
		rep.DoneByDeviceID = nil
		if err := tx.Save(&rep).Error; err != nil {
			return err
		}
		changed = true
		return tx.Create(&models.ReportHistory{
			ReportID:   rep.ID,
			Action:     tr.Action,
			ActorType:  models.ActorAdmin,
			FromStatus: tr.From,
			ToStatus:   tr.To,
		}).Error
	})
	return changed, err
}

// Delete удаляет отчёт каскадом (фото + история) в одной транзакции.
// Файлы медиа чистит вызывающая сторона best-effort после коммита.
func (r *Repo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var rep models.Report
		if err := tx.First(&rep, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Report{}, id).Error
	})
}

// CountOpenByType — счётчики для дашборда.
func (r *Repo) CountOpenByType() (finds, issues int64, err error) {
	if err = r.db.Model(&models.Report{}).
		Where("status = ? AND report_type = ?", models.ReportOpen, models.ReportFind).
		Count(&finds).Error; err != nil {
		return
	}
	err = r.db.Model(&models.Report{}).
		Where("status = ? AND report_type = ?", models.ReportOpen, models.ReportIssue).
		Count(&issues).Error
	return
}
