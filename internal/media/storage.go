package media

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"

	_ "image/gif"
	_ "image/png"

	"innkeep/internal/logs"
	"innkeep/internal/models"

	"golang.org/x/image/draw"
)

var (
	ErrNotFound       = errors.New("media file not found")
	ErrInvalidVariant = errors.New("invalid media variant")
)

const (
	thumbMaxDimension = 480 // длинная сторона миниатюры
	thumbQuality      = 75
)

// Storage — файловое хранилище фото отчётов.
// Раскладка: <root>/reports/<reportID>/<photoID>.jpg
//            <root>/reports/<reportID>/thumbs/<photoID>.jpg
type Storage struct {
	root string
}

func NewStorage(root string) *Storage { return &Storage{root: root} }

func (s *Storage) reportDir(reportID uint) string {
	return filepath.Join(s.root, "reports", strconv.FormatUint(uint64(reportID), 10))
}

func (s *Storage) OriginalPath(p models.ReportPhoto) string {
	return filepath.Join(s.reportDir(p.ReportID), strconv.FormatUint(uint64(p.ID), 10)+".jpg")
}

func (s *Storage) ThumbPath(p models.ReportPhoto) string {
	return filepath.Join(s.reportDir(p.ReportID), "thumbs", strconv.FormatUint(uint64(p.ID), 10)+".jpg")
}

// Resolve отдаёт путь к файлу варианта.
// thumb генерируется на месте, если есть оригинал.
func (s *Storage) Resolve(p models.ReportPhoto, variant string) (string, error) {
	switch variant {
	case "original":
		path := s.OriginalPath(p)
		if _, err := os.Stat(path); err != nil {
			return "", ErrNotFound
		}
		return path, nil
	case "thumb":
		return s.EnsureThumb(p)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVariant, variant)
	}
}

// EnsureThumb возвращает путь к миниатюре, при отсутствии — генерирует её
// из оригинала. Любой сбой генерации деградирует в ErrNotFound: битый файл
// не должен ронять страницу списка.
func (s *Storage) EnsureThumb(p models.ReportPhoto) (string, error) {
	thumb := s.ThumbPath(p)
	if _, err := os.Stat(thumb); err == nil {
		return thumb, nil
	}
	orig := s.OriginalPath(p)
	if _, err := os.Stat(orig); err != nil {
		return "", ErrNotFound
	}
	if err := generateThumb(orig, thumb); err != nil {
		logs.Logger.Warnf("thumbnail %s: %v", orig, err)
		return "", ErrNotFound
	}
	return thumb, nil
}

// generateThumb: декодировать, привести к RGB, вписать в 480px по длинной
// стороне (без апскейла) и пересохранить в JPEG q75.
// Гонка при конкурентной генерации допустима — последняя запись выигрывает.
func generateThumb(origPath, thumbPath string) error {
	f, err := os.Open(origPath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("empty image %dx%d", w, h)
	}

	nw, nh := w, h
	if w > thumbMaxDimension || h > thumbMaxDimension {
		scale := float64(thumbMaxDimension) / float64(w)
		if h > w {
			scale = float64(thumbMaxDimension) / float64(h)
		}
		nw = int(float64(w) * scale)
		nh = int(float64(h) * scale)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
	}

	// RGBA-холст нормализует палитровые/серые/CMYK исходники.
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(thumbPath)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		_ = out.Close()
		_ = os.Remove(thumbPath)
		return fmt.Errorf("encode: %w", err)
	}
	return out.Close()
}

// RemoveReport удаляет каталог медиа отчёта. Вызывается best-effort после
// удаления записи в БД; ошибку здесь логируем, но не поднимаем — запись в БД
// авторитетна.
func (s *Storage) RemoveReport(reportID uint) {
	dir := s.reportDir(reportID)
	if err := os.RemoveAll(dir); err != nil {
		logs.Logger.Warnf("media cleanup %s: %v", dir, err)
	}
}
