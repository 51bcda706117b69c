package models

import (
	"sort"
	"strings"
)

// RoleOption — роль персонала и её подпись в интерфейсе.
type RoleOption struct {
	Key   string
	Label string
}

// WebAppRoles — фиксированный набор ролей веб-приложения.
var WebAppRoles = []RoleOption{
	{Key: "housekeeping", Label: "Pokojská"},
	{Key: "frontdesk", Label: "Recepce"},
	{Key: "maintenance", Label: "Údržba"},
	{Key: "breakfast", Label: "Snídaně"},
}

func RoleTitle(key string) (string, bool) {
	for _, r := range WebAppRoles {
		if r.Key == key {
			return r.Label, true
		}
	}
	return "", false
}

// FilterRoles нормализует запрошенные роли и молча отбрасывает неизвестные.
// Результат отсортирован и без дублей.
func FilterRoles(requested []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(requested))
	for _, r := range requested {
		key := strings.ToLower(strings.TrimSpace(r))
		if _, known := RoleTitle(key); !known {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
