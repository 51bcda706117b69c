package models

import (
	"reflect"
	"testing"
)

func TestFilterRoles(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"unknown dropped", []string{"housekeeping", "bogus_role"}, []string{"housekeeping"}},
		{"normalized", []string{" Frontdesk ", "MAINTENANCE"}, []string{"frontdesk", "maintenance"}},
		{"dedup", []string{"breakfast", "breakfast"}, []string{"breakfast"}},
		{"all unknown", []string{"chef", "manager"}, []string{}},
		{"empty", nil, []string{}},
		{"sorted", []string{"maintenance", "breakfast"}, []string{"breakfast", "maintenance"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterRoles(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterRoles(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeviceRoleList(t *testing.T) {
	d := Device{Roles: ""}
	if got := d.RoleList(); len(got) != 0 {
		t.Fatalf("empty roles must yield empty list, got %v", got)
	}
	d.SetRoleList([]string{"maintenance", "breakfast"})
	want := []string{"breakfast", "maintenance"}
	if got := d.RoleList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("RoleList = %v, want %v", got, want)
	}
}

// Пустой набор ролей = доступ ко всем страницам (обратная совместимость).
func TestDeviceHasRole(t *testing.T) {
	d := Device{Roles: ""}
	if !d.HasRole("housekeeping") {
		t.Fatal("device without roles must be unrestricted")
	}
	d.SetRoleList([]string{"frontdesk"})
	if !d.HasRole("frontdesk") {
		t.Fatal("assigned role must be allowed")
	}
	if d.HasRole("breakfast") {
		t.Fatal("unassigned role must be rejected when role set is non-empty")
	}
}
