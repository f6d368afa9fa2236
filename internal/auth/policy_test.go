package auth

import "testing"

func TestPolicyIsAdmin(t *testing.T) {
	p := NewPolicy([]string{"Admin@Example.com", "  second@example.com  ", ""})

	tests := []struct {
		email string
		want  bool
	}{
		{"admin@example.com", true},
		{"ADMIN@EXAMPLE.COM", true},
		{"second@example.com", true},
		{"other@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.IsAdmin(tt.email); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestPolicyEmpty(t *testing.T) {
	p := NewPolicy(nil)
	if p.IsAdmin("anyone@example.com") {
		t.Error("empty policy should admit no admins")
	}
}
