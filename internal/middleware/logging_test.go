package middleware

import "testing"

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/videos/dQw4w9WgXcQ/evaluation", "/api/videos/:videoId/evaluation"},
		{"/api/admin/changes/3f1c2b8e-9d4a-4f7b-8a51-2c6d9e0f1a2b", "/api/admin/changes/:changeId"},
		{"/api/admin/config/approve/abc", "/api/admin/config/approve/:changeId"},
		{"/api/admin/config/reject/abc", "/api/admin/config/reject/:changeId"},
		{"/api/admin/config/rollback/3", "/api/admin/config/rollback/:index"},
		{"/api/admin/history", "/api/admin/history"},
		{"/health/live", "/health/live"},
		{"/api/videos/", "/api/videos/"},
	}
	for _, tt := range tests {
		if got := SanitizePath(tt.path); got != tt.want {
			t.Errorf("SanitizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
