package youtube

import "testing"

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"extra params", "https://www.youtube.com/watch?t=10&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"garbage", "not a video", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVideoID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseVideoID(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVideoID(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseVideoID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
