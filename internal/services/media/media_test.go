package media

import "testing"

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "delivery url",
			url:  "https://res.cloudinary.com/demo/image/upload/v1700000000/dev-events/abc123.png",
			want: "dev-events/abc123",
		},
		{
			name: "no extension",
			url:  "https://res.cloudinary.com/demo/image/upload/dev-events/abc123",
			want: "dev-events/abc123",
		},
		{
			name: "multiple dots",
			url:  "https://res.cloudinary.com/demo/image/upload/dev-events/some.file.name.jpg",
			want: "dev-events/some.file.name",
		},
		{name: "empty", url: "", want: ""},
		{name: "trailing slash", url: "https://res.cloudinary.com/demo/", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicIDFromURL(tc.url); got != tc.want {
				t.Fatalf("PublicIDFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestNewCloudinaryUploaderValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing cloud name", cfg: Config{APIKey: "key", APISecret: "secret"}},
		{name: "missing key", cfg: Config{CloudName: "demo", APISecret: "secret"}},
		{name: "missing secret", cfg: Config{CloudName: "demo", APIKey: "key"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCloudinaryUploader(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
