package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "org/doc/file.pdf", want: "org/doc/file.pdf"},
		{name: "simple prefix", prefix: "documents", key: "org/doc/file.pdf", want: "documents/org/doc/file.pdf"},
		{name: "prefix trailing slash", prefix: "documents/", key: "org/doc/file.pdf", want: "documents/org/doc/file.pdf"},
		{name: "prefix and key slashes", prefix: "/documents/", key: "/org/doc/file.pdf", want: "documents/org/doc/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "org/doc/file.pdf", want: "root/sub/org/doc/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: ""},
		{raw: "  docs/ ", want: "docs"},
		{raw: "/docs/archive/", want: "docs/archive"},
	}

	for _, tt := range tests {
		if got := normalizePrefix(tt.raw); got != tt.want {
			t.Fatalf("normalizePrefix(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
