package pathfilter

import "testing"

func TestAccept(t *testing.T) {
	f := New(".")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"plain file", "a.md", true},
		{"nested file", "notes/a.md", true},
		{"deeply nested", "notes/projects/2024/plan.md", true},
		{"hidden file", ".env", false},
		{"hidden directory", ".obsidian/config", false},
		{"hidden mid-path", "notes/.trash/a.md", false},
		{"hidden leaf", "notes/.a.md.swp", false},
		{"dot segment ignored", "./notes/a.md", true},
		{"current dir", ".", true},
		{"parent navigation ignored", "../notes/a.md", true},
		{"absolute path", "/vault/notes/a.md", true},
		{"absolute hidden", "/vault/.git/HEAD", false},
		{"trailing separator", "notes/subdir/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Accept(tt.path); got != tt.want {
				t.Errorf("Accept(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestAcceptCustomPrefix(t *testing.T) {
	f := New("_")

	if f.Accept("_build/out.md") {
		t.Error("Accept(_build/out.md) = true, want false with prefix _")
	}
	if !f.Accept(".hidden/a.md") {
		t.Error("Accept(.hidden/a.md) = false, want true with prefix _")
	}
}

func TestNewDefaultsPrefix(t *testing.T) {
	f := New("")

	if f.Prefix() != "." {
		t.Errorf("Prefix() = %q, want %q", f.Prefix(), ".")
	}
	if f.Accept(".git/config") {
		t.Error("Accept(.git/config) = true, want false with default prefix")
	}
}
