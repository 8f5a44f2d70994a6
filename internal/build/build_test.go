package build

import "testing"

func TestParse(t *testing.T) {
	b := parse("abc123", "2024-05-01T10:00:00Z", "v1.2.0", "https://example.com/repo")

	if b.CommitURL != "https://example.com/repo/tree/abc123" {
		t.Errorf("CommitURL = %q", b.CommitURL)
	}
	if got := b.String(); got != "v1.2.0 (abc123, 2024-05-01)" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseDev(t *testing.T) {
	b := parse("", "", "dev", "https://example.com/repo")

	if b.CommitURL != "" {
		t.Errorf("CommitURL = %q, want empty", b.CommitURL)
	}
	if b.String() != "dev" {
		t.Errorf("String() = %q, want dev", b.String())
	}
}
