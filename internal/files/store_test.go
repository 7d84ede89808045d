package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesFileAndReturnsRef(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := st.Save("report.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/") {
		t.Fatalf("ref missing prefix: %q", ref)
	}
	if !strings.HasSuffix(ref, "-report.pdf") {
		t.Fatalf("ref missing original name: %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(st.Dir(), strings.TrimPrefix(ref, "/uploads/")))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("unexpected file content: %q", data)
	}
}

func TestSaveUniqueNamesForSameFilename(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref1, err := st.Save("a.txt", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	ref2, err := st.Save("a.txt", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if ref1 == ref2 {
		t.Fatalf("expected unique refs, both %q", ref1)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"doc.pdf", "doc.pdf"},
		{"../../etc/passwd", "passwd"},
		{"/tmp/evil.sh", "evil.sh"},
		{"my report.pdf", "my_report.pdf"},
		{"", "file"},
		{"..", "file"},
	}
	for _, tc := range cases {
		if got := sanitize(tc.in); got != tc.want {
			t.Errorf("sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
