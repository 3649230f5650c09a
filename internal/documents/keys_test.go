package documents

import (
	"strings"
	"testing"
)

func TestBuildStorageKey(t *testing.T) {
	key := BuildStorageKey("org-1", "doc-1", "report.pdf")
	if key != "org-1/doc-1/report.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestGenerateDocumentIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateDocumentID()
		if id == "" || strings.ContainsAny(id, "/\\") {
			t.Fatalf("bad id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
