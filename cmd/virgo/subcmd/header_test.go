package subcmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLicenseHeaderLayout(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	files = append(files, filepath.Join("..", "main.go"))

	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("failed to read %s: %v", file, err)
		}
		src := string(data)
		if !strings.HasPrefix(src, "/*") {
			continue
		}
		if !strings.Contains(src, "*/\n\npackage ") || strings.Contains(src, "*/\n\n\n") {
			t.Errorf("%s: license header must be followed by exactly one blank line", file)
		}
	}
}
