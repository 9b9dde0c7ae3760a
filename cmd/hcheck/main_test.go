package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrjoshuak/go-hcompress/hcompress"
)

func testStream(t *testing.T, scale int) []byte {
	t.Helper()
	g, err := hcompress.GridFrom(3, 5, []int32{
		4, 8, 15, 16, 23,
		42, 4, 8, 15, 16,
		23, 42, 4, 8, 15,
	})
	if err != nil {
		t.Fatal(err)
	}
	stream, err := hcompress.Compress(g, scale)
	if err != nil {
		t.Fatal(err)
	}
	return stream
}

func TestValidateDataOK(t *testing.T) {
	r := validateData("ok.H", testStream(t, 1), true)
	if !r.IsValid() {
		t.Fatalf("valid stream reported invalid: %+v", r.Issues)
	}
	if r.Min != 4 || r.Max != 42 {
		t.Errorf("Min/Max = %d/%d, want 4/42", r.Min, r.Max)
	}
	if r.Header.Nx != 3 || r.Header.Ny != 5 {
		t.Errorf("Header = %v", r.Header)
	}
}

func TestValidateDataLossyWarning(t *testing.T) {
	r := validateData("lossy.H", testStream(t, 4), true)
	if !r.IsValid() {
		t.Fatalf("lossy stream reported invalid: %+v", r.Issues)
	}
	found := false
	for _, issue := range r.Issues {
		if issue.Severity == "warning" && strings.Contains(issue.Message, "lossy") {
			found = true
		}
	}
	if !found {
		t.Error("strict mode did not warn about a lossy stream")
	}
}

func TestValidateDataBroken(t *testing.T) {
	stream := testStream(t, 1)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"magic", append([]byte{0}, stream[1:]...), "not an H-compress stream"},
		{"short", stream[:len(stream)-1], "truncated"},
		{"trailing", append(append([]byte(nil), stream...), 0), "corrupt"},
	}
	for _, tt := range tests {
		r := validateData(tt.name, tt.data, false)
		if r.IsValid() {
			t.Errorf("%s: broken stream reported valid", tt.name)
			continue
		}
		if !strings.Contains(r.Issues[0].Message, tt.want) {
			t.Errorf("%s: issue %q does not mention %q", tt.name, r.Issues[0].Message, tt.want)
		}
	}
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.H")
	if err := os.WriteFile(path, testStream(t, 1), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := validateFile(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsValid() {
		t.Errorf("file reported invalid: %+v", r.Issues)
	}

	if _, err := validateFile(filepath.Join(t.TempDir(), "missing.H"), false); err == nil {
		t.Error("missing file did not fail")
	}
}
