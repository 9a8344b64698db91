package pdf

import "testing"

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "doi: 10.1371/journal.pone.0123456", "10.1371/journal.pone.0123456"},
		{"in prose with trailing period", "available at 10.5281/zenodo.1234567. See also", "10.5281/zenodo.1234567"},
		{"none", "no identifier in this text", ""},
		{"too short", "10.1/x", ""},
		{"missing suffix", "10.1234/", ""},
		{"first of several", "10.1000/first then 10.2000/second", "10.1000/first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindDOI(tt.text); got != tt.want {
				t.Errorf("FindDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractDOIMissingFile(t *testing.T) {
	if _, err := ExtractDOI("does/not/exist.pdf"); err == nil {
		t.Error("missing file should error")
	}
}
