// Package citation models CFF (Citation File Format) 1.2.0 documents:
// parsing, field validation and rendering to citation formats.
package citation

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SupportedVersions lists the CFF schema versions this package accepts.
var SupportedVersions = []string{"1.0.3", "1.1.0", "1.2.0"}

// Work types permitted by the CFF schema.
var ValidTypes = []string{"software", "dataset"}

// Author is one entry of the author list. JSON output mirrors the CFF
// key names so the document keeps its schema vocabulary in either
// encoding.
type Author struct {
	GivenNames  string `yaml:"given-names" json:"given-names"`
	FamilyNames string `yaml:"family-names" json:"family-names"`
	NameSuffix  string `yaml:"name-suffix,omitempty" json:"name-suffix,omitempty"`
	Affiliation string `yaml:"affiliation,omitempty" json:"affiliation,omitempty"`
	Email       string `yaml:"email,omitempty" json:"email,omitempty"`
	ORCID       string `yaml:"orcid,omitempty" json:"orcid,omitempty"`
}

// File is a CFF citation document.
type File struct {
	CFFVersion     string   `yaml:"cff-version" json:"cff-version"`
	Message        string   `yaml:"message" json:"message"`
	Title          string   `yaml:"title" json:"title"`
	Type           string   `yaml:"type,omitempty" json:"type,omitempty"`
	Authors        []Author `yaml:"authors" json:"authors"`
	Version        string   `yaml:"version,omitempty" json:"version,omitempty"`
	DOI            string   `yaml:"doi,omitempty" json:"doi,omitempty"`
	DateReleased   string   `yaml:"date-released,omitempty" json:"date-released,omitempty"`
	RepositoryCode string   `yaml:"repository-code,omitempty" json:"repository-code,omitempty"`
	URL            string   `yaml:"url,omitempty" json:"url,omitempty"`
	Abstract       string   `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	License        string   `yaml:"license,omitempty" json:"license,omitempty"`
}

// Parse decodes a CFF document. Unknown keys are ignored; structural
// YAML errors are returned.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing citation file: %w", err)
	}
	return &f, nil
}

// Load reads and parses a CFF document from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading citation file: %w", err)
	}
	return Parse(data)
}

// Issue is a single validation finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// orcidPattern matches the canonical ORCID URL form.
var orcidPattern = regexp.MustCompile(`^https://orcid\.org/\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// spdxPattern is a plausibility check for SPDX license identifiers,
// not a registry lookup.
var spdxPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+-]*$`)

// datePattern matches CFF date-released values (YYYY-MM-DD).
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks the document against the CFF field requirements and
// returns every issue found. An empty slice means the file is valid.
func (f *File) Validate() []Issue {
	var issues []Issue
	add := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if f.CFFVersion == "" {
		add("cff-version", "required field is missing or empty")
	} else if !contains(SupportedVersions, f.CFFVersion) {
		add("cff-version", "unknown schema version %q (supported: %s)",
			f.CFFVersion, strings.Join(SupportedVersions, ", "))
	}

	if strings.TrimSpace(f.Message) == "" {
		add("message", "required field is missing or empty")
	}
	if strings.TrimSpace(f.Title) == "" {
		add("title", "required field is missing or empty")
	}

	if f.Type != "" && !contains(ValidTypes, f.Type) {
		add("type", "invalid type %q (valid: %s)", f.Type, strings.Join(ValidTypes, ", "))
	}

	if len(f.Authors) == 0 {
		add("authors", "at least one author is required")
	}
	for i, a := range f.Authors {
		field := fmt.Sprintf("authors[%d]", i)
		if a.GivenNames == "" && a.FamilyNames == "" {
			add(field, "author has neither given-names nor family-names")
		}
		if a.ORCID != "" && !orcidPattern.MatchString(a.ORCID) {
			add(field+".orcid", "malformed ORCID %q (want https://orcid.org/XXXX-XXXX-XXXX-XXXX)", a.ORCID)
		}
		if a.Email != "" && !strings.Contains(a.Email, "@") {
			add(field+".email", "malformed email %q", a.Email)
		}
	}

	if f.RepositoryCode != "" {
		if err := checkHTTPURL(f.RepositoryCode); err != nil {
			add("repository-code", "%v", err)
		}
	}
	if f.URL != "" {
		if err := checkHTTPURL(f.URL); err != nil {
			add("url", "%v", err)
		}
	}

	if f.License != "" && !spdxPattern.MatchString(f.License) {
		add("license", "%q does not look like an SPDX identifier", f.License)
	}

	if f.DateReleased != "" && !datePattern.MatchString(f.DateReleased) {
		add("date-released", "%q is not a YYYY-MM-DD date", f.DateReleased)
	}

	return issues
}

// checkHTTPURL verifies a value is an absolute http(s) URL.
func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
