package citation

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

const validCFF = `cff-version: 1.2.0
title: "STARS: ciw urgent care call centre example"
message: "If you use this software, please cite it as below."
type: software
authors:
  - given-names: Thomas
    family-names: Monks
    affiliation: University of Exeter
    orcid: "https://orcid.org/0000-0003-2631-4481"
  - given-names: Alison
    family-names: Harper
    affiliation: University of Exeter
    orcid: "https://orcid.org/0000-0001-5274-5037"
repository-code: "https://github.com/pythonhealthdatascience/stars-ciw-example"
url: "https://pythonhealthdatascience.github.io/stars-ciw-example"
keywords:
  - discrete-event simulation
  - queueing networks
  - open science
license: MIT
date-released: "2024-02-01"
version: "2.1.0"
`

func TestParseValidFile(t *testing.T) {
	f, err := Parse([]byte(validCFF))
	if err != nil {
		t.Fatal(err)
	}

	if f.CFFVersion != "1.2.0" {
		t.Errorf("cff-version = %q, want 1.2.0", f.CFFVersion)
	}
	if f.Title != "STARS: ciw urgent care call centre example" {
		t.Errorf("title = %q", f.Title)
	}
	if len(f.Authors) != 2 {
		t.Fatalf("got %d authors, want 2", len(f.Authors))
	}
	if f.Authors[0].FamilyNames != "Monks" || f.Authors[0].GivenNames != "Thomas" {
		t.Errorf("author 0 = %+v", f.Authors[0])
	}
	if f.Authors[1].ORCID != "https://orcid.org/0000-0001-5274-5037" {
		t.Errorf("author 1 orcid = %q", f.Authors[1].ORCID)
	}
	if f.License != "MIT" {
		t.Errorf("license = %q, want MIT", f.License)
	}
	if len(f.Keywords) != 3 {
		t.Errorf("got %d keywords, want 3", len(f.Keywords))
	}
}

func TestJSONKeepsCFFKeyNames(t *testing.T) {
	f, err := Parse([]byte(validCFF))
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		`"cff-version"`, `"given-names"`, `"family-names"`,
		`"repository-code"`, `"date-released"`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("JSON encoding missing CFF key %s:\n%s", key, data)
		}
	}
	if strings.Contains(string(data), "cff_version") {
		t.Errorf("JSON encoding should not use snake_case keys:\n%s", data)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	doc := "cff-version: 1.2.0\ntitle: x\nmessage: m\nauthors: []\nfuture-field: ignored\n"
	if _, err := Parse([]byte(doc)); err != nil {
		t.Fatalf("unknown keys should be ignored, got %v", err)
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("title: [unclosed")); err == nil {
		t.Error("malformed YAML should error")
	}
}

func TestValidateValid(t *testing.T) {
	f, err := Parse([]byte(validCFF))
	if err != nil {
		t.Fatal(err)
	}
	if issues := f.Validate(); len(issues) != 0 {
		t.Errorf("valid file produced issues: %v", issues)
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	f := &File{
		CFFVersion: "9.9.9",
		Type:       "poem",
		Authors: []Author{
			{ORCID: "0000-0003-2631-4481"}, // bare ID, missing URL prefix; also nameless
		},
		RepositoryCode: "ftp://example.org/repo",
		License:        "not a license!",
		DateReleased:   "01/02/2024",
	}

	issues := f.Validate()

	wantFields := []string{
		"cff-version", "message", "title", "type",
		"authors[0]", "authors[0].orcid",
		"repository-code", "license", "date-released",
	}
	for _, field := range wantFields {
		found := false
		for _, issue := range issues {
			if issue.Field == field {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected an issue for field %q, got %v", field, issues)
		}
	}
}

func TestValidateEmptyAuthors(t *testing.T) {
	f := &File{CFFVersion: "1.2.0", Message: "m", Title: "t"}
	issues := f.Validate()
	if len(issues) != 1 || issues[0].Field != "authors" {
		t.Errorf("empty author list should be the only issue, got %v", issues)
	}
}

func TestValidateORCIDChecksumDigitX(t *testing.T) {
	f := &File{
		CFFVersion: "1.2.0", Message: "m", Title: "t",
		Authors: []Author{{FamilyNames: "Heather", ORCID: "https://orcid.org/0000-0002-6596-345X"}},
	}
	if issues := f.Validate(); len(issues) != 0 {
		t.Errorf("ORCID ending in X should be accepted, got %v", issues)
	}
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	f, err := Parse([]byte(validCFF))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "CITATION.cff")
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != f.Title || len(got.Authors) != len(f.Authors) || got.License != f.License {
		t.Errorf("round trip changed document: %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.cff")); err == nil {
		t.Error("missing file should error")
	}
}

func TestToBibTeX(t *testing.T) {
	f, err := Parse([]byte(validCFF))
	if err != nil {
		t.Fatal(err)
	}

	got := ToBibTeX(f)

	if !strings.HasPrefix(got, "@software{Monks_2024,") {
		t.Errorf("entry should open with @software{Monks_2024, got:\n%s", got)
	}
	if !strings.Contains(got, "author = {Monks, Thomas and Harper, Alison}") {
		t.Errorf("authors misformatted:\n%s", got)
	}
	if !strings.Contains(got, "year = {2024}") {
		t.Errorf("year missing:\n%s", got)
	}
	if !strings.Contains(got, "version = {2.1.0}") {
		t.Errorf("version missing:\n%s", got)
	}
	if !strings.Contains(got, "url = {https://github.com/pythonhealthdatascience/stars-ciw-example}") {
		t.Errorf("repository URL missing:\n%s", got)
	}
	if !strings.Contains(got, "note = {License: MIT}") {
		t.Errorf("license note missing:\n%s", got)
	}
}

func TestToBibTeXEscapesTitle(t *testing.T) {
	f := &File{Title: "Queues & Waits: 100% coverage"}
	got := ToBibTeX(f)
	if !strings.Contains(got, `title = {Queues \& Waits: 100\% coverage}`) {
		t.Errorf("special characters not escaped:\n%s", got)
	}
}

func TestToAPA(t *testing.T) {
	f, err := Parse([]byte(validCFF))
	if err != nil {
		t.Fatal(err)
	}

	got := ToAPA(f)

	if !strings.HasPrefix(got, "Monks, T., & Harper, A. (2024).") {
		t.Errorf("APA line misformatted: %q", got)
	}
	if !strings.Contains(got, "(Version 2.1.0) [Computer software]") {
		t.Errorf("APA line should mark software and version: %q", got)
	}
	if !strings.Contains(got, "https://github.com/pythonhealthdatascience/stars-ciw-example") {
		t.Errorf("APA line should end with the repository URL: %q", got)
	}
}

func TestToAPAPrefersDOI(t *testing.T) {
	f := &File{
		Title:          "Example",
		DOI:            "10.5281/zenodo.1234567",
		RepositoryCode: "https://github.com/example/example",
	}
	got := ToAPA(f)
	if !strings.Contains(got, "https://doi.org/10.5281/zenodo.1234567") {
		t.Errorf("DOI should win over repository URL: %q", got)
	}
	if strings.Contains(got, "github.com") {
		t.Errorf("repository URL should be omitted when DOI present: %q", got)
	}
}
