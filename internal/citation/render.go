package citation

import (
	"fmt"
	"strings"
)

// ToBibTeX renders the citation as a BibTeX @software (or @misc for
// datasets) entry keyed by the first author's family name and the
// release year.
func ToBibTeX(f *File) string {
	entryType := "software"
	if f.Type == "dataset" {
		entryType = "misc"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, citeKey(f)))

	if len(f.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthorsBibTeX(f.Authors)))
	}
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(f.Title)))
	if year := releaseYear(f); year != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", year))
	}
	if f.Version != "" {
		b.WriteString(fmt.Sprintf("  version = {%s},\n", escapeLatex(f.Version)))
	}
	if f.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", f.DOI))
	}
	if f.RepositoryCode != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", f.RepositoryCode))
	} else if f.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", f.URL))
	}
	if f.License != "" {
		b.WriteString(fmt.Sprintf("  note = {License: %s},\n", escapeLatex(f.License)))
	}
	b.WriteString("}\n")

	return b.String()
}

// ToAPA renders the citation as a single APA-like plain-text line.
func ToAPA(f *File) string {
	var parts []string

	if len(f.Authors) > 0 {
		parts = append(parts, formatAuthorsAPA(f.Authors))
	}
	if year := releaseYear(f); year != "" {
		parts = append(parts, fmt.Sprintf("(%s).", year))
	}

	title := f.Title
	if f.Version != "" {
		title += fmt.Sprintf(" (Version %s)", f.Version)
	}
	kind := "Computer software"
	if f.Type == "dataset" {
		kind = "Data set"
	}
	parts = append(parts, fmt.Sprintf("%s [%s].", title, kind))

	if f.DOI != "" {
		parts = append(parts, "https://doi.org/"+f.DOI)
	} else if f.RepositoryCode != "" {
		parts = append(parts, f.RepositoryCode)
	} else if f.URL != "" {
		parts = append(parts, f.URL)
	}

	return strings.Join(parts, " ")
}

// citeKey builds an entry key such as "Monks_2024" or "stars" when no
// author or year is available.
func citeKey(f *File) string {
	name := "citation"
	if len(f.Authors) > 0 && f.Authors[0].FamilyNames != "" {
		name = strings.ReplaceAll(f.Authors[0].FamilyNames, " ", "")
	}
	if year := releaseYear(f); year != "" {
		return name + "_" + year
	}
	return name
}

// releaseYear extracts the year from date-released, if set.
func releaseYear(f *File) string {
	if len(f.DateReleased) >= 4 {
		return f.DateReleased[:4]
	}
	return ""
}

// formatAuthorsBibTeX formats authors as "Last, First and Last, First".
func formatAuthorsBibTeX(authors []Author) string {
	var formatted []string
	for _, a := range authors {
		switch {
		case a.FamilyNames != "" && a.GivenNames != "":
			formatted = append(formatted, fmt.Sprintf("%s, %s", a.FamilyNames, a.GivenNames))
		case a.FamilyNames != "":
			formatted = append(formatted, a.FamilyNames)
		default:
			formatted = append(formatted, a.GivenNames)
		}
	}
	return strings.Join(formatted, " and ")
}

// formatAuthorsAPA formats authors as "Last, F., Last, F., & Last, F."
func formatAuthorsAPA(authors []Author) string {
	var formatted []string
	for _, a := range authors {
		name := a.FamilyNames
		if a.GivenNames != "" {
			initial := string([]rune(a.GivenNames)[0])
			if name != "" {
				name = fmt.Sprintf("%s, %s.", name, initial)
			} else {
				name = initial + "."
			}
		}
		formatted = append(formatted, name)
	}

	switch len(formatted) {
	case 1:
		return formatted[0]
	default:
		return strings.Join(formatted[:len(formatted)-1], ", ") + ", & " + formatted[len(formatted)-1]
	}
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
