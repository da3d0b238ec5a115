package signals

import (
	"strings"
	"unicode/utf8"
)

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionObjective
	sectionProjects
	sectionCertifications
	sectionOther
)

const (
	maxItems        = 10
	maxItemRunes    = 120
	maxObjectiveLen = 300
)

var headings = map[string]sectionKind{
	"objective":              sectionObjective,
	"career objective":       sectionObjective,
	"professional objective": sectionObjective,
	"summary":                sectionObjective,
	"professional summary":   sectionObjective,
	"profile":                sectionObjective,
	"profile summary":        sectionObjective,
	"about me":               sectionObjective,

	"projects":           sectionProjects,
	"project":            sectionProjects,
	"academic projects":  sectionProjects,
	"personal projects":  sectionProjects,
	"key projects":       sectionProjects,
	"project experience": sectionProjects,

	"certifications":              sectionCertifications,
	"certification":               sectionCertifications,
	"certificates":                sectionCertifications,
	"licenses & certifications":   sectionCertifications,
	"licenses and certifications": sectionCertifications,

	"experience":              sectionOther,
	"work experience":         sectionOther,
	"professional experience": sectionOther,
	"employment history":      sectionOther,
	"internships":             sectionOther,
	"education":               sectionOther,
	"skills":                  sectionOther,
	"technical skills":        sectionOther,
	"achievements":            sectionOther,
	"awards":                  sectionOther,
	"languages":               sectionOther,
	"interests":               sectionOther,
	"hobbies":                 sectionOther,
	"contact":                 sectionOther,
	"references":              sectionOther,
	"declaration":             sectionOther,
	"personal details":        sectionOther,
}

var certKeywords = []string{"certified", "certification", "certificate"}

type section struct {
	kind  sectionKind
	lines []string
}

// splitSections groups lines under the most recent heading. A heading may
// carry inline content after a colon ("objective: build things").
func splitSections(text string) []section {
	sections := []section{{kind: sectionNone}}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if kind, rest, ok := parseHeading(line); ok {
			s := section{kind: kind}
			if rest != "" {
				s.lines = append(s.lines, rest)
			}
			sections = append(sections, s)
			continue
		}

		last := &sections[len(sections)-1]
		last.lines = append(last.lines, line)
	}
	return sections
}

func parseHeading(line string) (sectionKind, string, bool) {
	head, rest, hasColon := strings.Cut(line, ":")
	head = strings.TrimSpace(stripBullet(head))
	if kind, ok := headings[head]; ok {
		if !hasColon {
			return kind, "", true
		}
		return kind, strings.TrimSpace(rest), true
	}
	return sectionNone, "", false
}

func stripBullet(line string) string {
	line = strings.TrimLeft(line, "-•*·▪●◦>–. \t")
	// numbered items: "1." or "2)"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func appendUnique(items []string, seen map[string]struct{}, item string) []string {
	item = clip(stripBullet(item), maxItemRunes)
	if item == "" || len(items) >= maxItems {
		return items
	}
	if _, ok := seen[item]; ok {
		return items
	}
	seen[item] = struct{}{}
	return append(items, item)
}

// Certifications returns lines of a certifications section and any other
// line mentioning a certification.
func Certifications(text string) []string {
	items := make([]string, 0)
	seen := make(map[string]struct{})
	for _, s := range splitSections(text) {
		for _, line := range s.lines {
			if s.kind == sectionCertifications || containsAny(line, certKeywords) {
				items = appendUnique(items, seen, line)
			}
		}
	}
	return items
}

// Objective returns the first line of an objective or summary section.
func Objective(text string) string {
	for _, s := range splitSections(text) {
		if s.kind != sectionObjective {
			continue
		}
		for _, line := range s.lines {
			if line = stripBullet(line); line != "" {
				return clip(line, maxObjectiveLen)
			}
		}
	}
	return ""
}

// Projects returns the lines of a projects section and inline "project: x" entries.
func Projects(text string) []string {
	items := make([]string, 0)
	seen := make(map[string]struct{})
	for _, s := range splitSections(text) {
		for _, line := range s.lines {
			if s.kind == sectionProjects {
				items = appendUnique(items, seen, line)
				continue
			}
			if name, ok := inlineProject(line); ok {
				items = appendUnique(items, seen, name)
			}
		}
	}
	return items
}

func inlineProject(line string) (string, bool) {
	line = stripBullet(line)
	for _, prefix := range []string{"project title:", "project name:", "project:"} {
		if strings.HasPrefix(line, prefix) {
			name := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			return name, name != ""
		}
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
