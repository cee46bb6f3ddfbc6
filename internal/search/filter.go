// Package search filters tutor listings by subject, class, location and
// free text.
package search

import (
	"net/url"
	"strings"

	"github.com/madhava-poojari/educonnect-api/internal/models"
	"golang.org/x/text/cases"
)

// Criteria holds the listing filters. An empty field imposes no constraint.
type Criteria struct {
	Subject  string `json:"subject"`
	Class    string `json:"class"`
	Location string `json:"location"`
	Text     string `json:"search"`
}

// CriteriaFromQuery reads criteria from URL query parameters. "q" is
// accepted as an alias for "search".
func CriteriaFromQuery(q url.Values) Criteria {
	text := q.Get("search")
	if text == "" {
		text = q.Get("q")
	}
	return Criteria{
		Subject:  q.Get("subject"),
		Class:    q.Get("class"),
		Location: q.Get("location"),
		Text:     text,
	}.normalized()
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	c = c.normalized()
	return c.Subject == "" && c.Class == "" && c.Location == "" && c.Text == ""
}

func (c Criteria) normalized() Criteria {
	return Criteria{
		Subject:  strings.TrimSpace(c.Subject),
		Class:    strings.TrimSpace(c.Class),
		Location: strings.TrimSpace(c.Location),
		Text:     strings.TrimSpace(c.Text),
	}
}

// Filter returns the tutors matching every non-empty criterion, in input
// order. The input slice is never modified.
func Filter(tutors []*models.TutorProfile, c Criteria) []*models.TutorProfile {
	c = c.normalized()
	m := newMatcher(c)
	out := make([]*models.TutorProfile, 0, len(tutors))
	for _, t := range tutors {
		if t != nil && m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether a single tutor satisfies c.
func Matches(t *models.TutorProfile, c Criteria) bool {
	if t == nil {
		return false
	}
	return newMatcher(c.normalized()).match(t)
}

type matcher struct {
	fold     cases.Caser
	subject  string
	class    string
	location string
	text     string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{fold: cases.Fold(), class: c.Class}
	m.subject = m.fold.String(c.Subject)
	m.location = m.fold.String(c.Location)
	m.text = m.fold.String(c.Text)
	return m
}

func (m *matcher) contains(haystack, needle string) bool {
	return strings.Contains(m.fold.String(haystack), needle)
}

func (m *matcher) anySubject(subjects []string, needle string) bool {
	for _, s := range subjects {
		if m.contains(s, needle) {
			return true
		}
	}
	return false
}

func (m *matcher) match(t *models.TutorProfile) bool {
	if m.subject != "" && !m.anySubject(t.Subjects, m.subject) {
		return false
	}
	if m.class != "" && !hasClass(t.Classes, m.class) {
		return false
	}
	if m.location != "" && !m.contains(t.Location, m.location) {
		return false
	}
	if m.text != "" && !m.contains(t.Name, m.text) && !m.anySubject(t.Subjects, m.text) {
		return false
	}
	return true
}

func hasClass(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}
