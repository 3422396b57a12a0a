package adapter

import "strings"

// Titles are the academic titles recognized in front of a physician's name.
var Titles = []string{
	"Dr. med.",
	"Dr.",
	"Prof. Dr. med.",
	"Prof. Dr.",
	"Dipl.-Psych.",
	"PD Dr. med.",
	"PD Dr.",
	"Med. pract.",
}

// DoctorName is a display name split into title, first and last name.
// Absent parts are empty.
type DoctorName struct {
	Title     string
	FirstName string
	LastName  string
}

// String joins the non-empty parts with single spaces.
func (n DoctorName) String() string {
	var parts []string
	for _, p := range []string{n.Title, n.FirstName, n.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ParseDoctorName splits a display name. The longest matching title is
// removed first; of the remaining words the first is the first name and the
// rest form the last name.
func ParseDoctorName(raw string) DoctorName {
	var n DoctorName
	name := strings.TrimSpace(raw)
	for _, t := range Titles {
		if strings.HasPrefix(name, t) && len(t) > len(n.Title) {
			n.Title = t
		}
	}
	name = strings.TrimPrefix(name, n.Title)

	words := strings.Fields(name)
	if len(words) > 0 {
		n.FirstName = words[0]
	}
	if len(words) > 1 {
		n.LastName = strings.Join(words[1:], " ")
	}
	return n
}
