// Package tasks finds Code-in task links in text, looks the tasks up and
// renders one-line summaries of them.
package tasks

import "fmt"

// Category is a task category code as used by the metadata API.
type Category int

const (
	CategoryCode             Category = 1
	CategoryUserInterface    Category = 2
	CategoryDocumentation    Category = 3
	CategoryQA               Category = 4
	CategoryOutreachResearch Category = 5
)

var categoryNames = map[Category]string{
	CategoryCode:             "Code",
	CategoryUserInterface:    "User Interface",
	CategoryDocumentation:    "Documentation",
	CategoryQA:               "QA",
	CategoryOutreachResearch: "Outreach / Research",
}

// String returns the display name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// TaskRecord is the metadata of one task, as shown in summaries.
type TaskRecord struct {
	ID              string
	Title           string
	DaysToComplete  int
	Categories      []Category
	Organization    string
	IsBeginner      bool
	ClaimedCount    int
	CompletedCount  int
	InProgressCount int
	MaxInstances    int
}

// defaultOrganizations maps organization IDs of the 2015 contest to names.
var defaultOrganizations = map[int64]string{
	5149586599444480: "Apertium",
	4923366913867776: "Copyleft Games",
	4603782423904256: "Drupal",
	4625502878826496: "FOSSASIA",
	6583394590785536: "Haiku",
	6015066264567808: "KDE",
	5413855668731904: "MetaBrainz Foundation",
	5966051024044032: "OpenMRS",
	5167877522980864: "RTEMS Project",
	5340425418178560: "Sugar Labs",
	4866017020870656: "SCoRe",
	5748107203575808: "Systers",
	4568116747042816: "Ubuntu",
	5505623550590976: "Wikimedia",
}

// Registry maps organization IDs to display names. It is read-only once built.
type Registry struct {
	names map[int64]string
}

// NewRegistry returns the built-in organizations plus extra. Entries in extra
// override built-in names with the same ID.
func NewRegistry(extra map[int64]string) *Registry {
	names := make(map[int64]string, len(defaultOrganizations)+len(extra))
	for id, name := range defaultOrganizations {
		names[id] = name
	}
	for id, name := range extra {
		names[id] = name
	}
	return &Registry{names: names}
}

// Name returns the display name for an organization ID.
func (r *Registry) Name(id int64) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}
