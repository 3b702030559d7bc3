package tasks

import "testing"

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name string
		rec  TaskRecord
		want string
	}{
		{
			name: "beginner task",
			rec: TaskRecord{
				Title:          "Fix bug",
				DaysToComplete: 3,
				Categories:     []Category{CategoryCode},
				Organization:   "KDE",
				IsBeginner:     true,
				MaxInstances:   1,
			},
			want: "Fix bug || 3 days || Code || KDE || Beginner task",
		},
		{
			name: "claimed multi instance task",
			rec: TaskRecord{
				Title:           "Write docs",
				DaysToComplete:  5,
				Categories:      []Category{CategoryDocumentation, CategoryOutreachResearch},
				Organization:    "Sugar Labs",
				MaxInstances:    3,
				ClaimedCount:    2,
				CompletedCount:  1,
				InProgressCount: 1,
			},
			want: "Write docs || 5 days || Documentation, Outreach / Research || Sugar Labs || Currently claimed || Instances: 2/3",
		},
		{
			name: "all instances done",
			rec: TaskRecord{
				Title:          "Design logo",
				DaysToComplete: 2,
				Categories:     []Category{CategoryUserInterface},
				Organization:   "Haiku",
				MaxInstances:   1,
				ClaimedCount:   1,
				CompletedCount: 1,
			},
			want: "Design logo || 2 days || User Interface || Haiku || All instances done",
		},
		{
			name: "every flag",
			rec: TaskRecord{
				Title:           "Test app",
				DaysToComplete:  4,
				Categories:      []Category{CategoryQA},
				Organization:    "Ubuntu",
				IsBeginner:      true,
				MaxInstances:    2,
				ClaimedCount:    2,
				CompletedCount:  2,
				InProgressCount: 1,
			},
			want: "Test app || 4 days || QA || Ubuntu || Currently claimed || All instances done || Instances: 2/2 || Beginner task",
		},
		{
			name: "no flags",
			rec: TaskRecord{
				Title:          "Port module",
				DaysToComplete: 7,
				Categories:     []Category{CategoryCode},
				Organization:   "Drupal",
				MaxInstances:   1,
			},
			want: "Port module || 7 days || Code || Drupal",
		},
		{
			// The empty category segment is kept as is.
			name: "no categories",
			rec: TaskRecord{
				Title:          "Misc",
				DaysToComplete: 3,
				Organization:   "KDE",
				MaxInstances:   1,
			},
			want: "Misc || 3 days ||  || KDE",
		},
		{
			name: "title passed through verbatim",
			rec: TaskRecord{
				Title:          "Use || in titles, <b>safely</b>",
				DaysToComplete: 0,
				Categories:     []Category{CategoryCode},
				Organization:   "SCoRe",
				MaxInstances:   1,
			},
			want: "Use || in titles, <b>safely</b> || 0 days || Code || SCoRe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSummary(&tt.rec)
			if got != tt.want {
				t.Errorf("FormatSummary() =\n  %q\nwant\n  %q", got, tt.want)
			}
			if again := FormatSummary(&tt.rec); again != got {
				t.Errorf("FormatSummary() not stable: %q then %q", got, again)
			}
		})
	}
}

func TestCategoryString(t *testing.T) {
	if got := CategoryOutreachResearch.String(); got != "Outreach / Research" {
		t.Errorf("String() = %q", got)
	}
	if Category(0).Valid() || Category(6).Valid() {
		t.Error("out of range category reported valid")
	}
}
