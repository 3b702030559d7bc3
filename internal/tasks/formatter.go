package tasks

import (
	"fmt"
	"strings"
)

// SummarySeparator separates the segments of a summary line.
const SummarySeparator = " || "

// FormatSummary renders rec as a single line:
//
//	Title || N days || Cat1, Cat2 || Org || Flag1 || Flag2
//
// Flags are appended in a fixed order and only when they apply. An empty
// category list leaves its segment empty.
func FormatSummary(rec *TaskRecord) string {
	cats := make([]string, 0, len(rec.Categories))
	for _, c := range rec.Categories {
		cats = append(cats, c.String())
	}

	segments := []string{
		rec.Title,
		fmt.Sprintf("%d days", rec.DaysToComplete),
		strings.Join(cats, ", "),
		rec.Organization,
	}
	segments = append(segments, summaryFlags(rec)...)

	return strings.Join(segments, SummarySeparator)
}

func summaryFlags(rec *TaskRecord) []string {
	var flags []string
	if rec.InProgressCount >= 1 {
		flags = append(flags, "Currently claimed")
	}
	if rec.CompletedCount == rec.MaxInstances {
		flags = append(flags, "All instances done")
	}
	if rec.MaxInstances > 1 {
		flags = append(flags, fmt.Sprintf("Instances: %d/%d", rec.ClaimedCount, rec.MaxInstances))
	}
	if rec.IsBeginner {
		flags = append(flags, "Beginner task")
	}
	return flags
}
