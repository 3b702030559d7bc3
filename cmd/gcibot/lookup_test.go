package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gcibot/gcibot/internal/tasks"
)

func TestLookup(t *testing.T) {
	srv, tasksCfg := newTaskSite(t)
	client := tasks.NewClient(tasksCfg)

	var out bytes.Buffer
	failed := lookup(context.Background(), &out, client, tasksCfg.Host, []string{
		"123",
		srv.URL + "/dashboard/task-instances/555/",
		"404",
	})

	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output lines = %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "Fix bug || 3 days || Code || KDE || Beginner task") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "duplicate") && !strings.Contains(lines[2], "duplicate") {
		t.Errorf("legacy link to the same task not reported as duplicate:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "not_found") {
		t.Errorf("missing task not reported as not_found:\n%s", out.String())
	}
}

func TestLookup_NoLinks(t *testing.T) {
	_, tasksCfg := newTaskSite(t)
	var out bytes.Buffer
	if failed := lookup(context.Background(), &out, tasks.NewClient(tasksCfg), tasksCfg.Host, []string{"hello"}); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !strings.Contains(out.String(), "no task links found") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLookupText(t *testing.T) {
	got := lookupText("codein.withgoogle.com", []string{" 42 ", "https://codein.withgoogle.com/tasks/7/", "4x"})
	want := "https://codein.withgoogle.com/tasks/42/ https://codein.withgoogle.com/tasks/7/ 4x"
	if got != want {
		t.Errorf("lookupText() = %q, want %q", got, want)
	}
}
