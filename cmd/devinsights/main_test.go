package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const snapshotJSON = `{
  "items": [
    {
      "id": 101,
      "type": "Requirement",
      "title": "checkout redesign",
      "state": "Closed",
      "currentAssignee": "alice",
      "revisions": [
        {"state": "New", "assignedTo": "alice", "changedBy": "alice", "changedDate": "2024-06-03T06:00:00Z"},
        {"state": "Active", "assignedTo": "alice", "changedBy": "alice", "changedDate": "2024-06-03T07:00:00Z"},
        {"state": "Dev Acceptance Testing", "assignedTo": "tina", "changedBy": "alice", "changedDate": "2024-06-03T09:00:00Z"}
      ],
      "prLinks": [{"repo": "core", "prId": 41}]
    }
  ],
  "threads": {
    "core/41": [
      {"comments": [{"author": "rita", "commentType": "text"}]}
    ]
  }
}`

func runAnalyze(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newAnalyzeCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestAnalyze_ReportToStdout(t *testing.T) {
	out, err := runAnalyze(t, writeSnapshot(t, snapshotJSON))
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	var report struct {
		Summary struct {
			TotalWorkItems  int     `json:"totalWorkItems"`
			AvgDevTimeHours float64 `json:"avgDevTimeHours"`
			TotalPRComments int     `json:"totalPrComments"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse report: %v\n%s", err, out)
	}
	if report.Summary.TotalWorkItems != 1 {
		t.Fatalf("totalWorkItems = %d, want 1", report.Summary.TotalWorkItems)
	}
	// 07:00Z to 09:00Z is 10:00 to 12:00 on the UTC+3 calendar
	if report.Summary.AvgDevTimeHours != 2 {
		t.Fatalf("avgDevTimeHours = %v, want 2", report.Summary.AvgDevTimeHours)
	}
	if report.Summary.TotalPRComments != 1 {
		t.Fatalf("totalPrComments = %d, want 1", report.Summary.TotalPRComments)
	}
}

func TestAnalyze_WallClock(t *testing.T) {
	out, err := runAnalyze(t, writeSnapshot(t, snapshotJSON), "--clock", "wall")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	var report struct {
		Summary struct {
			AvgDevTimeHours float64 `json:"avgDevTimeHours"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse report: %v\n%s", err, out)
	}
	if report.Summary.AvgDevTimeHours != 2 {
		t.Fatalf("avgDevTimeHours = %v, want 2", report.Summary.AvgDevTimeHours)
	}
}

func TestAnalyze_UnknownClockMode(t *testing.T) {
	if _, err := runAnalyze(t, writeSnapshot(t, snapshotJSON), "--clock", "lunar"); err == nil {
		t.Fatal("expected error for unknown clock mode")
	}
}

func TestAnalyze_EmptySnapshot(t *testing.T) {
	if _, err := runAnalyze(t, writeSnapshot(t, `{"items": []}`)); err == nil {
		t.Fatal("expected error for empty snapshot")
	}
}

func TestAnalyze_MalformedRevisionFails(t *testing.T) {
	bad := `{"items": [{"id": 1, "revisions": [{"state": "", "changedDate": "2024-06-03T06:00:00Z"}]}]}`
	if _, err := runAnalyze(t, writeSnapshot(t, bad)); err == nil {
		t.Fatal("expected error for revision without state")
	}
}
