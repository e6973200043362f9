package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleRun() *Run {
	r := NewRun("test load curve")
	r.Samples = []Sample{
		{TMs: 0, FPS: 60, FrameTimeMs: 16.6, Profile: "balanced", ProfileIndex: 1},
		{TMs: 1000, FPS: 22, FrameTimeMs: 45, Profile: "balanced", ProfileIndex: 1},
		{TMs: 2000, FPS: 31, FrameTimeMs: 32, Profile: "performance", ProfileIndex: 2},
	}
	r.Transitions = []Transition{{TMs: 1500, From: "balanced", To: "performance"}}
	return r
}

func TestNewRun_HasID(t *testing.T) {
	a, b := NewRun("a"), NewRun("b")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("run IDs should be unique and non-empty: %q vs %q", a.ID, b.ID)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleRun().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded Run
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Samples) != 3 || len(decoded.Transitions) != 1 {
		t.Errorf("round trip lost data: %d samples, %d transitions",
			len(decoded.Samples), len(decoded.Transitions))
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleRun().WriteHTML(&buf); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<html") {
		t.Error("expected an HTML document")
	}
	for _, want := range []string{"Frame rate", "Frame time", "Profile index"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing chart %q", want)
		}
	}
}
