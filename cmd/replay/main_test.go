package main

import (
	"strings"
	"testing"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/wordframe"
)

func entry(boot string, h, m int) clock.MinuteEntry {
	f := wordframe.FromTime(h, m)
	var names []string
	for _, w := range f.Words() {
		names = append(names, w.String())
	}
	return clock.MinuteEntry{Time: "t", BootID: boot, Hour: h, Minute: m, Text: f.Text(), Words: names, Lit: f.Lit()}
}

func TestVerifier_AcceptsRenderedMinutes(t *testing.T) {
	v := &verifier{}
	for m := 0; m < 60; m++ {
		if err := v.check(entry("a", 7, m)); err != nil {
			t.Fatalf("minute %d: %v", m, err)
		}
	}
	// A new boot may repeat the last face.
	if err := v.check(entry("b", 7, 59)); err != nil {
		t.Fatalf("new boot: %v", err)
	}
	if v.checked != 61 || len(v.boots) != 2 {
		t.Fatalf("checked=%d boots=%d", v.checked, len(v.boots))
	}
}

func TestVerifier_Mismatches(t *testing.T) {
	bad := entry("a", 2, 25)
	bad.Text = "ES IST FÜNF NACH HALB DREI"
	if err := (&verifier{}).check(bad); err == nil || !strings.Contains(err.Error(), "text mismatch") {
		t.Fatalf("text: %v", err)
	}

	bad = entry("a", 2, 25)
	bad.Words[2] = "ZEHN"
	if err := (&verifier{}).check(bad); err == nil || !strings.Contains(err.Error(), "word 2") {
		t.Fatalf("words: %v", err)
	}

	bad = entry("a", 2, 25)
	bad.Hour = 12
	if err := (&verifier{}).check(bad); err == nil {
		t.Fatalf("expected range error")
	}

	v := &verifier{}
	_ = v.check(entry("a", 1, 1))
	if err := v.check(entry("a", 1, 1)); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate: %v", err)
	}
}

func TestVerifier_BootFilter(t *testing.T) {
	v := &verifier{boot: "keep"}
	bad := entry("skip", 1, 1)
	bad.Text = "nonsense"
	if err := v.check(bad); err != nil {
		t.Fatalf("filtered entry checked: %v", err)
	}
	if v.checked != 0 {
		t.Fatalf("checked=%d", v.checked)
	}
}
