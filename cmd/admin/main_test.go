package main

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		h, m   int
		hasErr bool
	}{
		{"3:00", 3, 0, false},
		{"15:07", 3, 7, false},
		{"00:59", 0, 59, false},
		{" 12:30 ", 0, 30, false},
		{"24:00", 0, 0, true},
		{"7:5", 0, 0, true},
		{"7:60", 0, 0, true},
		{"0700", 0, 0, true},
		{"x:10", 0, 0, true},
	}
	for _, tc := range cases {
		h, m, err := parseClock(tc.in)
		if tc.hasErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil || h != tc.h || m != tc.m {
			t.Fatalf("%q: got %d:%02d err=%v", tc.in, h, m, err)
		}
	}
}

func TestReverse13(t *testing.T) {
	if got := reverse13(0b11); got != 0b11<<11 {
		t.Fatalf("got %013b", got)
	}
	if got := reverse13(1 << 12); got != 1 {
		t.Fatalf("got %013b", got)
	}
}

func TestSettingsBody(t *testing.T) {
	b, err := settingsBody("", "")
	if err != nil || b != nil {
		t.Fatalf("empty: %s %v", b, err)
	}
	b, err = settingsBody("off", "ff0000")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if string(b) != `{"active":false,"word_color":"ff0000"}` {
		t.Fatalf("body: %s", b)
	}
	if _, err := settingsBody("maybe", ""); err == nil {
		t.Fatalf("expected error")
	}
}
