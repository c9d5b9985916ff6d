package main

import (
	"os"
	"testing"
)

func TestParseOutputDirectoryDashIsCwd(t *testing.T) {
	want, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	got, err := parseOutputDirectory("-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseOutputDirectoryPassesPathsThrough(t *testing.T) {
	got, err := parseOutputDirectory("out/images")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "out/images" {
		t.Fatalf("expected out/images, got %s", got)
	}
}

func TestParseVersionBounds(t *testing.T) {
	for v := 1; v <= 40; v++ {
		got, err := parseVersion(v)
		if err != nil || got != v {
			t.Fatalf("parseVersion(%d) = %d, %v", v, got, err)
		}
	}
	for _, v := range []int{0, 41, -1} {
		if _, err := parseVersion(v); err == nil {
			t.Fatalf("expected parseVersion(%d) to fail", v)
		}
	}
}

func TestParseChunkSize(t *testing.T) {
	if got, err := parseChunkSize(10); err != nil || got != 10 {
		t.Fatalf("parseChunkSize(10) = %d, %v", got, err)
	}
	if _, err := parseChunkSize(0); err == nil {
		t.Fatalf("expected parseChunkSize(0) to fail")
	}
}

func TestParseScaleBounds(t *testing.T) {
	for _, v := range []int{1, 8, 255} {
		if got, err := parseScale(v); err != nil || got != v {
			t.Fatalf("parseScale(%d) = %d, %v", v, got, err)
		}
	}
	for _, v := range []int{0, 256} {
		if _, err := parseScale(v); err == nil {
			t.Fatalf("expected parseScale(%d) to fail", v)
		}
	}
}

func TestParseMaskBounds(t *testing.T) {
	for v := 0; v <= 7; v++ {
		if got, err := parseMask(v); err != nil || got != v {
			t.Fatalf("parseMask(%d) = %d, %v", v, got, err)
		}
	}
	if got, err := parseMask(-1); err != nil || got != -1 {
		t.Fatalf("expected -1 to mean auto, got %d, %v", got, err)
	}
	if _, err := parseMask(8); err == nil {
		t.Fatalf("expected parseMask(8) to fail")
	}
}

func TestParseBorderBounds(t *testing.T) {
	for _, v := range []int{0, 4, 255} {
		if got, err := parseBorder(v); err != nil || got != v {
			t.Fatalf("parseBorder(%d) = %d, %v", v, got, err)
		}
	}
	for _, v := range []int{-1, 256} {
		if _, err := parseBorder(v); err == nil {
			t.Fatalf("expected parseBorder(%d) to fail", v)
		}
	}
}

func TestParseDelimiter(t *testing.T) {
	if got, err := parseDelimiter(";"); err != nil || got != ';' {
		t.Fatalf("parseDelimiter(\";\") = %q, %v", got, err)
	}
	if got, err := parseDelimiter("\t"); err != nil || got != '\t' {
		t.Fatalf("parseDelimiter(tab) = %q, %v", got, err)
	}
	for _, s := range []string{"", ";;"} {
		if _, err := parseDelimiter(s); err == nil {
			t.Fatalf("expected parseDelimiter(%q) to fail", s)
		}
	}
}
