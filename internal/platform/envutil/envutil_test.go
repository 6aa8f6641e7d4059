package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DENTEST_INT", "nope")
	if got := Int("DENTEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("DENTEST_INT", " 42 ")
	if got := Int("DENTEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("DENTEST_BOOL", "on")
	if !Bool("DENTEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	t.Setenv("DENTEST_BOOL", "maybe")
	if Bool("DENTEST_BOOL", false) {
		t.Fatalf("Bool: expected default false for unknown value")
	}
}

func TestSecondsAndList(t *testing.T) {
	t.Setenv("DENTEST_TTL", "90")
	if got := Seconds("DENTEST_TTL", time.Minute); got != 90*time.Second {
		t.Fatalf("Seconds: got %v", got)
	}
	t.Setenv("DENTEST_LIST", "a, ,b")
	got := List("DENTEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got %v", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("DENTEST_FLOAT", "0.25")
	if got := Float("DENTEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	t.Setenv("DENTEST_FLOAT", "x")
	if got := Float("DENTEST_FLOAT", 1); got != 1 {
		t.Fatalf("Float: want default got=%v", got)
	}
}
