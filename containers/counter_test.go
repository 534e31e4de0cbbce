package containers

import "testing"

func TestCounterMostCommonNeverExceedsK(t *testing.T) {
	c := NewCounter()
	// Four distinct keys tied at count 1, forcing a tie at the k=2
	// boundary; without truncation the ties bucket pushes the result
	// past k.
	for _, key := range []string{"delta", "alpha", "charlie", "bravo"} {
		c.Add(key)
	}

	got := c.MostCommon(2)
	if len(got) != 2 {
		t.Fatalf("MostCommon(2) returned %d entries, want 2: %+v", len(got), got)
	}
	// Per the original's Reverse(key) tie-break, the alphabetically
	// smallest keys survive the cutoff.
	if got[0].Value != "alpha" || got[1].Value != "bravo" {
		t.Errorf("MostCommon(2) = %+v, want [alpha bravo]", got)
	}
}

func TestCounterMostCommonOrdersByCountDescending(t *testing.T) {
	c := NewCounter()
	c.AddCount("rare", 1)
	c.AddCount("common", 5)
	c.AddCount("medium", 3)

	got := c.MostCommon(3)
	if len(got) != 3 {
		t.Fatalf("MostCommon(3) returned %d entries, want 3", len(got))
	}
	want := []string{"common", "medium", "rare"}
	for i, w := range want {
		if got[i].Value != w {
			t.Errorf("MostCommon(3)[%d] = %q, want %q", i, got[i].Value, w)
		}
	}
}
