package pagination

import "testing"

func TestParseRequested(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1", 1},
		{"17", 17},
		{"2.5", 1},
	}

	for _, tt := range tests {
		if got := ParseRequested(tt.raw); got != tt.want {
			t.Errorf("ParseRequested(%q): got %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestResolveWindows(t *testing.T) {
	// 25 items at 10 per page: pages of 10, 10, 5.
	p1 := Resolve(1, 25, 10)
	if p1.Limit != 10 || p1.Offset != 0 {
		t.Errorf("page 1: got limit=%d offset=%d, want 10/0", p1.Limit, p1.Offset)
	}
	if !p1.HasNext || p1.HasPrev {
		t.Errorf("page 1: got HasNext=%v HasPrev=%v, want true/false", p1.HasNext, p1.HasPrev)
	}

	p3 := Resolve(3, 25, 10)
	if p3.Limit != 5 || p3.Offset != 20 {
		t.Errorf("page 3: got limit=%d offset=%d, want 5/20", p3.Limit, p3.Offset)
	}
	if p3.HasNext || !p3.HasPrev {
		t.Errorf("page 3: got HasNext=%v HasPrev=%v, want false/true", p3.HasNext, p3.HasPrev)
	}
	if p3.TotalPages != 3 {
		t.Errorf("total pages: got %d, want 3", p3.TotalPages)
	}
}

func TestResolveClampsOutOfRange(t *testing.T) {
	// Requesting page 99 of 3 clamps to the last page's content.
	p := Resolve(99, 25, 10)
	if p.Number != 3 {
		t.Errorf("clamped number: got %d, want 3", p.Number)
	}
	if p.Offset != 20 || p.Limit != 5 {
		t.Errorf("clamped window: got offset=%d limit=%d, want 20/5", p.Offset, p.Limit)
	}

	// Sub-1 clamps to the first page.
	p = Resolve(-5, 25, 10)
	if p.Number != 1 {
		t.Errorf("clamped number: got %d, want 1", p.Number)
	}
}

func TestResolveEmptyCollection(t *testing.T) {
	p := Resolve(1, 0, 10)
	if p.TotalPages != 1 || p.Number != 1 {
		t.Errorf("empty: got pages=%d number=%d, want 1/1", p.TotalPages, p.Number)
	}
	if p.Limit != 0 {
		t.Errorf("empty limit: got %d, want 0", p.Limit)
	}
	if p.HasNext || p.HasPrev {
		t.Error("empty collection should have no neighboring pages")
	}
}

func TestResolveExactMultiple(t *testing.T) {
	p := Resolve(2, 20, 10)
	if p.TotalPages != 2 {
		t.Errorf("total pages: got %d, want 2", p.TotalPages)
	}
	if p.Limit != 10 || p.Offset != 10 {
		t.Errorf("page 2: got limit=%d offset=%d, want 10/10", p.Limit, p.Offset)
	}
	if p.HasNext {
		t.Error("last page should not have next")
	}
}

func TestResolveParam(t *testing.T) {
	p := ResolveParam("99", 25, 10)
	if p.Number != 3 {
		t.Errorf("ResolveParam: got page %d, want 3", p.Number)
	}

	p = ResolveParam("junk", 25, 10)
	if p.Number != 1 {
		t.Errorf("ResolveParam junk: got page %d, want 1", p.Number)
	}
}
