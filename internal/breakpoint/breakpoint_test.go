package breakpoint

import (
	"path/filepath"
	"testing"
)

func TestParse_SimpleFileLine(t *testing.T) {
	spec, ok := Parse("script.py:25")
	if !ok {
		t.Fatal("expected ok")
	}
	want, _ := filepath.Abs("script.py")
	if spec.Path != want {
		t.Errorf("expected path %s, got %s", want, spec.Path)
	}
	if spec.Line != 25 {
		t.Errorf("expected line 25, got %d", spec.Line)
	}
	if spec.Condition != "" {
		t.Errorf("expected no condition, got %q", spec.Condition)
	}
}

func TestParse_WithCondition(t *testing.T) {
	spec, ok := Parse("script.py:14:i == 3")
	if !ok {
		t.Fatal("expected ok")
	}
	if spec.Line != 14 {
		t.Errorf("expected line 14, got %d", spec.Line)
	}
	if spec.Condition != "i == 3" {
		t.Errorf("expected condition 'i == 3', got %q", spec.Condition)
	}
}

func TestParse_ConditionContainingColon(t *testing.T) {
	spec, ok := Parse("script.py:10:ratio > 1:5")
	if !ok {
		t.Fatal("expected ok")
	}
	if spec.Condition != "ratio > 1:5" {
		t.Errorf("expected condition to retain embedded colon, got %q", spec.Condition)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"",
		"script.py",
		"script.py:notanumber",
		"script.py:0",
		":10",
	}
	for _, c := range cases {
		if _, ok := Parse(c); ok {
			t.Errorf("expected Parse(%q) to fail", c)
		}
	}
}

func TestParseAll_SkipsMalformedEntries(t *testing.T) {
	specs := ParseAll([]string{"a.py:1", "garbage", "b.py:2:cond"}, nil)
	if len(specs) != 2 {
		t.Fatalf("expected 2 valid specs, got %d", len(specs))
	}
}

func TestGroupByFile(t *testing.T) {
	aAbs, _ := filepath.Abs("a.py")
	bAbs, _ := filepath.Abs("b.py")

	parsed := ParseAll([]string{"a.py:1", "b.py:2", "a.py:3"}, nil)
	grouped := GroupByFile(parsed)
	if len(grouped[aAbs]) != 2 {
		t.Errorf("expected 2 breakpoints grouped under a.py, got %d", len(grouped[aAbs]))
	}
	if len(grouped[bAbs]) != 1 {
		t.Errorf("expected 1 breakpoint grouped under b.py, got %d", len(grouped[bAbs]))
	}
}
