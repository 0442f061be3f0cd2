package arxiv

import "testing"

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://arxiv.org/abs/1706.03762", "1706.03762"},
		{"https://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"https://arxiv.org/pdf/1706.03762", "1706.03762"},
		{"https://arxiv.org/pdf/1706.03762v2.pdf", "1706.03762"},
		{"http://arxiv.org/html/2410.08698v1/", "2410.08698"},
		{"https://arxiv.org/abs/1706.03762?context=cs", "1706.03762"},
		{"https://arxiv.org/abs/hep-th/9901001v2", "hep-th/9901001"},
		{"https://arxiv.org/pdf/solv-int/9901001", "solv-int/9901001"},
		{"https://example.org/papers/2410.08698", "2410.08698"},
		{"2410.08698", "2410.08698"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IDFromURL(tt.input); got != tt.want {
				t.Errorf("IDFromURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripVersion(t *testing.T) {
	tests := map[string]string{
		"2301.00001v3":    "2301.00001",
		"2301.00001":      "2301.00001",
		"2301.00001v":     "2301.00001v",
		"hep-th/9901001":  "hep-th/9901001",
		"solv-int/990101": "solv-int/990101",
		"v2":              "v2",
	}
	for in, want := range tests {
		if got := StripVersion(in); got != want {
			t.Errorf("StripVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalURL_CollapsesSpellings(t *testing.T) {
	spellings := []string{
		"https://arxiv.org/abs/1706.03762",
		"https://arxiv.org/abs/1706.03762v7",
		"https://arxiv.org/pdf/1706.03762v1.pdf",
	}
	want := "https://arxiv.org/abs/1706.03762"
	for _, s := range spellings {
		if got := CanonicalURL(IDFromURL(s)); got != want {
			t.Errorf("CanonicalURL(IDFromURL(%q)) = %q, want %q", s, got, want)
		}
	}
}
