package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	if got := Sum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("distinct content should differ")
	}
}

func TestMatches(t *testing.T) {
	sum := Sum([]byte("note"))
	cases := []struct {
		header string
		want   bool
	}{
		{ETag(sum), true},
		{"W/" + ETag(sum), true},
		{`"other", ` + ETag(sum), true},
		{"*", true},
		{sum, false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Matches(tc.header, sum); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
