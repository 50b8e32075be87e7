package skills

import "testing"

func TestNumericStrictlyIncreasing(t *testing.T) {
	prev := 0
	for _, rating := range Scale {
		n := rating.Numeric()
		if n <= prev {
			t.Fatalf("numeric projection not strictly increasing at %s: %d <= %d", rating, n, prev)
		}
		prev = n
	}
	if RatingBeginner.Numeric() != 1 || RatingExpert.Numeric() != 5 {
		t.Fatalf("scale endpoints wrong: beginner=%d expert=%d", RatingBeginner.Numeric(), RatingExpert.Numeric())
	}
}

func TestCompareRatingsAntisymmetric(t *testing.T) {
	all := append([]Rating{RatingNone}, Scale...)
	for _, a := range all {
		for _, b := range all {
			if CompareRatings(a, b) != -CompareRatings(b, a) {
				t.Fatalf("compare(%q,%q) not antisymmetric", a, b)
			}
		}
	}
}

func TestUnassessedBelowEveryRating(t *testing.T) {
	for _, rating := range Scale {
		if CompareRatings(RatingNone, rating) != -1 {
			t.Fatalf("unassessed should compare below %s", rating)
		}
	}
	if CompareRatings(RatingNone, RatingBeginner) == 0 {
		t.Fatal("unassessed must not equal beginner")
	}
}

func TestParseRating(t *testing.T) {
	cases := []struct {
		raw     string
		want    Rating
		wantErr bool
	}{
		{"advanced", RatingAdvanced, false},
		{" Expert ", RatingExpert, false},
		{"BEGINNER", RatingBeginner, false},
		{"", RatingNone, false},
		{"ninja", RatingNone, true},
	}
	for _, tc := range cases {
		got, err := ParseRating(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRating(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRating(%q): unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRating(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
