package guess

import (
	"testing"

	"github.com/wfunc/onepiecedle/catalog"
)

// arcOrder mirrors the story-order index the catalog provides.
var arcOrder = map[string]int{
	"East Blue": 0,
	"Arlong":    1,
	"Loguetown": 2,
	"Drum":      4,
	"Alabasta":  5,
}

func char(name string, bounty int64, height float64, haki ...string) *catalog.Character {
	set := make(map[string]struct{}, len(haki))
	for _, h := range haki {
		set[h] = struct{}{}
	}
	return &catalog.Character{
		Name:           name,
		Gender:         "Male",
		FirstArc:       "East Blue",
		Affiliation:    "Straw Hat Pirates",
		Bounty:         bounty,
		Height:         height,
		DevilFruitType: "none",
		Haki:           set,
	}
}

func TestCompare_ArcDirection(t *testing.T) {
	target := char("Nico Robin", 930000000, 1.88)
	target.FirstArc = "Alabasta"
	guessed := char("Roronoa Zoro", 1111000000, 1.81)
	guessed.FirstArc = "East Blue"

	fb, win := Compare(target, guessed, arcOrder)
	if win {
		t.Fatal("Different names must not win")
	}
	// Target appears later in story order than the guess.
	if got := fb[string(AttrFirstArc)].Status; got != StatusLater {
		t.Errorf("Expected later, got %s", got)
	}

	fb, _ = Compare(guessed, target, arcOrder)
	if got := fb[string(AttrFirstArc)].Status; got != StatusEarlier {
		t.Errorf("Expected earlier on the swapped pair, got %s", got)
	}
}

func TestCompare_ArcMissingFromOrder(t *testing.T) {
	target := char("A", 0, 1)
	target.FirstArc = "Egghead"
	guessed := char("B", 0, 1)

	fb, _ := Compare(target, guessed, arcOrder)
	if got := fb[string(AttrFirstArc)].Status; got != StatusIncorrect {
		t.Errorf("Unknown arc should fall back to incorrect, got %s", got)
	}
}

func TestCompare_NumericAntisymmetry(t *testing.T) {
	a := char("A", 100, 1.5)
	b := char("B", 500, 1.9)

	fwd, _ := Compare(a, b, arcOrder)
	rev, _ := Compare(b, a, arcOrder)

	if fwd[string(AttrBounty)].Status != StatusLower || rev[string(AttrBounty)].Status != StatusHigher {
		t.Errorf("Swapping target and guess must flip higher/lower on bounty: %s vs %s",
			fwd[string(AttrBounty)].Status, rev[string(AttrBounty)].Status)
	}
	if fwd[string(AttrHeight)].Status != StatusLower || rev[string(AttrHeight)].Status != StatusHigher {
		t.Errorf("Swapping target and guess must flip higher/lower on height: %s vs %s",
			fwd[string(AttrHeight)].Status, rev[string(AttrHeight)].Status)
	}

	same, _ := Compare(a, char("C", 100, 1.5), arcOrder)
	if same[string(AttrBounty)].Status != StatusCorrect || same[string(AttrHeight)].Status != StatusCorrect {
		t.Error("Equal numerics must stay correct in both directions")
	}
}

func TestCompare_HeightTolerance(t *testing.T) {
	target := char("A", 0, 1.740)
	guessed := char("B", 0, 1.7405)

	fb, _ := Compare(target, guessed, arcOrder)
	if got := fb[string(AttrHeight)].Status; got != StatusCorrect {
		t.Errorf("Heights within tolerance should compare correct, got %s", got)
	}
}

func TestCompare_HakiTrichotomy(t *testing.T) {
	cases := []struct {
		name    string
		target  []string
		guessed []string
		want    Status
	}{
		{"equal", []string{"Armament", "Observation"}, []string{"Armament", "Observation"}, StatusCorrect},
		{"overlap", []string{"Armament", "Observation"}, []string{"Armament"}, StatusPartial},
		{"disjoint", []string{"Armament"}, []string{"Observation"}, StatusIncorrect},
		{"both empty", nil, nil, StatusCorrect},
		{"target empty", nil, []string{"Armament"}, StatusIncorrect},
		{"guess empty", []string{"Armament"}, nil, StatusIncorrect},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := char("A", 0, 1, tc.target...)
			guessed := char("B", 0, 1, tc.guessed...)
			fb, _ := Compare(target, guessed, arcOrder)
			if got := fb[string(AttrHaki)].Status; got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCompare_NameMatchOverridesEverything(t *testing.T) {
	target := char("Monkey D. Luffy", 3000000000, 1.74, "Conqueror's")
	guessed := char("monkey d. luffy", 0, 0)

	fb, win := Compare(target, guessed, arcOrder)
	if !win {
		t.Fatal("Case-insensitive name match must win")
	}
	for attr, f := range fb {
		if f.Status != StatusCorrect {
			t.Errorf("Attribute %s should be overridden to correct, got %s", attr, f.Status)
		}
	}
}

func TestParseAttribute(t *testing.T) {
	if attr, err := ParseAttribute("  Devil_Fruit_Type "); err != nil || attr != AttrDevilFruitType {
		t.Errorf("Expected normalized attribute, got %q (%v)", attr, err)
	}
	if _, err := ParseAttribute("name"); err != ErrUnknownAttribute {
		t.Errorf("Expected ErrUnknownAttribute, got %v", err)
	}
}

func TestCheckAttribute(t *testing.T) {
	target := char("Monkey D. Luffy", 3000000000, 1.74, "Armament", "Observation")
	target.Gender = "Male"
	target.FirstArc = "East Blue"

	cases := []struct {
		attr  Attribute
		value string
		want  bool
	}{
		{AttrBounty, "3,000,000,000", true}, // non-digits stripped
		{AttrBounty, "$3000000000", true},
		{AttrBounty, "100", false},
		{AttrBounty, "berries", false},
		{AttrHeight, "1.74", true},
		{AttrHeight, "1.745", true}, // inside tolerance
		{AttrHeight, "1.80", false},
		{AttrHeight, "tall", false},
		{AttrHaki, "armament", true}, // shared token suffices
		{AttrHaki, "conqueror's; observation", true},
		{AttrHaki, "conqueror's", false},
		{AttrGender, "male", true},
		{AttrFirstArc, "east blue", true},
		{AttrFirstArc, "Alabasta", false},
		{AttrDevilFruitType, "NONE", true},
	}

	for _, tc := range cases {
		if got := CheckAttribute(target, tc.attr, tc.value); got != tc.want {
			t.Errorf("CheckAttribute(%s, %q) = %v, want %v", tc.attr, tc.value, got, tc.want)
		}
	}
}

func TestCompare_IsDeterministic(t *testing.T) {
	target := char("A", 5, 1.2, "Armament")
	guessed := char("B", 9, 1.9, "Observation")

	first, _ := Compare(target, guessed, arcOrder)
	for i := 0; i < 10; i++ {
		again, _ := Compare(target, guessed, arcOrder)
		for k, v := range first {
			if again[k] != v {
				t.Fatalf("Compare is not deterministic on %s", k)
			}
		}
	}
}
