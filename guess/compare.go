// Package guess implements the attribute feedback rules: given a target
// and a guessed character, each tracked attribute gets a status from a
// fixed vocabulary. Compare is pure, so the same pair of characters always
// yields the same feedback.
package guess

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wfunc/onepiecedle/catalog"
)

// Status is the per-attribute feedback vocabulary.
type Status string

const (
	StatusCorrect   Status = "correct"
	StatusIncorrect Status = "incorrect"
	StatusHigher    Status = "higher"
	StatusLower     Status = "lower"
	StatusEarlier   Status = "earlier"
	StatusLater     Status = "later"
	StatusPartial   Status = "partial"
	StatusNone      Status = "none"
)

// Attribute identifies one of the tracked character attributes. Dispatch is
// over this closed set, never over field names.
type Attribute string

const (
	AttrGender         Attribute = "gender"
	AttrFirstArc       Attribute = "first_arc"
	AttrAffiliation    Attribute = "affiliation"
	AttrBounty         Attribute = "bounty"
	AttrHeight         Attribute = "height"
	AttrDevilFruitType Attribute = "devil_fruit_type"
	AttrHaki           Attribute = "haki"
)

// Attributes lists every tracked attribute, in display order.
var Attributes = []Attribute{
	AttrGender,
	AttrFirstArc,
	AttrAffiliation,
	AttrBounty,
	AttrHeight,
	AttrDevilFruitType,
	AttrHaki,
}

var ErrUnknownAttribute = errors.New("unknown attribute")

// ParseAttribute normalizes a client-supplied attribute name.
func ParseAttribute(s string) (Attribute, error) {
	a := Attribute(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Attributes {
		if a == known {
			return a, nil
		}
	}
	return "", ErrUnknownAttribute
}

// HeightTolerance is the float comparison slack for the height attribute.
const HeightTolerance = 0.01

// Feedback is one attribute's guessed value plus its status.
type Feedback struct {
	Value  string `json:"value"`
	Status Status `json:"status"`
}

// FeedbackMap assigns feedback to every tracked attribute, plus the
// guessed name under "name".
type FeedbackMap map[string]Feedback

// Compare computes per-attribute feedback for a whole-character guess.
// arcs is the story-order index (arc name -> position). The returned bool
// reports a winning guess (name match), which overrides every status.
func Compare(target, g *catalog.Character, arcs map[string]int) (FeedbackMap, bool) {
	fb := FeedbackMap{
		"name": {Value: g.Name, Status: StatusNone},
	}

	fb[string(AttrGender)] = equalityFeedback(target.Gender, g.Gender)
	fb[string(AttrFirstArc)] = Feedback{Value: g.FirstArc, Status: arcStatus(target.FirstArc, g.FirstArc, arcs)}
	fb[string(AttrAffiliation)] = equalityFeedback(target.Affiliation, g.Affiliation)
	fb[string(AttrBounty)] = Feedback{
		Value:  strconv.FormatInt(g.Bounty, 10),
		Status: orderedStatus(float64(target.Bounty), float64(g.Bounty), 0),
	}
	fb[string(AttrHeight)] = Feedback{
		Value:  strconv.FormatFloat(g.Height, 'f', -1, 64),
		Status: orderedStatus(target.Height, g.Height, HeightTolerance),
	}
	fb[string(AttrDevilFruitType)] = equalityFeedback(target.DevilFruitType, g.DevilFruitType)
	fb[string(AttrHaki)] = Feedback{Value: g.HakiString(), Status: hakiStatus(target.Haki, g.Haki)}

	if strings.EqualFold(target.Name, g.Name) {
		for k, f := range fb {
			f.Status = StatusCorrect
			fb[k] = f
		}
		return fb, true
	}
	return fb, false
}

func equalityFeedback(target, guessed string) Feedback {
	if target == guessed {
		return Feedback{Value: guessed, Status: StatusCorrect}
	}
	return Feedback{Value: guessed, Status: StatusIncorrect}
}

// arcStatus orders two arcs by their position in the story. A target that
// appears later in story order than the guess reads "later". Arcs missing
// from the order sequence fall back to incorrect.
func arcStatus(target, guessed string, arcs map[string]int) Status {
	if target == guessed {
		return StatusCorrect
	}
	targetIdx, ok1 := arcs[target]
	guessIdx, ok2 := arcs[guessed]
	if !ok1 || !ok2 {
		return StatusIncorrect
	}
	if targetIdx > guessIdx {
		return StatusLater
	}
	return StatusEarlier
}

func orderedStatus(target, guessed, tolerance float64) Status {
	if math.Abs(target-guessed) <= tolerance {
		return StatusCorrect
	}
	if target > guessed {
		return StatusHigher
	}
	return StatusLower
}

func hakiStatus(target, guessed map[string]struct{}) Status {
	if setsEqual(target, guessed) {
		return StatusCorrect
	}
	for h := range guessed {
		if _, ok := target[h]; ok {
			return StatusPartial
		}
	}
	return StatusIncorrect
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

var nonDigits = regexp.MustCompile(`[^\d]`)

// CheckAttribute reports whether a free-form value matches the target on a
// single attribute, using the attribute-guessing equality rules: bounty
// ignores everything but digits, height allows the usual tolerance, haki
// matches on any shared token, the rest compare case-insensitively.
func CheckAttribute(target *catalog.Character, attr Attribute, value string) bool {
	switch attr {
	case AttrBounty:
		digits := nonDigits.ReplaceAllString(value, "")
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return false
		}
		return v == target.Bounty
	case AttrHeight:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false
		}
		return math.Abs(v-target.Height) < HeightTolerance
	case AttrHaki:
		guessed := normalizedTokens(value)
		for tok := range guessed {
			for h := range target.Haki {
				if tok == strings.ToLower(h) {
					return true
				}
			}
		}
		return false
	case AttrGender:
		return strings.EqualFold(strings.TrimSpace(value), target.Gender)
	case AttrFirstArc:
		return strings.EqualFold(strings.TrimSpace(value), target.FirstArc)
	case AttrAffiliation:
		return strings.EqualFold(strings.TrimSpace(value), target.Affiliation)
	case AttrDevilFruitType:
		return strings.EqualFold(strings.TrimSpace(value), target.DevilFruitType)
	default:
		return false
	}
}

func normalizedTokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Split(s, ";") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}
