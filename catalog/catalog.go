// Package catalog holds the playable character roster and the story arc
// order. Both are loaded once at startup and are read-only afterwards, so
// rooms share them without locking.
package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrEmptyCatalog      = errors.New("no characters loaded")
)

// Character 角色数据模型
type Character struct {
	Name           string
	Gender         string
	FirstArc       string
	Affiliation    string
	Bounty         int64
	Height         float64
	DevilFruitType string
	Haki           map[string]struct{}
}

// HakiList returns the haki set as a sorted slice for responses.
func (c *Character) HakiList() []string {
	if len(c.Haki) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Haki))
	for h := range c.Haki {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// HakiString renders the haki set the same way the data file stores it.
func (c *Character) HakiString() string {
	if len(c.Haki) == 0 {
		return "None"
	}
	return strings.Join(c.HakiList(), "; ")
}

// Catalog 角色目录
type Catalog struct {
	characters []*Character
	byName     map[string]*Character // lowercased name -> character
	arcIndex   map[string]int        // arc name -> position in story order
}

// Load reads the character roster and arc order from their flat files.
// An empty roster is a fatal configuration error, since no round could
// ever select a target.
func Load(charactersPath, arcsPath string) (*Catalog, error) {
	arcs, err := loadArcs(arcsPath)
	if err != nil {
		return nil, fmt.Errorf("load arcs: %w", err)
	}

	f, err := os.Open(charactersPath)
	if err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}
	defer f.Close()

	characters, err := parseCharacters(f)
	if err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}

	return New(characters, arcs)
}

// New builds a catalog from an already-parsed roster and arc order.
func New(characters []*Character, arcs []string) (*Catalog, error) {
	if len(characters) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		characters: characters,
		byName:     make(map[string]*Character, len(characters)),
		arcIndex:   make(map[string]int, len(arcs)),
	}
	for _, ch := range characters {
		c.byName[strings.ToLower(ch.Name)] = ch
	}
	for i, arc := range arcs {
		c.arcIndex[arc] = i
	}
	return c, nil
}

// Random picks a target for a new round.
func (c *Catalog) Random() *Character {
	return c.characters[rand.Intn(len(c.characters))]
}

// FindByName looks a character up case-insensitively.
func (c *Catalog) FindByName(name string) (*Character, error) {
	ch, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrCharacterNotFound
	}
	return ch, nil
}

// ArcIndex returns an arc's zero-based position in story order.
func (c *Catalog) ArcIndex(arc string) (int, bool) {
	i, ok := c.arcIndex[arc]
	return i, ok
}

// ArcPositions exposes the full arc order map for the comparator.
func (c *Catalog) ArcPositions() map[string]int {
	return c.arcIndex
}

// Names returns every roster name, used to seed the search index.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.characters))
	for _, ch := range c.characters {
		names = append(names, ch.Name)
	}
	return names
}

func (c *Catalog) Len() int {
	return len(c.characters)
}

func loadArcs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var arcs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			arcs = append(arcs, line)
		}
	}
	return arcs, scanner.Err()
}

// parseCharacters reads the CSV roster. Malformed numeric cells degrade to
// zero instead of failing the whole load.
func parseCharacters(f *os.File) ([]*Character, error) {
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var characters []*Character
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		characters = append(characters, &Character{
			Name:           field(row, "name"),
			Gender:         field(row, "gender"),
			FirstArc:       field(row, "first_arc"),
			Affiliation:    field(row, "affiliation"),
			Bounty:         parseBounty(field(row, "bounty")),
			Height:         parseHeight(field(row, "height")),
			DevilFruitType: field(row, "devil_fruit_type"),
			Haki:           ParseHaki(field(row, "haki")),
		})
	}
	return characters, nil
}

func parseBounty(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseHeight(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseHaki splits a ";"-delimited haki cell into a normalized set,
// dropping empty tokens and the literal "none".
func ParseHaki(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Split(s, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.EqualFold(tok, "none") {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}
