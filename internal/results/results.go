// Package results holds torrent listings and the sorting and filtering the
// browser applies to them.
package results

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Item is one torrent in a listing.
type Item struct {
	Title     string    `yaml:"title"`
	Category  string    `yaml:"category"`
	Size      Size      `yaml:"size"`
	Seeders   int       `yaml:"seeders"`
	Leechers  int       `yaml:"leechers"`
	Downloads int       `yaml:"downloads"`
	Date      time.Time `yaml:"date"`
	Link      string    `yaml:"link"`
}

type feed struct {
	Items []Item `yaml:"items"`
}

// LoadFile reads a YAML listing, either a bare list of items or a mapping
// with an items key.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML listing.
func Parse(data []byte) ([]Item, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing results: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var items []Item
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		if err := root.Decode(&items); err != nil {
			return nil, fmt.Errorf("parsing results: %w", err)
		}
	} else {
		var f feed
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing results: %w", err)
		}
		items = f.Items
	}

	for i, it := range items {
		if it.Link == "" {
			return nil, fmt.Errorf("result %d (%q) has no link", i+1, it.Title)
		}
	}
	return items, nil
}

// Categories returns the distinct categories in items, sorted.
func Categories(items []Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category != "" && !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	slices.Sort(out)
	return out
}

// Filter keeps items whose title contains every word of query, ignoring
// case, and whose category equals category. Empty arguments match all.
func Filter(items []Item, query, category string) []Item {
	words := strings.Fields(strings.ToLower(query))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		title := strings.ToLower(it.Title)
		match := true
		for _, w := range words {
			if !strings.Contains(title, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, it)
		}
	}
	return out
}

// SortKey selects the column results are ordered by.
type SortKey int

const (
	SortDate SortKey = iota
	SortSize
	SortSeeders
	SortLeechers
	SortDownloads
	SortTitle
)

var sortKeyNames = []string{"date", "size", "seeders", "leechers", "downloads", "title"}

// SortKeys lists every sort key in menu order.
func SortKeys() []SortKey {
	return []SortKey{SortDate, SortSize, SortSeeders, SortLeechers, SortDownloads, SortTitle}
}

func (k SortKey) String() string {
	if k >= 0 && int(k) < len(sortKeyNames) {
		return sortKeyNames[k]
	}
	return "unknown"
}

// ParseSortKey is the inverse of SortKey.String.
func ParseSortKey(name string) (SortKey, error) {
	if i := slices.Index(sortKeyNames, strings.ToLower(name)); i >= 0 {
		return SortKey(i), nil
	}
	return 0, fmt.Errorf("unknown sort key %q", name)
}

// Sort orders items in place, stably. Numeric columns and dates sort largest
// or newest first and titles sort A to Z; reverse flips the order.
func Sort(items []Item, key SortKey, reverse bool) {
	slices.SortStableFunc(items, func(a, b Item) int {
		var c int
		switch key {
		case SortSize:
			c = cmp.Compare(b.Size, a.Size)
		case SortSeeders:
			c = cmp.Compare(b.Seeders, a.Seeders)
		case SortLeechers:
			c = cmp.Compare(b.Leechers, a.Leechers)
		case SortDownloads:
			c = cmp.Compare(b.Downloads, a.Downloads)
		case SortTitle:
			c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		default:
			c = b.Date.Compare(a.Date)
		}
		if reverse {
			return -c
		}
		return c
	})
}

// Size is a byte count. In YAML it is either an integer or a string such as
// "1.4 GiB".
type Size int64

var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

func (s Size) String() string {
	v := float64(s)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", int64(s))
	}
	return fmt.Sprintf("%.1f %s", v, sizeUnits[i])
}

// ParseSize reads "734 MiB", "1.4GiB" or a plain byte count.
func ParseSize(raw string) (Size, error) {
	s := strings.TrimSpace(raw)
	i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if i < 0 {
		i = len(s)
	}
	unit := strings.TrimSpace(s[i:])
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", raw)
	}
	if unit == "" {
		return Size(v), nil
	}
	for i, u := range sizeUnits {
		if strings.EqualFold(unit, u) {
			mult := float64(int64(1) << (10 * i))
			return Size(v * mult), nil
		}
	}
	return 0, fmt.Errorf("invalid size unit %q", unit)
}

func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	if node.ShortTag() == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		*s = Size(n)
		return nil
	}
	v, err := ParseSize(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = v
	return nil
}
