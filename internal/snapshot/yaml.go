package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/pelotonworks/stattrack/internal/stat"
)

// rawCyclist mirrors the on-disk per-cyclist shape.
type rawCyclist struct {
	Name           string             `yaml:"name"`
	FirstCyclingID any                `yaml:"first_cycling_id"`
	Stats          map[string]float64 `yaml:"stats"`
}

// Load reads the snapshot document at path. A missing or empty file
// yields an empty document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	return Parse(data)
}

// Parse decodes a snapshot document.
func Parse(data []byte) (*Document, error) {
	var raw map[string]rawCyclist
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	doc := New()
	for id, rc := range raw {
		c := &Cyclist{
			Name:  rc.Name,
			Stats: rc.Stats,
		}
		if c.Stats == nil {
			c.Stats = make(map[string]float64)
		}
		switch fc := rc.FirstCyclingID.(type) {
		case nil:
		case string:
			c.FirstCyclingID = fc
		case int:
			c.FirstCyclingID = strconv.Itoa(fc)
		case int64:
			c.FirstCyclingID = strconv.FormatInt(fc, 10)
		case float64:
			c.FirstCyclingID = stat.FormatValue(fc)
		default:
			c.FirstCyclingID = fmt.Sprintf("%v", fc)
		}
		doc.Cyclists[id] = c
	}

	return doc, nil
}

// MarshalYAML serializes the document with stable ordering: top-level
// keys sorted numerically, per-cyclist fields in fixed order, and the
// stats sub-mapping flow-styled.
func (d *Document) MarshalYAML() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, id := range d.sortedIDs() {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.DoubleQuotedStyle,
			Tag:   "!!str",
			Value: id,
		}
		root.Content = append(root.Content, keyNode, cyclistNode(d.Cyclists[id]))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// cyclistNode builds the per-cyclist mapping: name first, then
// first_cycling_id if known, then the flow-style stats map.
func cyclistNode(c *Cyclist) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	node.Content = append(node.Content,
		strScalar("name"), strScalar(c.Name))

	if c.FirstCyclingID != "" {
		node.Content = append(node.Content,
			strScalar("first_cycling_id"), idScalar(c.FirstCyclingID))
	}

	if len(c.Stats) > 0 {
		statsNode := &yaml.Node{
			Kind:  yaml.MappingNode,
			Tag:   "!!map",
			Style: yaml.FlowStyle,
		}
		for _, key := range stat.Keys {
			v, ok := c.Stats[key]
			if !ok {
				continue
			}
			statsNode.Content = append(statsNode.Content,
				strScalar(key), numScalar(v))
		}
		node.Content = append(node.Content, strScalar("stats"), statsNode)
	}

	return node
}

func strScalar(s string) *yaml.Node {
	n := &yaml.Node{}
	n.SetString(s)
	return n
}

// idScalar emits an all-digit identifier as an integer scalar, which
// matches how authored documents carry first_cycling_id.
func idScalar(s string) *yaml.Node {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}
	}
	return strScalar(s)
}

func numScalar(v float64) *yaml.Node {
	tag := "!!float"
	if stat.IsIntegral(v) {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: stat.FormatValue(v)}
}
