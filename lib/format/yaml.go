// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bxml/lib/token"
)

// YAML reads and writes YAML 1.2 through the node API of
// gopkg.in/yaml.v3, which keeps mapping order. Core-schema tags map onto
// token kinds: !!binary to bytes and !!timestamp to dates. Aliases are
// expanded. Only the first document of a stream is read.
type YAML struct{}

func (YAML) Name() string         { return "yaml" }
func (YAML) Extensions() []string { return []string{".yaml", ".yml"} }
func (YAML) Binary() bool         { return false }

func (YAML) Decode(data []byte) (token.Value, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return token.Value{}, fmt.Errorf("yaml: %w", err)
	}
	value, err := fromYAMLNode(&document, 0)
	if err != nil {
		return token.Value{}, fmt.Errorf("yaml: %w", err)
	}
	return value, nil
}

func fromYAMLNode(node *yaml.Node, depth int) (token.Value, error) {
	if depth > maxNesting {
		return token.Value{}, fmt.Errorf("line %d: nesting deeper than %d", node.Line, maxNesting)
	}

	switch node.Kind {
	case 0:
		// Empty input.
		return token.Null(), nil

	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return token.Null(), nil
		}
		return fromYAMLNode(node.Content[0], depth)

	case yaml.AliasNode:
		return fromYAMLNode(node.Alias, depth+1)

	case yaml.MappingNode:
		members := make([]token.Member, 0, len(node.Content)/2)
		for index := 0; index+1 < len(node.Content); index += 2 {
			key, valueNode := node.Content[index], node.Content[index+1]
			if key.Kind == yaml.AliasNode {
				key = key.Alias
			}
			if key.Kind != yaml.ScalarNode {
				return token.Value{}, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			value, err := fromYAMLNode(valueNode, depth+1)
			if err != nil {
				return token.Value{}, err
			}
			members = append(members, token.Field(key.Value, value))
		}
		return token.Object(members...), nil

	case yaml.SequenceNode:
		elements := make([]token.Value, 0, len(node.Content))
		for _, child := range node.Content {
			element, err := fromYAMLNode(child, depth+1)
			if err != nil {
				return token.Value{}, err
			}
			elements = append(elements, element)
		}
		return token.Array(elements...), nil

	case yaml.ScalarNode:
		return fromYAMLScalar(node)

	default:
		return token.Value{}, fmt.Errorf("line %d: unexpected node kind %d", node.Line, node.Kind)
	}
}

func fromYAMLScalar(node *yaml.Node) (token.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return token.Null(), nil
	case "!!bool":
		var value bool
		if err := node.Decode(&value); err != nil {
			return token.Value{}, err
		}
		return token.Bool(value), nil
	case "!!int":
		var value int64
		if err := node.Decode(&value); err != nil {
			return token.Value{}, fmt.Errorf("line %d: integer %s does not fit 64 bits", node.Line, node.Value)
		}
		return token.Integer(value), nil
	case "!!float":
		var value float64
		if err := node.Decode(&value); err != nil {
			return token.Value{}, err
		}
		return token.Float(value), nil
	case "!!timestamp":
		var value time.Time
		if err := node.Decode(&value); err != nil {
			return token.Value{}, err
		}
		return token.Date(value), nil
	case "!!binary":
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(node.Value), ""))
		if err != nil {
			return token.Value{}, fmt.Errorf("line %d: invalid !!binary: %w", node.Line, err)
		}
		return token.Bytes(raw), nil
	default:
		return token.String(node.Value), nil
	}
}

func (YAML) Encode(value token.Value) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(toYAMLNode(value)); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return buffer.Bytes(), nil
}

func toYAMLNode(value token.Value) *yaml.Node {
	switch value.Kind() {
	case token.KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, member := range value.Members() {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: member.Key},
				toYAMLNode(member.Value))
		}
		return node
	case token.KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, element := range value.Elements() {
			node.Content = append(node.Content, toYAMLNode(element))
		}
		return node
	case token.KindBool:
		return yamlScalar("!!bool", strconv.FormatBool(value.BoolValue()))
	case token.KindInteger:
		return yamlScalar("!!int", strconv.FormatInt(value.IntegerValue(), 10))
	case token.KindFloat:
		return yamlScalar("!!float", yamlFloat(value.FloatValue()))
	case token.KindString:
		return yamlScalar("!!str", value.StringValue())
	case token.KindBytes:
		return yamlScalar("!!binary", base64.StdEncoding.EncodeToString(value.BytesValue()))
	case token.KindDate:
		return yamlScalar("!!timestamp", value.DateValue().Format(time.RFC3339Nano))
	default:
		return yamlScalar("!!null", "null")
	}
}

func yamlScalar(tag, text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
}

func yamlFloat(float float64) string {
	switch {
	case math.IsNaN(float):
		return ".nan"
	case math.IsInf(float, 1):
		return ".inf"
	case math.IsInf(float, -1):
		return "-.inf"
	default:
		return formatFloat(float)
	}
}
