package chatbot

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Knowledge is the YAML document the bot answers from
type Knowledge struct {
	Facts    map[string]string `yaml:"facts"`
	Greeting string            `yaml:"greeting"`
	Topics   []Topic           `yaml:"topics"`
	Prefixes []PrefixRule      `yaml:"prefixes"`
	Fallback string            `yaml:"fallback"`
}

// Topic matches when Pattern matches the lower-cased message. The first
// answer whose keywords appear in the message wins, otherwise Default.
type Topic struct {
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Answers []Answer `yaml:"answers"`
	Default string   `yaml:"default"`
}

type Answer struct {
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// PrefixRule matches messages starting with Prefix and, when Contains is
// set, containing at least one of those words.
type PrefixRule struct {
	Prefix   string   `yaml:"prefix"`
	Contains []string `yaml:"contains"`
	Reply    string   `yaml:"reply"`
}

// LoadKnowledge reads path, or the embedded default when path is empty.
func LoadKnowledge(path string) (*Knowledge, error) {
	data := defaultKnowledge
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read knowledge base: %w", err)
		}
	}
	return ParseKnowledge(data)
}

func ParseKnowledge(data []byte) (*Knowledge, error) {
	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if k.Fallback == "" {
		return nil, fmt.Errorf("knowledge base has no fallback reply")
	}
	return &k, nil
}

type compiledTopic struct {
	name    string
	pattern *regexp.Regexp
	answers []compiledAnswer
	reply   string
}

type compiledAnswer struct {
	keywords []string
	reply    string
}

type compiledPrefix struct {
	prefix   string
	contains []string
	reply    string
}

// render executes a reply template against the facts. Unknown facts are an error.
func render(name, text string, facts map[string]string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, facts); err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return b.String(), nil
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
