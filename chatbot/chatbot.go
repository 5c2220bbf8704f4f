package chatbot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	SourceRules = "rules"
	SourceLLM   = "llm"

	maxMessageLength = 1000
)

var ErrEmptyMessage = errors.New("message is required")

// Completer answers free-form prompts. It backs questions no rule covers.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Reply struct {
	Reply  string `json:"reply"`
	Source string `json:"source"`
}

// Bot answers questions about the site owner from a Knowledge base.
type Bot struct {
	facts    map[string]string
	greeting string
	topics   []compiledTopic
	prefixes []compiledPrefix
	fallback string

	llm        Completer
	llmTimeout time.Duration
}

// New renders every reply template up front so a broken knowledge base fails at startup.
func New(k *Knowledge, llm Completer) (*Bot, error) {
	b := &Bot{facts: k.Facts, llm: llm, llmTimeout: 10 * time.Second}

	var err error
	if b.fallback, err = render("fallback", k.Fallback, k.Facts); err != nil {
		return nil, err
	}
	if b.greeting, err = render("greeting", k.Greeting, k.Facts); err != nil {
		return nil, err
	}

	for _, t := range k.Topics {
		pattern, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, fmt.Errorf("topic %s: %w", t.Name, err)
		}
		ct := compiledTopic{name: t.Name, pattern: pattern}
		if ct.reply, err = render(t.Name, t.Default, k.Facts); err != nil {
			return nil, err
		}
		for i, a := range t.Answers {
			reply, err := render(fmt.Sprintf("%s[%d]", t.Name, i), a.Reply, k.Facts)
			if err != nil {
				return nil, err
			}
			ct.answers = append(ct.answers, compiledAnswer{keywords: lowerAll(a.Keywords), reply: reply})
		}
		b.topics = append(b.topics, ct)
	}

	for _, p := range k.Prefixes {
		reply, err := render("prefix "+p.Prefix, p.Reply, k.Facts)
		if err != nil {
			return nil, err
		}
		b.prefixes = append(b.prefixes, compiledPrefix{
			prefix:   strings.ToLower(p.Prefix),
			contains: lowerAll(p.Contains),
			reply:    reply,
		})
	}
	return b, nil
}

func (b *Bot) Greeting() string {
	return b.greeting
}

// Match runs the rules only. ok is false when the fallback was used.
func (b *Bot) Match(message string) (reply string, ok bool) {
	lower := strings.ToLower(message)

	for _, t := range b.topics {
		if !t.pattern.MatchString(lower) {
			continue
		}
		for _, a := range t.answers {
			if containsAny(lower, a.keywords) {
				return a.reply, true
			}
		}
		return t.reply, true
	}

	for _, p := range b.prefixes {
		if !strings.HasPrefix(lower, p.prefix) {
			continue
		}
		if len(p.contains) == 0 || containsAny(lower, p.contains) {
			return p.reply, true
		}
	}

	return b.fallback, false
}

// Answer replies to message, asking the LLM only when no rule matched.
func (b *Bot) Answer(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	message = truncate(message, maxMessageLength)

	reply, ok := b.Match(message)
	if ok || b.llm == nil {
		return Reply{Reply: reply, Source: SourceRules}, nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, b.llmTimeout)
	defer cancel()

	generated, err := b.llm.Complete(llmCtx, b.prompt(message))
	generated = strings.TrimSpace(generated)
	if err != nil || generated == "" {
		log.Warn().Err(err).Msg("LLM fallback failed, using canned reply")
		return Reply{Reply: reply, Source: SourceRules}, nil
	}
	return Reply{Reply: generated, Source: SourceLLM}, nil
}

func (b *Bot) prompt(question string) string {
	keys := make([]string, 0, len(b.facts))
	for k := range b.facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("You are the assistant on a personal portfolio website. ")
	sb.WriteString("Answer the visitor's question in at most three sentences using only these facts. ")
	sb.WriteString("If the facts do not cover it, say so and suggest using the contact form.\n\nFacts:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, b.facts[k])
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\nAnswer:", question)
	return sb.String()
}

// truncate cuts s to at most limit bytes without splitting a rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
