package services

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Rule configuration file shape:
//
//	objections:
//	  hearsay:
//	    patterns:
//	      transcript_regex: ["hearsay", ...]
//	    cures: ["...", ...]
//	    counter_objections:
//	      - name: hearsay_exception
//	        patterns: {transcript_regex: ["excited utterance", ...]}
//	        cures: ["...", ...]
type RulePatterns struct {
	TranscriptRegex []string `yaml:"transcript_regex"`
}

type CounterRuleSpec struct {
	Name     string       `yaml:"name"`
	Patterns RulePatterns `yaml:"patterns"`
	Cures    []string     `yaml:"cures"`
}

type RuleSpec struct {
	Patterns          RulePatterns      `yaml:"patterns"`
	Cures             []string          `yaml:"cures"`
	CounterObjections []CounterRuleSpec `yaml:"counter_objections"`
}

type RuleConfig struct {
	Objections map[string]RuleSpec `yaml:"objections"`
}

type compiledRule struct {
	ground   string
	patterns []*regexp.Regexp
	cures    []string
}

// RuleSet holds the compiled objection rules, loaded once at startup and
// injected into the engine. Counter rules detect meta-objections (e.g.
// hearsay-exception phrases) in their own namespace.
type RuleSet struct {
	rules    []compiledRule
	counters []compiledRule
}

// LoadRules reads and compiles the rule configuration file.
func LoadRules(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(raw)
}

func ParseRules(raw []byte) (*RuleSet, error) {
	var cfg RuleConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	// Deterministic rule order regardless of map iteration.
	names := make([]string, 0, len(cfg.Objections))
	for name := range cfg.Objections {
		names = append(names, name)
	}
	sort.Strings(names)

	rs := &RuleSet{}
	for _, name := range names {
		spec := cfg.Objections[name]
		patterns, err := compilePatterns(name, spec.Patterns.TranscriptRegex)
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, compiledRule{ground: name, patterns: patterns, cures: spec.Cures})
		for _, counter := range spec.CounterObjections {
			cpatterns, err := compilePatterns(name, counter.Patterns.TranscriptRegex)
			if err != nil {
				return nil, err
			}
			rs.counters = append(rs.counters, compiledRule{ground: name, patterns: cpatterns, cures: counter.Cures})
		}
	}
	return rs, nil
}

func compilePatterns(rule string, exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("rule %s: bad pattern %q: %w", rule, expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}
