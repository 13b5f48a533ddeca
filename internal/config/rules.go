// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PriorityRule adjusts the priority of catalog entries whose name contains
// the given substring (case-insensitive). Rules are cumulative: when several
// rules match the same entry, the last matching rule wins.
type PriorityRule struct {
	Match    string `yaml:"match"`
	Priority int    `yaml:"priority"`
}

// Matches reports whether the rule applies to the given entry name.
func (r PriorityRule) Matches(name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(r.Match))
}

// LoadPriorityRules reads an ordered rule list from a YAML file:
//
//	- match: "Mission Control Audio"
//	  priority: -1
//	- match: "Replay"
//	  priority: 5
func LoadPriorityRules(path string) ([]PriorityRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rules []PriorityRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	for i, r := range rules {
		if strings.TrimSpace(r.Match) == "" {
			return nil, fmt.Errorf("rule %d has an empty match pattern", i)
		}
	}
	return rules, nil
}
