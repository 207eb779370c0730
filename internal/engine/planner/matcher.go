package planner

import (
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/zerr"
)

// producer is the rule or tool selected to process a file.
type producer struct {
	// rule is set when a target build rule matched; ruleIndex is its position.
	rule      *domain.BuildRule
	ruleIndex int
	// tool is the registry tool. It is nil for script rules.
	tool *domain.ToolSpec
}

func (p *producer) same(o producer) bool {
	if p.rule != nil || o.rule != nil {
		return p.rule == o.rule
	}
	return p.tool == o.tool
}

func (p *producer) name() string {
	if p.rule != nil {
		return p.rule.DisplayName()
	}
	return p.tool.ID
}

// match selects the producer for a file. Target rules are consulted in declaration
// order and take precedence over the registry's default tool for the file type.
func (b *targetBuilder) match(path string, ft domain.FileType) (producer, bool, error) {
	for i, r := range b.target.Rules {
		if !r.Matches(path, ft) {
			continue
		}
		p := producer{rule: r, ruleIndex: i}
		if r.ToolID != "" {
			tool, err := b.tool(r.ToolID)
			if err != nil {
				return producer{}, false, zerr.With(err, "rule", r.DisplayName())
			}
			p.tool = tool
		}
		return p, true, nil
	}
	if tool, ok := b.pass.planner.registry.ToolForFileType(ft); ok {
		return producer{tool: tool}, true, nil
	}
	return producer{}, false, nil
}
