package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"fare-rules-worker/internal/domain/entity"
)

type Generator struct {
	system string
	tmpl   *template.Template
}

func NewGenerator(systemPrompt, fareTemplate string) (*Generator, error) {
	tmpl, err := template.New("fare_rules").Option("missingkey=error").Parse(fareTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse fare rules template: %w", err)
	}
	return &Generator{
		system: strings.TrimSpace(systemPrompt),
		tmpl:   tmpl,
	}, nil
}

func NewDefaultGenerator() (*Generator, error) {
	return NewGenerator(DefaultSystemPrompt, FareRulesTemplate)
}

func (g *Generator) SystemPrompt() string {
	return g.system
}

func (g *Generator) FareRulesPrompt(req entity.FareRequest) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render fare rules prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Messages builds the system and user turns for one classification.
func (g *Generator) Messages(req entity.FareRequest) ([]entity.Message, error) {
	user, err := g.FareRulesPrompt(req)
	if err != nil {
		return nil, err
	}
	return []entity.Message{
		{Role: entity.RoleSystem, Content: g.system},
		{Role: entity.RoleUser, Content: user},
	}, nil
}
