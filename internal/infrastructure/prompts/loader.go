package prompts

import (
	_ "embed"
)

//go:embed system.txt
var DefaultSystemPrompt string

//go:embed fare_rules.tmpl
var FareRulesTemplate string
