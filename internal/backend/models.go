package backend

import "strings"

// Model is a selectable local model.
type Model struct {
	Alias       string
	ID          string
	Name        string
	Description string
}

// Models lists the local models in the order aliases are matched.
var Models = []Model{
	{Alias: "llama", ID: "llama3.1", Name: "Llama 3.1", Description: "Best for General Reasoning & Chat"},
	{Alias: "mistral", ID: "mistral", Name: "Mistral 7B", Description: "Best for Balanced Performance"},
	{Alias: "phi", ID: "phi3:mini", Name: "Phi-3", Description: "Best for Speed & Efficiency"},
	{Alias: "deepseek", ID: "deepseek-coder", Name: "DeepSeek Coder", Description: "Best for Coding & Programming"},
	{Alias: "coder", ID: "deepseek-coder", Name: "DeepSeek R1", Description: "Best for Coding & Programming"},
	{Alias: "qwen", ID: "qwen3:8b", Name: "Qwen 3", Description: "Best for Logic & Mathematics"},
	{Alias: "vision", ID: "llava", Name: "LLaVA", Description: "Best for Image Understanding"},
}

// DefaultModel is the local model used until a switch.
const DefaultModel = "llama3.1"

// LookupModel finds a model by alias, case-insensitively.
func LookupModel(alias string) (Model, bool) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	for _, m := range Models {
		if m.Alias == alias {
			return m, true
		}
	}
	return Model{}, false
}

// SwitchQuery is the synthetic prompt that asks a backend to change model.
func SwitchQuery(alias string) string {
	return "switch to " + strings.ToLower(strings.TrimSpace(alias))
}

// parseSwitch returns the model named by a "switch to <alias>" query.
func parseSwitch(query string) (Model, bool) {
	lower := strings.ToLower(query)
	if !strings.Contains(lower, "switch to") {
		return Model{}, false
	}
	for _, m := range Models {
		if strings.Contains(lower, m.Alias) {
			return m, true
		}
	}
	return Model{}, false
}
