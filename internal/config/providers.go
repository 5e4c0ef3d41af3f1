package config

import (
	"fmt"
	"sort"
)

// API types decide which chat adapter serves a provider.
const (
	APITypeRelay  = "relay"  // raw OpenAI-compatible HTTP endpoint
	APITypeOpenAI = "openai" // official OpenAI API via SDK
	APITypeGemini = "gemini" // Google Gemini via genai SDK
)

// Provider describes one hosted chat-completion endpoint. BaseURL
// includes the provider's version segment, so the relay client can
// uniformly append /chat/completions.
type Provider struct {
	ID           string
	Name         string
	APIType      string
	BaseURL      string
	Models       []string
	DefaultModel string
	// ExtraHeaders are sent verbatim with every request. Some relays
	// (OpenRouter) require attribution headers.
	ExtraHeaders map[string]string
}

var providers = map[string]Provider{
	"openai": {
		ID:           "openai",
		Name:         "OpenAI",
		APIType:      APITypeOpenAI,
		BaseURL:      "https://api.openai.com/v1",
		Models:       []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"},
		DefaultModel: "gpt-4o-mini",
	},
	"deepseek": {
		ID:           "deepseek",
		Name:         "DeepSeek",
		APIType:      APITypeRelay,
		BaseURL:      "https://api.deepseek.com/v1",
		Models:       []string{"deepseek-chat", "deepseek-reasoner"},
		DefaultModel: "deepseek-chat",
	},
	"kimi": {
		ID:           "kimi",
		Name:         "Moonshot Kimi",
		APIType:      APITypeRelay,
		BaseURL:      "https://api.moonshot.cn/v1",
		Models:       []string{"moonshot-v1-8k", "moonshot-v1-32k"},
		DefaultModel: "moonshot-v1-8k",
	},
	"qwen": {
		ID:           "qwen",
		Name:         "Alibaba Qwen",
		APIType:      APITypeRelay,
		BaseURL:      "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Models:       []string{"qwen-turbo", "qwen-plus", "qwen-max"},
		DefaultModel: "qwen-plus",
	},
	"zhipu": {
		ID:           "zhipu",
		Name:         "Zhipu GLM",
		APIType:      APITypeRelay,
		BaseURL:      "https://open.bigmodel.cn/api/paas/v4",
		Models:       []string{"glm-4", "glm-3-turbo"},
		DefaultModel: "glm-4",
	},
	"openrouter": {
		ID:           "openrouter",
		Name:         "OpenRouter",
		APIType:      APITypeRelay,
		BaseURL:      "https://openrouter.ai/api/v1",
		Models:       []string{"anthropic/claude-3.5-sonnet", "deepseek/deepseek-chat", "google/gemini-2.5-pro"},
		DefaultModel: "anthropic/claude-3.5-sonnet",
		ExtraHeaders: map[string]string{
			"HTTP-Referer": "https://github.com/dkrasnov/tvcut",
			"X-Title":      "tvcut",
		},
	},
	"chataiapi": {
		ID:           "chataiapi",
		Name:         "ChatAI API",
		APIType:      APITypeRelay,
		BaseURL:      "https://www.chataiapi.com/v1",
		Models:       []string{"gpt-4o-mini", "deepseek-chat", "claude-3.5-sonnet"},
		DefaultModel: "gpt-4o-mini",
	},
	"suanli": {
		ID:           "suanli",
		Name:         "Suanli Cloud",
		APIType:      APITypeRelay,
		BaseURL:      "https://api.suanli.cn/v1",
		Models:       []string{"deepseek-r1", "deepseek-v3"},
		DefaultModel: "deepseek-v3",
	},
	"gemini": {
		ID:           "gemini",
		Name:         "Google Gemini",
		APIType:      APITypeGemini,
		Models:       []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-1.5-pro"},
		DefaultModel: "gemini-2.5-flash",
	},
	"custom": {
		ID:      "custom",
		Name:    "Custom relay",
		APIType: APITypeRelay,
		// BaseURL must come from config.
	},
}

// LookupProvider returns the registry entry for id.
func LookupProvider(id string) (Provider, error) {
	p, ok := providers[id]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (see `tvcut providers`)", id)
	}
	return p, nil
}

// Providers returns all registry entries sorted by ID.
func Providers() []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
