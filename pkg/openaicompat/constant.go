package openaicompat

import "time"

// Known OpenAI-compatible endpoints.
const (
	OpenAIBaseURL   = "https://api.openai.com/v1"
	QwenBaseURL     = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"
	DeepSeekBaseURL = "https://api.deepseek.com/v1"

	OpenAIDefaultModel   = "gpt-4o-mini"
	QwenDefaultModel     = "qwen-plus"
	DeepSeekDefaultModel = "deepseek-chat"

	DefaultTimeout = 30 * time.Second
)
