// Package providers contains the AI provider clients used for risk
// analysis and remediation script generation.
//
// The Client interface exposes a single completion operation; the two
// supported response shapes (Anthropic's content[0].text and OpenAI's
// choices[0].message.content) are each confined to their adapter, so the
// shape decision is made exactly once, when the client is constructed.
// Callers never branch on provider type after construction.
package providers
