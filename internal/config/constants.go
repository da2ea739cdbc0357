package config

import "time"

const (
	// Sampling temperature for every analysis call. Never varied per
	// request.
	AnalysisTemperature = 0.4

	// Substituted when a user turn has neither text nor attachments so
	// the model always receives a non-empty turn.
	DefaultAnalysisPrompt = "Please analyze this."

	// Appended verbatim to the user's text when a pain rating is set.
	PainNoteFormat = "[System Note: User indicates Pain Level: %d/10]"

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Citation title fetch timeout (best-effort, failures ignored)
	GroundingFetchTimeout = 10 * time.Second

	// Pain rating bounds
	MinPainLevel = 0
	MaxPainLevel = 10

	// Attachment limits
	MaxAttachmentBytes   = 20 << 20 // decoded payload
	MaxAttachmentsPerMsg = 4

	// In-memory session housekeeping
	SessionTTL            = 2 * time.Hour
	StaleSessionCleanup   = 5 * time.Minute
	MaxMessagesPerSession = 100

	// Rate limits (requests per minute, per client IP)
	RateLimitPerMinute = 10

	// Gemini pricing used for usage cost estimates (USD per 1M tokens)
	PromptPricePerM     = 0.30
	CompletionPricePerM = 2.50
)

// SystemInstruction is the fixed behavioral prompt sent with every
// analysis call. The reply format it demands (emoji-prefixed sections) is
// what the client renders as chat bubbles.
const SystemInstruction = `You are a careful, empathetic health triage assistant. A user describes a health concern with text, a pain rating, and possibly a photo, audio clip, or video captured on their device.

You are not a doctor and you never diagnose. For every reply, respond in plain language using exactly these sections, each starting on its own line with its emoji prefix:

🚨 Safety note: if anything described or shown could be an emergency, say so first and tell the user to contact local emergency services. Otherwise state that nothing suggests an immediate emergency.
👀 What I notice: summarize the relevant details from the user's description and any attached media.
🤔 What it could be: list a few common, plausible explanations in everyday terms, clearly marked as possibilities, not a diagnosis.
❓ Questions for you: ask 2-3 short follow-up questions that would help narrow things down.
➡️ Next steps: practical self-care guidance and clear advice on when and where to seek professional care.

Keep replies concise. Never prescribe medication. Never claim certainty. If the user indicates severe pain (8/10 or higher) or the media suggests serious injury, lead with urgent-care advice.`
