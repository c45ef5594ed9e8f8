package speech

// Default voice for TTS. The domain vocabulary is Brazilian Portuguese,
// so the default is a pt-BR neural voice.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "pt-BR-FranciscaNeural"

// DefaultLang is the SSML language tag matching the default voice.
const DefaultLang = "pt-BR"

// Audio format returned by the TTS service and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for the speech service credentials. When unset the
// speaker falls back to logging announcements instead of playing audio.
const (
	EnvSpeechKey    = "ONDEESTOU_SPEECH_KEY"
	EnvSpeechRegion = "ONDEESTOU_SPEECH_REGION"
)
