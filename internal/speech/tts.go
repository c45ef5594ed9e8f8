package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// Compile-time interface check.
var _ domain.Synthesizer = (*TTSClient)(nil)

// TTSOption configures the TTS client.
type TTSOption func(*TTSClient)

// WithVoice sets the synthesis voice.
func WithVoice(voice string) TTSOption {
	return func(c *TTSClient) { c.voice = voice }
}

// WithAudioFormat sets the requested audio output format.
func WithAudioFormat(format string) TTSOption {
	return func(c *TTSClient) { c.format = format }
}

// WithHTTPTimeout sets the HTTP timeout for synthesis requests.
func WithHTTPTimeout(d time.Duration) TTSOption {
	return func(c *TTSClient) { c.httpClient.Timeout = d }
}

// TTSClient synthesizes announcement text through the Azure Cognitive
// Services speech endpoint.
type TTSClient struct {
	subscriptionKey string
	region          string
	voice           string
	format          string
	httpClient      *http.Client
	log             *logger.Logger
}

// NewTTSClient creates a TTS client with the given credentials.
func NewTTSClient(key, region string, log *logger.Logger, opts ...TTSOption) *TTSClient {
	c := &TTSClient{
		subscriptionKey: key,
		region:          region,
		voice:           DefaultVoice,
		format:          DefaultAudioFormat,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the configured voice name.
func (c *TTSClient) Voice() string { return c.voice }

// Synthesize converts text to speech audio (WAV bytes).
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	url := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", c.region)

	ssml := c.buildSSML(text)
	c.log.Debug("tts: synthesizing %d chars with voice %s", len(text), c.voice)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "ondeestou/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	c.log.Debug("tts: got %d bytes of audio", len(audio))
	return audio, nil
}

// buildSSML wraps the text in SSML for the synthesis request.
func (c *TTSClient) buildSSML(text string) string {
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>`,
		DefaultLang, DefaultLang, c.voice, text,
	)
}
