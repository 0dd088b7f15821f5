package realtime

import (
	"fmt"
	"time"

	"github.com/vegalabs/voicegate/internal/config"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// Session policy defaults. These are mandatory bridge policy for every
// outbound session.update, not client-optional fields.
const (
	transcriptionModel  = "gpt-4o-transcribe"
	transcriptionPrompt = "responde en el mismo idioma."

	vadType              = "server_vad"
	vadThreshold         = 0.6
	vadPrefixPaddingMs   = 300
	vadSilenceDurationMs = 800

	toolChoiceAuto = "auto"
)

// SessionPolicy enriches client->upstream session negotiation messages with
// the bridge's voice, transcription, turn-detection, instruction and tool
// settings. It never touches upstream->client session echoes.
type SessionPolicy struct {
	voice         string
	systemPrompt  string
	temperature   *float64
	location      *time.Location
	transcription InputAudioTranscription
	turnDetection TurnDetection
	registry      toolsystem.Registry
}

func NewSessionPolicy(cfg config.SessionConfig, registry toolsystem.Registry) (*SessionPolicy, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid session timezone %q: %w", cfg.Timezone, err)
	}

	return &SessionPolicy{
		voice:        cfg.Voice,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		location:     loc,
		transcription: InputAudioTranscription{
			Model:    transcriptionModel,
			Language: cfg.Language,
			Prompt:   transcriptionPrompt,
		},
		turnDetection: TurnDetection{
			Type:              vadType,
			Threshold:         vadThreshold,
			PrefixPaddingMs:   vadPrefixPaddingMs,
			SilenceDurationMs: vadSilenceDurationMs,
		},
		registry: registry,
	}, nil
}

// Transform applies the session policy to one decoded client message.
// Non-negotiation messages pass through untouched; unknown session
// sub-fields the client supplied are preserved.
func (p *SessionPolicy) Transform(msg map[string]any) map[string]any {
	if msg == nil {
		return msg
	}
	if t, _ := msg["type"].(string); t != TypeSessionUpdate {
		return msg
	}

	session, ok := msg["session"].(map[string]any)
	if !ok {
		session = make(map[string]any)
	}

	session["voice"] = p.voice
	session["input_audio_transcription"] = p.transcription
	session["turn_detection"] = p.turnDetection

	if p.systemPrompt != "" {
		now := time.Now().In(p.location).Format("15:04:05")
		session["instructions"] = fmt.Sprintf("%s\n\nNota: La hora actual es %s.", p.systemPrompt, now)
	}

	if p.temperature != nil {
		session["temperature"] = *p.temperature
	}

	if p.registry.Len() > 0 {
		session["tools"] = p.registry.Schemas()
		session["tool_choice"] = toolChoiceAuto
	}

	msg["session"] = session
	return msg
}
