package relay

import (
	"github.com/careloop/voicebridge/internal/model/persona"
)

// Upstream event that announces the realtime session is initialized.
const eventSessionCreated = "session.created"

// Fixed operational defaults for the upstream session. Only the
// instructions and voice fields vary by persona.
const (
	audioFormatPCM16     = "pcm16"
	transcriptionModel   = "whisper-1"
	vadThreshold         = 0.5
	vadPrefixPaddingMS   = 300
	vadSilenceDurationMS = 800
	responseTemperature  = 0.8
	outputTokenCap       = "inf"
)

// SessionUpdate is the configuration frame the upstream service expects
// once its session exists.
type SessionUpdate struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

// SessionConfig mirrors the upstream session schema; the field set and
// encoding are dictated by the realtime API.
type SessionConfig struct {
	Modalities              []string      `json:"modalities"`
	Instructions            string        `json:"instructions"`
	Voice                   string        `json:"voice"`
	InputAudioFormat        string        `json:"input_audio_format"`
	OutputAudioFormat       string        `json:"output_audio_format"`
	InputAudioTranscription Transcription `json:"input_audio_transcription"`
	TurnDetection           TurnDetection `json:"turn_detection"`
	Temperature             float64       `json:"temperature"`
	MaxResponseOutputTokens string        `json:"max_response_output_tokens"`
}

// Transcription selects the live transcription model.
type Transcription struct {
	Model string `json:"model"`
}

// TurnDetection configures upstream voice activity detection.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

// SessionUpdateFor builds the session.update frame for the given persona,
// leaving every non-persona field at its fixed default.
func SessionUpdateFor(p persona.Persona) SessionUpdate {
	return SessionUpdate{
		Type: "session.update",
		Session: SessionConfig{
			Modalities:              []string{"text", "audio"},
			Instructions:            p.Instructions,
			Voice:                   p.VoiceID,
			InputAudioFormat:        audioFormatPCM16,
			OutputAudioFormat:       audioFormatPCM16,
			InputAudioTranscription: Transcription{Model: transcriptionModel},
			TurnDetection: TurnDetection{
				Type:              "server_vad",
				Threshold:         vadThreshold,
				PrefixPaddingMS:   vadPrefixPaddingMS,
				SilenceDurationMS: vadSilenceDurationMS,
			},
			Temperature:             responseTemperature,
			MaxResponseOutputTokens: outputTokenCap,
		},
	}
}
