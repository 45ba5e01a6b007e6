package relay

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/careloop/voicebridge/internal/model/persona"
)

func TestSessionUpdateForPopulatesPersonaFields(t *testing.T) {
	p := persona.Persona{ID: "teacher", VoiceID: "sage", Instructions: "explain step by step"}
	update := SessionUpdateFor(p)

	if update.Type != "session.update" {
		t.Fatalf("expected type session.update, got %s", update.Type)
	}
	if update.Session.Voice != "sage" {
		t.Fatalf("expected voice sage, got %s", update.Session.Voice)
	}
	if update.Session.Instructions != "explain step by step" {
		t.Fatalf("unexpected instructions: %s", update.Session.Instructions)
	}
}

func TestSessionUpdateFixedDefaults(t *testing.T) {
	s := SessionUpdateFor(persona.Persona{}).Session

	if !reflect.DeepEqual(s.Modalities, []string{"text", "audio"}) {
		t.Fatalf("unexpected modalities: %v", s.Modalities)
	}
	if s.InputAudioFormat != "pcm16" || s.OutputAudioFormat != "pcm16" {
		t.Fatalf("unexpected audio formats: %s / %s", s.InputAudioFormat, s.OutputAudioFormat)
	}
	if s.InputAudioTranscription.Model != "whisper-1" {
		t.Fatalf("unexpected transcription model: %s", s.InputAudioTranscription.Model)
	}
	if s.TurnDetection.Type != "server_vad" || s.TurnDetection.Threshold != 0.5 ||
		s.TurnDetection.PrefixPaddingMS != 300 || s.TurnDetection.SilenceDurationMS != 800 {
		t.Fatalf("unexpected turn detection: %+v", s.TurnDetection)
	}
	if s.Temperature != 0.8 {
		t.Fatalf("unexpected temperature: %v", s.Temperature)
	}
	if s.MaxResponseOutputTokens != "inf" {
		t.Fatalf("unexpected output token cap: %v", s.MaxResponseOutputTokens)
	}
}

func TestSessionUpdateWireEncoding(t *testing.T) {
	data, err := json.Marshal(SessionUpdateFor(persona.Persona{VoiceID: "alloy"}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	var session map[string]json.RawMessage
	if err := json.Unmarshal(raw["session"], &session); err != nil {
		t.Fatalf("session field missing or malformed: %v", err)
	}

	for _, key := range []string{
		"modalities", "instructions", "voice", "input_audio_format",
		"output_audio_format", "input_audio_transcription", "turn_detection",
		"temperature", "max_response_output_tokens",
	} {
		if _, ok := session[key]; !ok {
			t.Fatalf("session payload missing %s key", key)
		}
	}
	if string(session["max_response_output_tokens"]) != `"inf"` {
		t.Fatalf("token cap must encode as the string inf, got %s", session["max_response_output_tokens"])
	}
}
