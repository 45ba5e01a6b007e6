package persona

// Persona bundles the upstream voice selector and behaviour instructions
// published under a single identifier.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	VoiceID      string `json:"voiceId"`
	Instructions string `json:"instructions"`
}

// DefaultID is the persona every session starts with and the fallback for
// unknown identifiers.
const DefaultID = "assistant"

// Summary is the trimmed persona projection served by the discovery
// endpoint.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Voice string `json:"voice"`
}

// Summaries projects personas into their discovery form.
func Summaries(items []Persona) []Summary {
	out := make([]Summary, 0, len(items))
	for _, item := range items {
		out = append(out, Summary{ID: item.ID, Name: item.Name, Voice: item.VoiceID})
	}
	return out
}

// Seed provides the fixed persona set shipped with the relay.
func Seed() []Persona {
	return []Persona{
		{
			ID:           DefaultID,
			Name:         "General Assistant",
			VoiceID:      "alloy",
			Instructions: "You are a helpful, knowledgeable voice assistant. Keep answers concise and conversational, and ask a clarifying question when the request is ambiguous.",
		},
		{
			ID:           "formal",
			Name:         "Professional",
			VoiceID:      "echo",
			Instructions: "You are a professional consultant. Speak in a formal register, be precise and structured, avoid slang, and summarise key points at the end of longer answers.",
		},
		{
			ID:           "casual",
			Name:         "Friendly",
			VoiceID:      "shimmer",
			Instructions: "You are a warm, easygoing conversation partner. Use relaxed everyday language, react naturally to what the user says, and keep the mood light.",
		},
		{
			ID:           "creative",
			Name:         "Storyteller",
			VoiceID:      "ballad",
			Instructions: "You are an imaginative storyteller. Answer with vivid language and unexpected angles, and lean into metaphor and narrative when it helps the explanation land.",
		},
		{
			ID:           "teacher",
			Name:         "Instructor",
			VoiceID:      "sage",
			Instructions: "You are a patient instructor. Explain step by step, check understanding before moving on, and offer a short practice question when a concept is complete.",
		},
	}
}
