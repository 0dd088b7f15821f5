package realtime

// Upstream realtime event types the dispatcher classifies on. Anything else
// is forwarded to the client verbatim.
const (
	TypeSessionCreated         = "session.created"
	TypeSessionUpdate          = "session.update"
	TypeSessionUpdated         = "session.updated"
	TypeAudioDelta             = "response.audio.delta"
	TypeAudioTranscriptDelta   = "response.audio_transcript.delta"
	TypeAudioTranscriptDone    = "response.audio_transcript.done"
	TypeInputTranscriptionDone = "conversation.item.input_audio_transcription.completed"
	TypeSpeechStarted          = "input_audio_buffer.speech_started"
	TypeItemCreated            = "conversation.item.created"
	TypeOutputItemDone         = "response.output_item.done"
	TypeError                  = "error"

	// Injected upstream after a tool call resolves.
	TypeItemCreate     = "conversation.item.create"
	TypeResponseCreate = "response.create"

	itemTypeFunctionCall       = "function_call"
	itemTypeFunctionCallOutput = "function_call_output"
)

// Client-bound event types produced by the bridge.
const (
	ClientTypeAssistantAudio  = "assistant.audio"
	ClientTypeTranscriptDelta = "transcript.delta"
	ClientTypeTranscriptFinal = "transcript.final"
	ClientTypeSpeechStarted   = "speech_started"
)

const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// envelope is the first decode pass: just enough to classify the event.
type envelope struct {
	Type string `json:"type"`
}

// ConversationItem is the inner item object of item-level upstream events.
type ConversationItem struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

func (i ConversationItem) isFunctionCall() bool {
	return i.Type == itemTypeFunctionCall
}

type audioDeltaEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
}

type transcriptDeltaEvent struct {
	Type       string `json:"type"`
	Delta      string `json:"delta"`
	Transcript string `json:"transcript"`
}

type inputTranscriptionEvent struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
}

type itemCreatedEvent struct {
	Type           string           `json:"type"`
	PreviousItemID string           `json:"previous_item_id"`
	Item           ConversationItem `json:"item"`
}

type outputItemDoneEvent struct {
	Type string           `json:"type"`
	Item ConversationItem `json:"item"`
}

// AssistantAudioEvent carries one synthesized audio delta to the client.
type AssistantAudioEvent struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// TranscriptEvent carries incremental or finalized transcript text to the
// client, for either side of the conversation.
type TranscriptEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Role string `json:"role"`
}

// SpeechStartedEvent signals that server-side VAD detected user speech.
type SpeechStartedEvent struct {
	Type string `json:"type"`
}

// FunctionCallOutputItem delivers a resolved tool result upstream.
type FunctionCallOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

type itemCreateRequest struct {
	Type string                 `json:"type"`
	Item FunctionCallOutputItem `json:"item"`
}

type responseCreateRequest struct {
	Type string `json:"type"`
}

// InputAudioTranscription selects the transcription model for user audio.
type InputAudioTranscription struct {
	Model    string `json:"model"`
	Language string `json:"language"`
	Prompt   string `json:"prompt"`
}

// TurnDetection is the server-side VAD configuration.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}
