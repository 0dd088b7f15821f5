package realtime

import (
	"context"
	"encoding/json"

	"github.com/vegalabs/voicegate/pkg/Logger"
)

// Dispatcher classifies upstream events, translates the known ones into the
// client protocol and triggers tool dispatch on completed function calls.
// One instance lives per connection; it is single-threaded by construction
// (the upstream pump calls Dispatch one event at a time).
type Dispatcher struct {
	logger  *Logger.Logger
	invoker *Invoker
	// pending maps call_id -> previous_item_id, best-effort provenance.
	// Entries are removed when the call resolves and the whole map dies
	// with the connection.
	pending map[string]string
}

func NewDispatcher(invoker *Invoker, logger *Logger.Logger) *Dispatcher {
	return &Dispatcher{
		logger:  logger,
		invoker: invoker,
		pending: make(map[string]string),
	}
}

// Dispatch handles one raw upstream frame. Decode failures are logged and
// the frame dropped; only sink write errors are returned, since those mean
// the transport itself is gone.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte, client, upstream Sink) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.logger.Errorf("dropping malformed upstream frame (%d bytes): %v", len(raw), err)
		return nil
	}

	switch env.Type {
	case TypeSessionCreated, TypeSessionUpdate, TypeSessionUpdated:
		// Session state the upstream service furnished is never rewritten.
		return client.Send(json.RawMessage(raw))

	case TypeAudioDelta:
		var ev audioDeltaEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			d.logger.Errorf("dropping bad %s event: %v", env.Type, err)
			return nil
		}
		return client.Send(AssistantAudioEvent{Type: ClientTypeAssistantAudio, Audio: ev.Delta})

	case TypeAudioTranscriptDelta, TypeAudioTranscriptDone:
		var ev transcriptDeltaEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			d.logger.Errorf("dropping bad %s event: %v", env.Type, err)
			return nil
		}
		out := TranscriptEvent{Type: ClientTypeTranscriptDelta, Text: ev.Delta, Role: RoleAssistant}
		if env.Type == TypeAudioTranscriptDone {
			out.Type = ClientTypeTranscriptFinal
			out.Text = ev.Transcript
		}
		return client.Send(out)

	case TypeInputTranscriptionDone:
		var ev inputTranscriptionEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			d.logger.Errorf("dropping bad %s event: %v", env.Type, err)
			return nil
		}
		return client.Send(TranscriptEvent{
			Type: ClientTypeTranscriptFinal,
			Text: extractTranscriptText(ev.Transcript),
			Role: RoleUser,
		})

	case TypeSpeechStarted:
		return client.Send(SpeechStartedEvent{Type: ClientTypeSpeechStarted})

	case TypeItemCreated:
		var ev itemCreatedEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			d.logger.Errorf("dropping bad %s event: %v", env.Type, err)
			return nil
		}
		if ev.Item.isFunctionCall() {
			// The client sees tool activity only once the call resolves.
			d.pending[ev.Item.CallID] = ev.PreviousItemID
			return nil
		}
		return client.Send(json.RawMessage(raw))

	case TypeOutputItemDone:
		var ev outputItemDoneEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			d.logger.Errorf("dropping bad %s event: %v", env.Type, err)
			return nil
		}
		if ev.Item.isFunctionCall() {
			return d.resolveToolCall(ctx, ev.Item, upstream)
		}
		return client.Send(json.RawMessage(raw))

	case TypeError:
		d.logger.Errorf("upstream realtime error: %s", raw)
		return client.Send(json.RawMessage(raw))

	default:
		return client.Send(json.RawMessage(raw))
	}
}

// resolveToolCall runs the tool and injects exactly one function_call_output
// item plus one continue-generation request upstream, in that order.
func (d *Dispatcher) resolveToolCall(ctx context.Context, item ConversationItem, upstream Sink) error {
	d.logger.Infof("dispatching tool call %s (%s)", item.Name, item.CallID)

	out := d.invoker.Invoke(ctx, item.Name, item.Arguments)
	delete(d.pending, item.CallID)

	if err := upstream.Send(itemCreateRequest{
		Type: TypeItemCreate,
		Item: FunctionCallOutputItem{
			Type:   itemTypeFunctionCallOutput,
			CallID: item.CallID,
			Output: Stringify(out),
		},
	}); err != nil {
		return err
	}
	return upstream.Send(responseCreateRequest{Type: TypeResponseCreate})
}

// extractTranscriptText unwraps transcripts the upstream delivers as a
// JSON-encoded string with a text field, falling back to the raw value.
func extractTranscriptText(transcript string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(transcript), &parsed); err != nil {
		return transcript
	}
	return parsed.Text
}
