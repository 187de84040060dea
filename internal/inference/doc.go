// Package inference wraps the OpenAI-compatible chat-completions API that
// souschef delegates extraction, scaling, and rendering reasoning to.
//
// The rest of the application treats the service as a black box behind the
// Client interface: it sends an instruction and receives best-effort text.
// Callers that expect structured output extract and validate JSON from the
// response with ExtractJSON before accepting it; an unparseable response is
// a failure, never a partial success.
package inference
