package chat

import "context"

// ChunkStream yields streamed text. Next returns io.EOF once the stream is done.
type ChunkStream interface {
	Next() (string, error)
}

// ModelSession is the model-side conversation handle. It keeps multi-turn
// context; callers only send text and read chunks.
type ModelSession interface {
	SendStream(ctx context.Context, text string) ChunkStream
}

// Suggester proposes follow-up questions for one exchange.
type Suggester interface {
	Suggest(ctx context.Context, question, answer string) ([]string, error)
}

// Model opens model sessions and answers suggestion requests.
type Model interface {
	Suggester
	NewSession() ModelSession
}
