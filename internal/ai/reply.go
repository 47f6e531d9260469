package ai

import "strings"

// ReplyKind is the closed set of reply classifications.
type ReplyKind string

const (
	KindFeedback      ReplyKind = "feedback"
	KindHint          ReplyKind = "hint"
	KindClarification ReplyKind = "clarification"
)

type ClassifiedReply struct {
	Kind    ReplyKind
	Content string
}

// Fallback texts substituted when the workflow engine is unreachable.
// The interview continues uninterrupted either way.
const (
	FallbackClarification = "Sorry, there was an error getting AI response. Please try again."
	FallbackHint          = "The AI assistant is unavailable right now. Take your best shot at the question and move on when you're ready."
)

// Classify decodes the engine's tagged reply. The embedded type tag is
// authoritative; the keyword heuristic below is a separate second stage
// used only when the tag is missing.
func Classify(reply *Reply) ClassifiedReply {
	switch reply.Type {
	case "feedback":
		return ClassifiedReply{Kind: KindFeedback, Content: firstNonEmpty(reply.Content, reply.Feedback, reply.Message)}
	case "hint":
		return ClassifiedReply{Kind: KindHint, Content: firstNonEmpty(reply.Content, reply.Hint, reply.Message)}
	case "clarification":
		return ClassifiedReply{Kind: KindClarification, Content: firstNonEmpty(reply.Content, reply.Message)}
	}
	content := firstNonEmpty(reply.Content, reply.Feedback, reply.Hint, reply.Message)
	return ClassifiedReply{Kind: classifyByKeywords(content), Content: content}
}

// classifyByKeywords is the untagged-reply fallback: replies that talk
// about feedback, scores or ratings are treated as feedback, everything
// else as a hint.
func classifyByKeywords(content string) ReplyKind {
	lower := strings.ToLower(content)
	if strings.Contains(lower, "feedback") ||
		strings.Contains(lower, "score") ||
		strings.Contains(lower, "rating") {
		return KindFeedback
	}
	return KindHint
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
