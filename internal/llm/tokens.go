package llm

import (
	"log"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func tokenEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			log.Printf("tiktoken encoding unavailable, falling back to estimate: %v", err)
			return
		}
		encoding = enc
	})
	return encoding
}

// CountTokens counts BPE tokens in text, falling back to a length/4 estimate
// when the encoding cannot be loaded.
func CountTokens(text string) int {
	if enc := tokenEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return len(text) / 4
}

// CountMessageTokens approximates the token cost of a message list, including
// the per-message framing overhead the chat format adds.
func CountMessageTokens(messages []Message) int {
	total := 2 // conversation start/end
	for _, m := range messages {
		total += 4 // per-message framing
		total += CountTokens(m.Role)
		total += CountTokens(m.Content)
	}
	return total
}

// TruncateMessages drops oldest history until the list fits maxTokens.
// A leading system message and the final message are never removed, so an
// over-budget [system, user] pair passes through unchanged. The slice is
// modified in place and returned.
func TruncateMessages(messages []Message, maxTokens int) []Message {
	for len(messages) > 1 && CountMessageTokens(messages) > maxTokens {
		if len(messages) > 2 && messages[0].Role == RoleSystem {
			messages = append(messages[:1], messages[2:]...)
		} else if messages[0].Role != RoleSystem {
			messages = messages[1:]
		} else {
			break
		}
	}
	return messages
}
