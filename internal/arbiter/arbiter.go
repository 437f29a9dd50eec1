// Package arbiter fuses local corpus evidence and live web evidence into a
// single prose answer, with web evidence taking precedence on conflict.
package arbiter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kaspabot/internal/contextutil"
	"kaspabot/internal/evidence"
	"kaspabot/internal/llm"
)

//go:generate go run go.uber.org/mock/mockgen -source=arbiter.go -destination=mocks/mock_generator.go -package=mocks

// Generator produces text from a conversation. Satisfied by llm.Client.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// NoEvidenceAnswer is returned when neither retriever produced anything.
// The generation service is not called in that case.
const NoEvidenceAnswer = "I couldn't find any information about that in the Kaspa knowledge base or from current web sources. Try rephrasing your question or ask about Kaspa protocols, mining, or ecosystem topics."

// maxChunksPerStream caps how much evidence from each retriever makes it
// into the prompt.
const maxChunksPerStream = 12

// Arbiter merges evidence streams into one answer.
type Arbiter struct {
	generator Generator
	timeout   time.Duration
}

// New creates an arbiter on top of a generation client. A positive timeout
// bounds each generation call; zero means no bound beyond the caller's
// context.
func New(generator Generator, timeout time.Duration) *Arbiter {
	return &Arbiter{generator: generator, timeout: timeout}
}

// Merge produces the final answer for a question given prior conversation
// turns and the evidence from both retrievers.
//
// With no evidence at all it returns a fixed message without calling the
// generator. With evidence from one retriever it generates directly from
// that stream. With both it runs a judge generation where the web stream is
// authoritative; if that call fails it falls back to the local-only path.
func (a *Arbiter) Merge(ctx context.Context, question string, history []llm.Message, local, web []evidence.Chunk) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case len(local) == 0 && len(web) == 0:
		logger.InfoContext(ctx, "no evidence retrieved, returning fixed answer")
		return NoEvidenceAnswer, nil

	case len(web) == 0:
		logger.InfoContext(ctx, "arbitration skipped", "path", "local-only", "chunks", len(local))
		return a.generate(ctx, singleSourceMessages(question, history, local))

	case len(local) == 0:
		logger.InfoContext(ctx, "arbitration skipped", "path", "web-only", "chunks", len(web))
		return a.generate(ctx, singleSourceMessages(question, history, web))
	}

	logger.InfoContext(ctx, "arbitrating evidence streams",
		"local_chunks", len(local),
		"web_chunks", len(web),
	)
	answer, err := a.generate(ctx, judgeMessages(question, history, local, web))
	if err == nil {
		return answer, nil
	}

	logger.WarnContext(ctx, "arbitration failed, falling back to local evidence", "error", err)
	answer, err = a.generate(ctx, singleSourceMessages(question, history, local))
	if err != nil {
		return "", fmt.Errorf("fallback generation failed: %w", err)
	}
	return answer, nil
}

func (a *Arbiter) generate(ctx context.Context, messages []llm.Message) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	answer, err := a.generator.ChatWithMessages(ctx, messages, llm.ChatParams{Temperature: 0.2})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// singleSourcePrompt is the system prompt for the direct generation path,
// condensed from the full KaspaBot instruction set.
const singleSourcePrompt = `You are KaspaBot, a technical expert exclusively focused on the Kaspa cryptocurrency and its blockchain protocols.

Rules:
- Interpret ambiguous questions as being about Kaspa. "How does mining work?" means "How does Kaspa mining work?". Do not announce the assumption, just answer.
- If a question is clearly unrelated to Kaspa, say you specialize exclusively in Kaspa and ask how the question relates to it.
- Use exact procedure names from the context. Say "K-Colouring procedure" and "UMC-Voting procedure", never "Algorithm 3" or "Algorithm 4". State what each procedure returns.
- Keep safety and liveness distinct. Safety violations are invalid outcomes that break protocol rules. Liveness violations are delayed but eventually correct outcomes.
- Explain mechanisms, not just outcomes. For tie-breaking, state the specific rule that triggers each action, such as KNIGHT selecting the tip whose cluster least recently used an excessive rank.
- Cut hedging. Replace "helps ensure" with "ensures" or "prevents". Replace "generally" with the specific condition.
- Ground every claim in the provided context, using its exact terminology, parameter names, and values.
- Be direct. Lead with the mechanism or procedure name, then how it works.`

// singleSourceMessages builds the direct generation conversation. Whitepaper
// chunks are placed first so the most precise material anchors the answer.
func singleSourceMessages(question string, history []llm.Message, chunks []evidence.Chunk) []llm.Message {
	ordered := make([]evidence.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Source == "whitepaper" {
			ordered = append(ordered, c)
		}
	}
	for _, c := range chunks {
		if c.Source != "whitepaper" {
			ordered = append(ordered, c)
		}
	}
	if len(ordered) > maxChunksPerStream {
		ordered = ordered[:maxChunksPerStream]
	}

	var b strings.Builder
	for _, c := range ordered {
		tag := "[" + strings.ToUpper(c.Source)
		if c.Filename != "" {
			tag += ":" + c.Filename
		}
		if c.Section != "" {
			tag += ":" + c.Section
		}
		tag += "]"
		b.WriteString(tag + "\n" + c.Content + "\n\n")
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: singleSourcePrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Technical Context:\n%s\nQuestion: %s\n\nProvide a precise, mechanism-focused answer about Kaspa using exact procedure names and terminology from the context.", b.String(), question),
	})
	return messages
}

// judgeMessages builds the dual-source arbitration conversation. The web
// block is declared authoritative and the local block supplementary, and
// the answer is forbidden from naming either evidence stream.
func judgeMessages(question string, history []llm.Message, local, web []evidence.Chunk) []llm.Message {
	system := "You are a fact verification judge for questions about the Kaspa blockchain, with strict priority rules:\n" +
		"- Online sources (fresh, verified, authoritative) are the PRIMARY source of truth.\n" +
		"- Local offline material (potentially outdated) is SUPPLEMENTARY only.\n\n" +
		"Decision rules:\n" +
		"1. Always prioritize online sources. If online sources contradict local sources, completely ignore the local information.\n" +
		"2. Use local sources only to supplement or add context where they do not conflict.\n" +
		"3. When online sources carry newer information, treat the local sources as outdated.\n" +
		"4. When in doubt, trust the online sources completely.\n" +
		"5. Never include URLs, citations, or raw source identifiers in the answer.\n" +
		"6. Be comprehensive but concise.\n" +
		"7. Do NOT mention the words 'RAG', 'Web', 'Gemini', 'local', or 'offline' in the final answer.\n" +
		"- CurrentTime: " + time.Now().UTC().Format(time.RFC3339)

	user := fmt.Sprintf(
		"Question:\n%s\n\n"+
			"VERIFIED ONLINE SOURCES (AUTHORITATIVE, USE AS PRIMARY TRUTH):\n%s\n\n"+
			"LOCAL SOURCES (SUPPLEMENTARY ONLY, IGNORE ON CONFLICT):\n%s\n\n"+
			"Produce one coherent answer based primarily on the verified online information, adding local context only where it does not conflict. Write with confidence and do not use source labels in the answer.",
		question,
		formatChunkBlock(web, "web"),
		formatChunkBlock(local, "rag"),
	)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: user})
	return messages
}

// formatChunkBlock renders one evidence stream as numbered prompt lines.
func formatChunkBlock(chunks []evidence.Chunk, kind string) string {
	if len(chunks) > maxChunksPerStream {
		chunks = chunks[:maxChunksPerStream]
	}
	lines := make([]string, 0, len(chunks))
	for i, c := range chunks {
		content := strings.TrimSpace(strings.ReplaceAll(c.Content, "\n", " "))
		lines = append(lines, fmt.Sprintf("[%s %d] score=%g source=%s section=%s date=%s url=%s\n%s",
			strings.ToUpper(kind), i+1, c.Score, c.Source, c.Section, c.Date, c.URL, content))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("(no %s chunks)", kind)
	}
	return strings.Join(lines, "\n")
}
