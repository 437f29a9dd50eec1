package arbiter

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"kaspabot/internal/arbiter/mocks"
	"kaspabot/internal/evidence"
	"kaspabot/internal/llm"

	"go.uber.org/mock/gomock"
)

func localChunk(content string) evidence.Chunk {
	return evidence.Chunk{Content: content, Source: "whitepaper", Section: "KNIGHT_Protocol"}
}

func webChunk(content string) evidence.Chunk {
	return evidence.Chunk{Content: content, Source: evidence.SourceWeb, URL: "https://example.com", Score: 0.9}
}

func TestMergeNoEvidenceSkipsGeneration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	a := New(mockGen, 0)
	answer, err := a.Merge(context.Background(), "what is ghostdag", nil, nil, nil)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if answer != NoEvidenceAnswer {
		t.Errorf("answer = %q, want fixed no-evidence answer", answer)
	}
}

func TestMergeLocalOnlySingleSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
			user := messages[len(messages)-1]
			if !strings.Contains(user.Content, "KNIGHT selects the tip") {
				t.Errorf("user message missing chunk content: %q", user.Content)
			}
			if !strings.Contains(user.Content, "[WHITEPAPER:KNIGHT_Protocol]") {
				t.Errorf("user message missing source tag: %q", user.Content)
			}
			return "  the answer  ", nil
		})

	a := New(mockGen, 0)
	answer, err := a.Merge(context.Background(), "how does tie-breaking work", nil,
		[]evidence.Chunk{localChunk("KNIGHT selects the tip whose cluster least recently used an excessive rank")}, nil)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q, want trimmed generation output", answer)
	}
}

func TestMergeWebOnlySingleSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
			if !strings.Contains(messages[len(messages)-1].Content, "Crescendo activated") {
				t.Error("web chunk content not in prompt")
			}
			return "web answer", nil
		})

	a := New(mockGen, 0)
	answer, err := a.Merge(context.Background(), "latest upgrade", nil, nil,
		[]evidence.Chunk{webChunk("Crescendo activated on mainnet")})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if answer != "web answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestMergeDualSourceJudgePrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
			system := messages[0]
			if system.Role != "system" {
				t.Fatalf("first message role = %q, want system", system.Role)
			}
			if !strings.Contains(system.Content, "PRIMARY source of truth") {
				t.Error("judge prompt missing web precedence rule")
			}
			if !strings.Contains(system.Content, "Never include URLs") {
				t.Error("judge prompt missing URL prohibition")
			}

			user := messages[len(messages)-1].Content
			webIdx := strings.Index(user, "VERIFIED ONLINE SOURCES")
			localIdx := strings.Index(user, "LOCAL SOURCES")
			if webIdx < 0 || localIdx < 0 || webIdx > localIdx {
				t.Error("web block must appear before local block")
			}
			return "merged answer", nil
		})

	a := New(mockGen, 0)
	answer, err := a.Merge(context.Background(), "block rate", nil,
		[]evidence.Chunk{localChunk("one block per second")},
		[]evidence.Chunk{webChunk("ten blocks per second since Crescendo")})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if answer != "merged answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestMergeDualSourceFailureFallsBackToLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := mocks.NewMockGenerator(ctrl)
	gomock.InOrder(
		mockGen.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("judge model unavailable")),
		mockGen.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
				user := messages[len(messages)-1].Content
				if strings.Contains(user, "ten blocks per second") {
					t.Error("fallback prompt should use local evidence only")
				}
				if !strings.Contains(user, "one block per second") {
					t.Error("fallback prompt missing local evidence")
				}
				return "fallback answer", nil
			}),
	)

	a := New(mockGen, 0)
	answer, err := a.Merge(context.Background(), "block rate", nil,
		[]evidence.Chunk{localChunk("one block per second")},
		[]evidence.Chunk{webChunk("ten blocks per second")})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if answer != "fallback answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestMergeFallbackFailureReturnsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("model down")).
		Times(2)

	a := New(mockGen, 0)
	if _, err := a.Merge(context.Background(), "q", nil,
		[]evidence.Chunk{localChunk("x")}, []evidence.Chunk{webChunk("y")}); err == nil {
		t.Fatal("expected error when both judge and fallback generation fail")
	}
}

func TestMergeInjectsHistoryBeforeFinalTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := []llm.Message{
		{Role: "user", Content: "what is kaspa"},
		{Role: "assistant", Content: "a proof-of-work blockDAG"},
	}

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
			if len(messages) != 4 {
				t.Fatalf("len(messages) = %d, want system + 2 history + user", len(messages))
			}
			if messages[1].Content != "what is kaspa" || messages[2].Content != "a proof-of-work blockDAG" {
				t.Error("history turns not injected in order")
			}
			if messages[3].Role != "user" {
				t.Errorf("final message role = %q, want user", messages[3].Role)
			}
			return "ok", nil
		})

	a := New(mockGen, 0)
	if _, err := a.Merge(context.Background(), "and how fast is it", history,
		[]evidence.Chunk{localChunk("block rate parameter")}, nil); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
}

func TestFormatChunkBlockCapsStream(t *testing.T) {
	chunks := make([]evidence.Chunk, 0, 20)
	for i := 0; i < 20; i++ {
		chunks = append(chunks, webChunk("fact"))
	}
	block := formatChunkBlock(chunks, "web")
	if got := strings.Count(block, "[WEB "); got != maxChunksPerStream {
		t.Errorf("block contains %d chunks, want %d", got, maxChunksPerStream)
	}
}

func TestFormatChunkBlockEmpty(t *testing.T) {
	if got := formatChunkBlock(nil, "rag"); got != "(no rag chunks)" {
		t.Errorf("empty block = %q", got)
	}
}

func TestAnswersOmitURLsAndSourceLabels(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The final answer must read as plain prose: no literal URLs and no
	// mention of the evidence streams it was fused from.
	forbidden := regexp.MustCompile(`https?://|\b(RAG|Web|Gemini|local|offline)\b`)

	mockGen := mocks.NewMockGenerator(ctrl)
	mockGen.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Kaspa confirms transactions in about ten seconds. The KNIGHT procedure breaks ties by selecting the tip whose cluster least recently used an excessive rank.", nil).
		Times(2)

	a := New(mockGen, 0)

	dual, err := a.Merge(context.Background(), "how fast is kaspa", nil,
		[]evidence.Chunk{localChunk("KNIGHT selects the tip")},
		[]evidence.Chunk{webChunk("confirmation takes ~10s, see https://kaspa.org/docs")})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	single, err := a.Merge(context.Background(), "how fast is kaspa", nil,
		[]evidence.Chunk{localChunk("KNIGHT selects the tip")}, nil)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	for name, answer := range map[string]string{
		"no evidence": NoEvidenceAnswer,
		"dual source": dual,
		"local only":  single,
	} {
		if m := forbidden.FindString(answer); m != "" {
			t.Errorf("%s answer leaks %q: %q", name, m, answer)
		}
	}
}
