package chunker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// runeTokenizer treats every rune as one token.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	out := make([]int, len(runes))
	for i, r := range runes {
		out[i] = int(r)
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, t := range tokens {
		runes[i] = rune(t)
	}
	return string(runes)
}

// rejoin reverses Split by dropping the overlapping prefix of each chunk.
func rejoin(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c)
			continue
		}
		b.WriteString(string([]rune(c)[overlap:]))
	}
	return b.String()
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap != 25 {
			t.Errorf("expected overlap reduced to 25, got %d", p.overlap)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", New().Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{Title: "empty.txt"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestProcessor_Process_AssignsIDs(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(0))
	doc := &domain.Document{Title: "doc1.txt", Content: strings.Repeat("a", 25)}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.ID != domain.ChunkID("doc1.txt", i) {
			t.Errorf("chunk %d: unexpected id %q", i, c.ID)
		}
		if c.Index != i || c.Title != "doc1.txt" {
			t.Errorf("chunk %d: unexpected metadata %+v", i, c)
		}
	}
	if chunks[2].Content != "aaaaa" {
		t.Errorf("expected short trailing chunk, got %q", chunks[2].Content)
	}
}

func TestProcessor_Process_SingleSentence(t *testing.T) {
	doc := &domain.Document{Title: "doc1.txt", Content: "Paris is the capital of France."}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "doc1.txt_0" {
		t.Fatalf("expected a single chunk doc1.txt_0, got %+v", chunks)
	}
}

func TestProcessor_Process_WithTokenizer(t *testing.T) {
	p := New(WithChunkSize(4), WithOverlap(1), WithTokenizer(runeTokenizer{}))
	doc := &domain.Document{Title: "t.md", Content: "abcdefghij"}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"abcd", "defg", "ghij"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Content)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{"empty", "", 10, 2, nil},
		{"shorter than size", "hello", 10, 2, []string{"hello"}},
		{"exact size", "abcde", 5, 1, []string{"abcde"}},
		{"disjoint", "abcdefgh", 3, 0, []string{"abc", "def", "gh"}},
		{"overlapping", "abcdefgh", 4, 2, []string{"abcd", "cdef", "efgh"}},
		{"multibyte runes", "héllo wörld", 4, 0, []string{"héll", "o wö", "rld"}},
		{"invalid overlap", "abcdefgh", 4, 9, []string{"abcd", "defg", "gh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.size, tt.overlap)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSplit_Properties(t *testing.T) {
	texts := []string{
		"x",
		"Paris is the capital of France.",
		strings.Repeat("lorem ipsum dolor sit amet ", 97),
		strings.Repeat("日本語のテキスト", 33),
	}
	params := [][2]int{{1, 0}, {7, 3}, {50, 10}, {100, 0}, {1000, 200}}

	for _, text := range texts {
		for _, p := range params {
			size, overlap := p[0], p[1]
			chunks := Split(text, size, overlap)

			if len(chunks) == 0 {
				t.Fatalf("expected at least one chunk for %q", text)
			}
			for _, c := range chunks {
				if n := len([]rune(c)); n > size {
					t.Errorf("chunk of %d runes exceeds size %d", n, size)
				}
			}
			if got := rejoin(chunks, overlap); got != text {
				t.Errorf("size=%d overlap=%d: rejoined text differs", size, overlap)
			}

			again := Split(text, size, overlap)
			if len(again) != len(chunks) {
				t.Errorf("size=%d overlap=%d: split is not deterministic", size, overlap)
			}
		}
	}
}

func TestSplitTokens_Empty(t *testing.T) {
	if got := SplitTokens(runeTokenizer{}, "", 10, 0); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

// byteTokenizer treats every byte as one token, so windows can end inside a
// multi-byte rune.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) []int {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = int(text[i])
	}
	return out
}

func (byteTokenizer) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, t := range tokens {
		b[i] = byte(t)
	}
	return string(b)
}

func TestSplitTokens_RuneBoundaries(t *testing.T) {
	text := "héllo wörld, 日本語のテキスト"

	for _, size := range []int{1, 2, 3, 5} {
		chunks := SplitTokens(byteTokenizer{}, text, size, 0)
		if strings.Join(chunks, "") != text {
			t.Errorf("size=%d: chunks do not rejoin: %q", size, chunks)
		}
		for i, c := range chunks {
			if c == "" || !utf8.ValidString(c) {
				t.Errorf("size=%d: chunk %d is not valid UTF-8: %q", size, i, c)
			}
		}
	}

	withOverlap := SplitTokens(byteTokenizer{}, text, 4, 1)
	for i, c := range withOverlap {
		if !utf8.ValidString(c) {
			t.Errorf("overlap: chunk %d is not valid UTF-8: %q", i, c)
		}
	}
}

// recordingLoader records the BPE paths it is asked for.
type recordingLoader struct {
	asked []string
}

func (l *recordingLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	l.asked = append(l.asked, file)
	return map[string]int{}, nil
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cl100k_base.tiktoken"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &recordingLoader{}
	l := &dirLoader{dir: dir, fallback: rec}

	const remote = "https://openaipublic.blob.core.windows.net/encodings/"
	if _, err := l.LoadTiktokenBpe(remote + "cl100k_base.tiktoken"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadTiktokenBpe(remote + "o200k_base.tiktoken"); err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Join(dir, "cl100k_base.tiktoken"), remote + "o200k_base.tiktoken"}
	if len(rec.asked) != 2 || rec.asked[0] != want[0] || rec.asked[1] != want[1] {
		t.Errorf("expected %v, got %v", want, rec.asked)
	}
}
