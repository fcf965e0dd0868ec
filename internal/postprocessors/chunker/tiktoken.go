package chunker

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer counts tokens with the BPE encoding of an OpenAI model.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// Ensure TiktokenTokenizer implements the interface.
var _ Tokenizer = (*TiktokenTokenizer)(nil)

// tiktoken keeps its BPE loader in a package variable.
var loaderMu sync.Mutex

// NewTiktokenTokenizer loads the encoding used by model (e.g. "gpt-3.5-turbo").
// The BPE file is read from dir when present there (e.g.
// dir/cl100k_base.tiktoken). Otherwise tiktoken downloads it and caches it
// under TIKTOKEN_CACHE_DIR.
func NewTiktokenTokenizer(model, dir string) (*TiktokenTokenizer, error) {
	loaderMu.Lock()
	defer loaderMu.Unlock()

	tiktoken.SetBpeLoader(&dirLoader{dir: dir, fallback: tiktoken.NewDefaultBpeLoader()})
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding for %s (copy the .tiktoken file into %q to work offline): %w",
			model, dir, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Encode returns the token ids of text.
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode returns the text of tokens. A window of tokens can end inside a
// multi-byte rune; SplitTokens cuts on rune boundaries instead of using this
// directly.
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// dirLoader serves BPE files from a local directory, keyed by the base name
// of the URL tiktoken asks for.
type dirLoader struct {
	dir      string
	fallback tiktoken.BpeLoader
}

func (l *dirLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	if l.dir != "" {
		local := filepath.Join(l.dir, path.Base(file))
		if _, err := os.Stat(local); err == nil {
			return l.fallback.LoadTiktokenBpe(local)
		}
	}
	return l.fallback.LoadTiktokenBpe(file)
}
