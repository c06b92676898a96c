package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
// Every returned slice has length maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

const maxWordRunes = 100

// Vocab maps WordPiece tokens to IDs (line number in vocab.txt).
type Vocab map[string]int64

// LoadVocab reads a BERT vocab.txt, one token per line.
func LoadVocab(path string) (Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab: %w", err)
	}
	defer f.Close()
	vocab := make(Vocab)
	sc := bufio.NewScanner(f)
	var id int64
	for sc.Scan() {
		tok := strings.TrimRight(sc.Text(), "\r")
		if tok != "" {
			vocab[tok] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocab %s is empty", path)
	}
	return vocab, nil
}

func (v Vocab) idOr(tok string, fallback int64) int64 {
	if id, ok := v[tok]; ok {
		return id
	}
	return fallback
}

// WordPieceTokenizer is the uncased BERT tokenizer used by sentence-transformer
// models: basic whitespace/punctuation splitting followed by greedy
// longest-match WordPiece. Input longer than maxTokens-2 pieces is truncated.
type WordPieceTokenizer struct {
	vocab     Vocab
	lowercase bool
	cls       int64
	sep       int64
	unk       int64
	pad       int64
}

// NewWordPieceTokenizer creates a tokenizer over vocab.
func NewWordPieceTokenizer(vocab Vocab, lowercase bool) *WordPieceTokenizer {
	return &WordPieceTokenizer{
		vocab:     vocab,
		lowercase: lowercase,
		cls:       vocab.idOr("[CLS]", 101),
		sep:       vocab.idOr("[SEP]", 102),
		unk:       vocab.idOr("[UNK]", 100),
		pad:       vocab.idOr("[PAD]", 0),
	}
}

// Tokenize encodes text as [CLS] pieces... [SEP] followed by padding.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens < 2 {
		maxTokens = 2
	}
	pieces := t.Encode(text, maxTokens-2)

	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	for i := range inputIDs {
		inputIDs[i] = t.pad
	}
	inputIDs[0] = t.cls
	attentionMask[0] = 1
	pos := 1
	for _, id := range pieces {
		inputIDs[pos] = id
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = t.sep
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

// Encode returns up to limit WordPiece IDs for text, without special tokens.
func (t *WordPieceTokenizer) Encode(text string, limit int) []int64 {
	var ids []int64
	eachBasicToken(text, t.lowercase, func(word string) bool {
		ids = append(ids, t.wordPiece(word)...)
		return len(ids) < limit
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (t *WordPieceTokenizer) wordPiece(word string) []int64 {
	rs := []rune(word)
	if len(rs) > maxWordRunes {
		return []int64{t.unk}
	}
	var out []int64
	for start := 0; start < len(rs); {
		end := len(rs)
		found := int64(-1)
		for end > start {
			sub := string(rs[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{t.unk}
		}
		out = append(out, found)
		start = end
	}
	return out
}

// eachBasicToken cleans text, splits it on whitespace and punctuation, and
// calls fn for each token until fn returns false. With lowercase set, tokens
// are lowercased and stripped of accents.
func eachBasicToken(text string, lowercase bool, fn func(string) bool) {
	var cur strings.Builder
	emit := func(w string) bool {
		if lowercase {
			w = normalizeWord(w)
		}
		return fn(w)
	}
	flush := func() bool {
		if cur.Len() == 0 {
			return true
		}
		w := cur.String()
		cur.Reset()
		return emit(w)
	}
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || (unicode.IsControl(r) && !unicode.IsSpace(r)):
			continue
		case unicode.IsSpace(r):
			if !flush() {
				return
			}
		case isPunct(r) || isCJK(r):
			if !flush() || !emit(string(r)) {
				return
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
}

// basicTokens returns every basic token of text.
func basicTokens(text string, lowercase bool) []string {
	var tokens []string
	eachBasicToken(text, lowercase, func(w string) bool {
		tokens = append(tokens, w)
		return true
	})
	return tokens
}

func normalizeWord(w string) string {
	w = strings.ToLower(w)
	for i := 0; i < len(w); i++ {
		if w[i] >= utf8.RuneSelf {
			t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
			if s, _, err := transform.String(t, w); err == nil {
				return s
			}
			return w
		}
	}
	return w
}

func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
