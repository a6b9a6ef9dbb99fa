package wordgraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/typefrag/glyphseg/pkg/charset"
)

// WordStore keeps the raw loaded word list in a patricia trie, giving the
// loader cheap deduplication and the query surface cheap ranked prefix
// suggestions. Word lists are ordered most-frequent-first, so a word's load
// position doubles as its rank.
type WordStore struct {
	trie     *patricia.Trie
	nextRank int
}

// NewWordStore returns an empty store.
func NewWordStore() *WordStore {
	return &WordStore{trie: patricia.NewTrie(), nextRank: 1}
}

// Add inserts a word. Returns false when the word was already present.
func (ws *WordStore) Add(word string) bool {
	if ws.trie.Get(patricia.Prefix(word)) != nil {
		return false
	}
	ws.trie.Insert(patricia.Prefix(word), ws.nextRank)
	ws.nextRank++
	return true
}

// Contains reports whether the exact word was loaded.
func (ws *WordStore) Contains(word string) bool {
	return ws.trie.Get(patricia.Prefix(word)) != nil
}

// Len returns the number of stored words.
func (ws *WordStore) Len() int { return ws.nextRank - 1 }

// SuggestPrefix returns up to limit words starting with prefix, best rank
// first (rank 1 is the most frequent word of the source list).
func (ws *WordStore) SuggestPrefix(prefix string, limit int) []string {
	type ranked struct {
		word string
		rank int
	}
	var hits []ranked

	err := ws.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		rank, ok := item.(int)
		if !ok {
			log.Errorf("unexpected item type %T for word %s", item, p)
			return nil
		}
		hits = append(hits, ranked{word: string(p), rank: rank})
		return nil
	})
	if err != nil {
		log.Errorf("visiting word store subtree: %v", err)
		return nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	words := make([]string, len(hits))
	for i, h := range hits {
		words[i] = h.word
	}
	return words
}

// ReadWordList inserts every line of r into the trie, registering unseen
// runes in the charset as it goes. Blank lines and duplicates are skipped;
// nothing in the list is fatal. Returns the number of words inserted.
func ReadWordList(r io.Reader, cs *charset.Charset, t *Trie, store *WordStore) (int, error) {
	scanner := bufio.NewScanner(r)
	inserted := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if strings.ContainsAny(word, " \t") {
			log.Warnf("word list line %d: %q contains whitespace, skipping", lineNum, word)
			continue
		}
		if store != nil && !store.Add(word) {
			continue
		}
		ids := make([]charset.CharID, 0, len(word))
		for _, r := range word {
			ids = append(ids, cs.Register(string(r)))
		}
		t.Insert(ids)
		inserted++
	}
	if err := scanner.Err(); err != nil {
		return inserted, fmt.Errorf("reading word list: %w", err)
	}
	log.Debugf("word list loaded: %d words, %d trie edges", inserted, t.NumEdges())
	return inserted, nil
}

// LoadWordListFile is ReadWordList over a file path.
func LoadWordListFile(path string, cs *charset.Charset, t *Trie, store *WordStore) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening word list %s: %w", path, err)
	}
	defer f.Close()
	return ReadWordList(f, cs, t, store)
}
