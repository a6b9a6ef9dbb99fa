// dictc is an offline companion tool for glyphseg dictionaries: it builds
// and inspects compacted word graphs and dumps parsed ambiguity tables.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/typefrag/glyphseg/pkg/ambig"
	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

var (
	wordsPath string
	maxEdges  int
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "dictc",
	Short: "Build and inspect glyphseg dictionaries",
	Long: `dictc compiles plain word lists into compacted word graphs and
inspects the result: graph statistics, per-word membership checks, and
ambiguity rule dumps.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			log.SetLevel(log.DebugLevel)
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Load a word list, compact it, and print graph statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, trie, store, err := loadWords()
		if err != nil {
			return err
		}
		trieEdges := trie.NumEdges()
		trieNodes := trie.NumNodes()
		dawg := trie.Compact()

		fmt.Printf("words:       %d\n", store.Len())
		fmt.Printf("charset:     %d ids\n", cs.Size())
		fmt.Printf("trie:        %d nodes, %d edge records\n", trieNodes, trieEdges)
		fmt.Printf("compacted:   %d nodes, %d edges\n", dawg.NumNodes(), dawg.NumEdges())
		if trieEdges > 0 {
			fmt.Printf("compression: %.1f%%\n", 100*(1-float64(dawg.NumEdges())/float64(trieEdges)))
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <word>...",
	Short: "Check words against the compacted graph",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, trie, _, err := loadWords()
		if err != nil {
			return err
		}
		dawg := trie.Compact()

		for _, word := range args {
			ids, ok := cs.IDsOfString(word)
			if !ok {
				fmt.Printf("%-20s unknown characters\n", word)
				continue
			}
			valid := dawg.Accepts(ids)
			_, isPrefix := dawg.IsPrefix(ids)
			fmt.Printf("%-20s word=%-5v prefix=%v\n", word, valid, isPrefix)
		}
		return nil
	},
}

var ambigsCmd = &cobra.Command{
	Use:   "ambigs <file>",
	Short: "Parse an ambiguity rules file and dump the table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, _, _, err := loadWords()
		if err != nil {
			return err
		}
		definite, _ := cmd.Flags().GetBool("definite")
		table, err := ambig.LoadFile(args[0], cs, ambig.LoadOptions{
			UseDefiniteAmbigsForClassifier: definite,
		})
		if err != nil {
			return err
		}

		count := 0
		for id := charset.CharID(0); int(id) < cs.Size(); id++ {
			for _, spec := range table.Lookup(id) {
				fmt.Printf("%-12q -> %-8q %s\n",
					cs.StringOfIDs(spec.WrongNgram),
					cs.StringOf(spec.CorrectNgramID),
					spec.Type)
				count++
			}
		}
		fmt.Printf("%d rules\n", count)
		return nil
	},
}

// loadWords builds the charset, trie and word store from the -w word list.
func loadWords() (*charset.Charset, *wordgraph.Trie, *wordgraph.WordStore, error) {
	cs := charset.New()
	trie := wordgraph.NewTrie(maxEdges)
	store := wordgraph.NewWordStore()
	if wordsPath == "" {
		return cs, trie, store, fmt.Errorf("a word list is required, use --words")
	}
	count, err := wordgraph.LoadWordListFile(wordsPath, cs, trie, store)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debugf("loaded %d words from %s", count, wordsPath)
	return cs, trie, store, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&wordsPath, "words", "w", "", "Word list file, one word per line")
	rootCmd.PersistentFlags().IntVar(&maxEdges, "max-edges", 10_000_000, "Edge budget for the mutable trie")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging")
	ambigsCmd.Flags().Bool("definite", false, "Enable the 1-to-1 definite ambiguity side table")
	rootCmd.AddCommand(buildCmd, checkCmd, ambigsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
