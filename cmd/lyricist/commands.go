package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/lyricist/pkg/corpus"
	"github.com/japaniel/lyricist/pkg/dictionary"
	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/rhyme"
)

func syllablesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "syllables <line>...",
		Short: "Count syllables per word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			out := make([]any, 0, len(args))
			for _, line := range args {
				out = append(out, a.corpus.Syllables(line))
			}
			return a.print(out, func(w io.Writer) {
				for _, line := range args {
					bd := a.corpus.Syllables(line)
					parts := make([]string, len(bd.Words))
					for i, ws := range bd.Words {
						parts[i] = fmt.Sprintf("%s(%d)", ws.Word, ws.Syllables)
					}
					fmt.Fprintf(w, "%d\t%s\n", bd.Total, strings.Join(parts, " "))
				}
			})
		},
	}
}

func classifyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <word> <word>",
		Short: "Classify how two words rhyme",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			tier := rhyme.NewClassifier(a.corpus.Resolver()).Classify(args[0], args[1])
			res := struct {
				A    string     `json:"a"`
				B    string     `json:"b"`
				Tier rhyme.Tier `json:"tier"`
			}{args[0], args[1], tier}
			return a.print(res, func(w io.Writer) { fmt.Fprintln(w, tier) })
		},
	}
}

func rhymesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rhymes <word>",
		Short: "List corpus words rhyming with a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			m := a.corpus.Rhymes(args[0])
			return a.print(m, func(w io.Writer) {
				fmt.Fprintf(w, "perfect: %s\n", strings.Join(m.Perfect, ", "))
				fmt.Fprintf(w, "near:    %s\n", strings.Join(m.Near, ", "))
				fmt.Fprintf(w, "slant:   %s\n", strings.Join(m.Slant, ", "))
			})
		},
	}
}

func explodeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explode <word>",
		Short: "Find corpus words sharing a start, an ending or a rhyme with a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			ex := a.corpus.Explode(args[0])
			return a.print(ex, func(w io.Writer) {
				fmt.Fprintf(w, "rhymes:      %s\n", strings.Join(ex.Rhymes, ", "))
				fmt.Fprintf(w, "combos:      %s\n", strings.Join(ex.Combos, ", "))
				fmt.Fprintf(w, "starts with: %s\n", strings.Join(ex.StartsWith, ", "))
				fmt.Fprintf(w, "ends with:   %s\n", strings.Join(ex.EndsWith, ", "))
			})
		},
	}
}

func groupsCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List rhyme groups by frequency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			groups := a.corpus.RhymeGroups(limit)
			return a.print(groups, func(w io.Writer) {
				for _, gr := range groups {
					fmt.Fprintf(w, "%-10s %4d  %s\n", gr.Key, gr.Frequency, strings.Join(gr.Endings, " "))
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum groups to list (0 for all)")
	return cmd
}

func vocabularyCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "vocabulary",
		Short: "List the most frequent corpus words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			words := a.corpus.Vocabulary(limit)
			return a.print(words, func(w io.Writer) { printCounts(w, words) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum words to list (0 for all)")
	return cmd
}

func themesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "Show how many corpus lines touch each theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			counts := a.corpus.ThemeCounts()
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			return a.print(counts, func(w io.Writer) {
				for _, name := range names {
					fmt.Fprintf(w, "%-12s %5d  %s\n", name, counts[name], a.corpus.Themes().Mood(name))
				}
			})
		},
	}
}

func segmentCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "segment [text]",
		Short: "Split lyrics into labelled sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := readInput(cmd, file, args)
			if err != nil {
				return err
			}
			sections := lyrics.Segment(lyrics.StripScrapeNoise(text))
			return a.print(sections, func(w io.Writer) {
				for i, s := range sections {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "[%s] x%d\n", s.Label(), s.Occurrences)
					for _, l := range s.Lines {
						fmt.Fprintln(w, l)
					}
				}
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read lyrics from a file")
	return cmd
}

func styleCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "style [text]",
		Short: "Report vocabulary, rhyme scheme and syllable density of lyrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := readInput(cmd, file, args)
			if err != nil {
				return err
			}
			rep := a.corpus.AnalyzeStyle(text)
			return a.print(rep, func(w io.Writer) {
				fmt.Fprintf(w, "lines:         %d\n", rep.Lines)
				fmt.Fprintf(w, "scheme:        %s\n", rep.RhymeScheme)
				fmt.Fprintf(w, "avg syllables: %.1f\n", rep.AverageSyllables)
				printCounts(w, rep.Vocabulary)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read lyrics from a file")
	return cmd
}

func studyCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "study <source>",
		Short: "Summarise the endings, vocabulary and rhymes of one ingested source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.corpus.Study(args[0], limit)
			return a.print(st, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %d lines\n", st.Source, st.Lines)
				for _, kc := range st.RhymeKeys {
					fmt.Fprintf(w, "%-10s %4d  %s\n", kc.Key, kc.Count, strings.Join(kc.Words, " "))
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum entries per list")
	return cmd
}

func searchCmd(g *globalFlags) *cobra.Command {
	var (
		q        corpus.LineQuery
		sections []string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find corpus lines by theme, rhyme, text, source, section or length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range sections {
				t, err := lyrics.ParseSectionType(s)
				if err != nil {
					return err
				}
				q.Sections = append(q.Sections, t)
			}

			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			lines := a.corpus.SearchLines(q)
			return a.print(lines, func(w io.Writer) {
				for _, l := range lines {
					fmt.Fprintf(w, "%-24s %-8s %2d  %s\n", l.Source, l.Section, l.Syllables, l.Text)
				}
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Theme, "theme", "", "Only lines tagged with this theme")
	f.StringVar(&q.RhymesWith, "rhymes-with", "", "Only lines whose last word rhymes with this word")
	f.StringVar(&q.Contains, "contains", "", "Only lines containing this word")
	f.StringVar(&q.Source, "source", "", "Only lines from this source")
	f.StringSliceVar(&sections, "section", nil, "Only lines from these section types")
	f.IntVar(&q.MinSyllables, "min-syllables", 0, "Minimum syllables per line")
	f.IntVar(&q.MaxSyllables, "max-syllables", 0, "Maximum syllables per line")
	f.IntVarP(&q.Limit, "limit", "n", corpus.DefaultSearchLimit, "Maximum lines to return")
	return cmd
}

func dictApplyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dict-apply",
		Short: "Re-key stored rhyme words with dictionary pronunciations",
		Long: `Words ingested before a dictionary was available carry heuristic
pronunciations. dict-apply looks each of them up in the configured
dictionary and updates the stored rhyme key and syllable count, then
recomputes the rhyme key and syllable count of every stored line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.conn == nil {
				return errors.New("dict-apply needs a database (--db or database.path)")
			}
			if a.dict == nil {
				return errors.New("dict-apply needs a dictionary (--dict or dictionary.path)")
			}
			n, err := dictionary.NewImporter(a.conn, a.dict, a.logger).ProcessUpdates()
			if err != nil {
				return err
			}
			return a.print(n, func(w io.Writer) { fmt.Fprintf(w, "updated %d words, %d lines\n", n.Words, n.Lines) })
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), lyrics.Version())
		},
	}
}

func printCounts(w io.Writer, counts []rhyme.WordCount) {
	for _, wc := range counts {
		fmt.Fprintf(w, "%5d  %s\n", wc.Count, wc.Word)
	}
}
