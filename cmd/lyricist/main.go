// Command lyricist analyses song lyrics: syllable counts, rhyme matching,
// section segmentation and a persistent corpus of ingested songs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dbPath     string
	dictPath   string
	logLevel   string
	jsonOut    bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "lyricist",
		Short: "Phonetic and rhyme analysis for song lyrics",
		Long: `lyricist counts syllables, classifies rhymes, splits lyrics into
sections and keeps a corpus of ingested songs to query for rhymes,
themes and writing style.

Configuration is read from lyricist.yaml (or $LYRICIST_CONFIG) and
LYRICIST_* environment variables; flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&g.dbPath, "db", "", "SQLite corpus database (empty keeps the corpus in memory)")
	pf.StringVar(&g.dictPath, "dict", "", "Pronunciation dictionary (CMU format or JSON)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&g.jsonOut, "json", false, "Print results as JSON")

	cmd.AddCommand(
		syllablesCmd(g),
		classifyCmd(g),
		rhymesCmd(g),
		explodeCmd(g),
		groupsCmd(g),
		vocabularyCmd(g),
		themesCmd(g),
		segmentCmd(g),
		styleCmd(g),
		studyCmd(g),
		searchCmd(g),
		ingestCmd(g),
		dictApplyCmd(g),
		versionCmd(),
	)
	return cmd
}
