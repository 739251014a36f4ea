// Command vundo is a small CLI demonstrator for the undo engine: it
// loads a text file and its sidecar undo file (if any), applies one
// navigation command, and writes both back out.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/vundo/internal/undo"
	"github.com/dshills/vundo/internal/undo/memstore"
)

var (
	version = "dev"
)

type config struct {
	file      string
	undoFile  string
	fsync     bool
	undolevel int64
	command   string
	args      []string
}

func parseFlags(argv []string) (*config, error) {
	fs := flag.NewFlagSet("vundo", flag.ContinueOnError)
	file := fs.String("file", "", "buffer text file")
	undoFile := fs.String("undofile", "", "undo file path (default: <file>.un)")
	fsync := fs.Bool("fsync", false, "fsync the undo file after writing")
	undolevels := fs.Int64("undolevels", 1000, "undo history depth")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	if *showVersion {
		fmt.Println("vundo", version)
		os.Exit(0)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return nil, errors.New("missing command (undo, redo, undo_and_forget, undolist, earlier, later, undojoin, tree, write, read)")
	}
	if *file == "" {
		return nil, errors.New("-file is required")
	}
	uf := *undoFile
	if uf == "" {
		uf = undo.UndoFilePath(*file)
	}
	return &config{
		file:      *file,
		undoFile:  uf,
		fsync:     *fsync,
		undolevel: *undolevels,
		command:   rest[0],
		args:      rest[1:],
	}, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cfg, err := parseFlags(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vundo: %v\n", err)
		return 2
	}
	if err := execute(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "vundo: %v\n", err)
		return 1
	}
	return 0
}

func execute(cfg *config) error {
	lines, err := readLines(cfg.file)
	if err != nil {
		return fmt.Errorf("read buffer: %w", err)
	}

	store := memstore.NewLineStore(lines...)
	cursor := memstore.NewCursor(undo.Position{Lnum: 1})
	tree := undo.NewUndoTree(store, cursor, undo.WithUndoLevels(cfg.undolevel))
	osfs := undo.OSFileSystem{}
	pers := undo.NewPersistence(osfs, undo.SHA256Hasher{}, cfg.fsync)

	if _, err := os.Stat(cfg.undoFile); err == nil {
		if err := pers.Read(cfg.undoFile, tree, store.Snapshot()); err != nil {
			if errors.Is(err, undo.ErrBufferContentsChanged) {
				fmt.Fprintf(os.Stderr, "vundo: warning: %v (keeping empty history)\n", err)
			} else {
				return err
			}
		}
	}

	replayer := undo.NewReplayer(store, cursor, nil)
	nav := undo.NewNavigator(tree, replayer)

	if err := runCommand(cfg, tree, nav); err != nil {
		return err
	}

	if err := writeLines(cfg.file, store.Snapshot()); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	if err := pers.Write(cfg.undoFile, tree, store.Snapshot()); err != nil {
		return fmt.Errorf("write undo file: %w", err)
	}
	return nil
}

func runCommand(cfg *config, tree *undo.UndoTree, nav *undo.Navigator) error {
	switch cfg.command {
	case "undo":
		n := argInt(cfg.args, 1)
		_, err := nav.Undo(n, undo.SaveContext{})
		return err
	case "redo":
		n := argInt(cfg.args, 1)
		_, err := nav.Redo(n, undo.SaveContext{})
		return err
	case "undo_and_forget":
		return nav.UndoAndForget()
	case "undojoin":
		return tree.Undojoin()
	case "write":
		tree.MarkWritten()
		return nil
	case "earlier", "later":
		if len(cfg.args) == 0 {
			return errors.New(cfg.command + " requires an argument, e.g. 5s, 3f, 10 (seq)")
		}
		step, mode, err := parseTimeSpec(cfg.args[0])
		if err != nil {
			return err
		}
		if cfg.command == "earlier" {
			step = -step
		}
		_, err = nav.TimeStep(step, mode, false, undo.SaveContext{})
		return err
	case "undolist":
		printTree(nav.Tree())
		return nil
	case "tree":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(nav.Tree())
	case "read":
		return nil // persistence read already happened at startup if the undo file exists
	default:
		return fmt.Errorf("unknown command %q", cfg.command)
	}
}

func argInt(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return def
	}
	return n
}

// parseTimeSpec parses a Vim-style earlier/later argument: a bare
// integer means Seq, a trailing 's'/'m'/'h'/'d' means Seconds (scaled),
// and a trailing 'f' means FileSaves.
func parseTimeSpec(s string) (int64, undo.Mode, error) {
	if s == "" {
		return 0, undo.ModeSeq, errors.New("empty time spec")
	}
	suffix := s[len(s)-1]
	switch suffix {
	case 'f':
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		return n, undo.ModeFileSaves, err
	case 's', 'm', 'h', 'd':
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return 0, undo.ModeSeconds, err
		}
		mult := map[byte]int64{'s': 1, 'm': 60, 'h': 3600, 'd': 86400}[suffix]
		return n * mult, undo.ModeSeconds, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, undo.ModeSeq, err
	}
}

func printTree(v undo.TreeView) {
	fmt.Printf("seq_last=%d seq_cur=%d save_last=%d synced=%v\n", v.SeqLast, v.SeqCur, v.SaveLast, v.Synced)
	var printEntry func(e undo.SeqEntry, depth int)
	printEntry = func(e undo.SeqEntry, depth int) {
		fmt.Printf("%sseq=%d time=%d save=%d\n", strings.Repeat("  ", depth), e.Seq, e.Time, e.SaveNr)
		for _, a := range e.Alt {
			printEntry(a, depth+1)
		}
	}
	for _, e := range v.Entries {
		printEntry(e, 0)
	}
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	text := string(data)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
