package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/gopyan/internal/scanner"
	"github.com/l3aro/gopyan/pkg/callgraph"
	"github.com/l3aro/gopyan/pkg/extractor"
	"github.com/l3aro/gopyan/pkg/graphcache"
	tt "github.com/l3aro/gopyan/pkg/types"
	"github.com/l3aro/gopyan/pkg/writer"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		root        string
		format      string
		output      string
		noCache     bool
		clearCache  bool
		yes         bool
		noDefines   bool
		noUses      bool
		colorByFile bool
		annotate    bool
		groupByFile bool
		prune       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Build the defines/uses call graph for a set of Python files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if root != "" {
				cfg.Root = root
			}
			if noCache {
				cfg.NoCache = true
			}
			if yes {
				cfg.Yes = true
			}
			cfg.Prune = cfg.Prune || prune
			cfg.ColorByFile = cfg.ColorByFile || colorByFile
			cfg.Annotate = cfg.Annotate || annotate
			cfg.GroupByFile = cfg.GroupByFile || groupByFile
			if noDefines {
				cfg.DrawDefines = false
			}
			if noUses {
				cfg.DrawUses = false
			}

			if len(args) == 0 {
				args = []string{"."}
			}

			files, inferredRoot, err := collectFiles(args, cfg.Root, cfg.Yes)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no Python files found under %v", args)
			}
			logger.Debug("resolved project root", "root", inferredRoot, "files", len(files))

			cacheDir := resolveCacheDir(inferredRoot, cfg.CacheDir)
			if clearCache {
				if store, err := graphcache.Open(cacheDir); err == nil {
					_ = store.Clear()
				}
			}

			graph, err := runAnalysis(files, inferredRoot, cacheDir, cfg.NoCache, cfg.Yes, logger)
			if err != nil {
				return err
			}

			if cfg.Prune {
				graph = callgraph.PruneOrphans(graph)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "json":
				return writer.WriteJSON(w, graph)
			case "dot":
				return writer.WriteDot(w, graph, writer.DotOptions{
					DrawDefines: cfg.DrawDefines,
					DrawUses:    cfg.DrawUses,
					ColorByFile: cfg.ColorByFile,
					Annotate:    cfg.Annotate,
					GroupByFile: cfg.GroupByFile,
				})
			default:
				return fmt.Errorf("unknown format %q (want json or dot)", format)
			}
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "explicit project root (overrides inference)")
	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the graph cache")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "remove the graph cache before running")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip interactive prompts")
	cmd.Flags().BoolVar(&noDefines, "no-defines", false, "omit defines edges from the output")
	cmd.Flags().BoolVar(&noUses, "no-uses", false, "omit uses edges from the output")
	cmd.Flags().BoolVar(&colorByFile, "color-by-file", false, "color nodes by source file")
	cmd.Flags().BoolVar(&annotate, "annotate", false, "attach filename:lineno to each node")
	cmd.Flags().BoolVar(&groupByFile, "group-by-file", false, "cluster dot output by source file")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop nodes with no incident edges")

	return cmd
}

// resolveCacheDir anchors a configured cache directory under root unless
// it is already absolute.
func resolveCacheDir(root, configured string) string {
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(root, configured)
}

// runAnalysis checks the graph cache before falling back to a full
// Analyze run, and writes the result back to the cache on a miss. If a
// cache entry already exists on disk under the computed key (a decode
// failure on the load above, not a plain miss) it confirms before
// overwriting it, unless --yes was given or stdin isn't a TTY.
func runAnalysis(files []string, root, cacheDir string, noCache, yes bool, logger interface {
	Debug(string, ...interface{})
}) (*tt.Graph, error) {
	if noCache {
		return callgraph.Analyze(files, callgraph.Options{Root: root})
	}

	store, err := graphcache.Open(cacheDir)
	if err != nil {
		return callgraph.Analyze(files, callgraph.Options{Root: root})
	}
	key, keyErr := graphcache.Key(files)
	if keyErr == nil {
		if g, err := store.Load(key); err == nil {
			logger.Debug("graph cache hit", "key", key)
			return g, nil
		}
	}

	graph, err := callgraph.Analyze(files, callgraph.Options{Root: root})
	if err != nil {
		return nil, err
	}
	if keyErr == nil {
		if store.Exists(key) && !yes && isInteractive() {
			if !confirmOverwriteCache(key) {
				return graph, nil
			}
		}
		if err := store.Save(key, graph); err != nil {
			logger.Debug("graph cache write failed", "error", err)
		}
	}
	return graph, nil
}

// confirmOverwriteCache prompts before replacing an existing graph-cache
// entry. Defaults to proceeding if the prompt itself fails (e.g. no TTY
// after all), since isInteractive already gated the caller.
func confirmOverwriteCache(key string) bool {
	confirmed := true
	prompt := huh.NewConfirm().
		Title("Overwrite existing graph cache entry?").
		Description(key).
		Affirmative("Yes, overwrite").
		Negative("No, skip caching").
		Value(&confirmed)
	if err := prompt.Run(); err != nil {
		return true
	}
	return confirmed
}

// collectFiles expands paths (files or directories) into the Python
// source files to analyze, and infers the project root: from each input
// (a directory itself, or a file's parent directory) walk upward past any
// directory that declares itself a package (has __init__.py), stopping at
// the first non-package directory. Each input yields its own candidate
// root; no common ancestor of the inputs is computed. When the inputs
// resolve to more than one such root and the caller hasn't opted out of
// prompts, ask which one to use; otherwise the lexically first is taken.
func collectFiles(paths []string, explicitRoot string, yes bool) ([]string, string, error) {
	var files []string
	candidates := map[string]bool{}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, "", fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, "", fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			infos, err := scanner.Scan(abs)
			if err != nil {
				return nil, "", fmt.Errorf("scanning %s: %w", p, err)
			}
			for _, fi := range infos {
				if extractor.IsPythonFile(fi.FullPath) {
					files = append(files, fi.FullPath)
				}
			}
			candidates[walkUpPastPackage(abs)] = true
		} else {
			if extractor.IsPythonFile(abs) {
				files = append(files, abs)
			}
			candidates[walkUpPastPackage(filepath.Dir(abs))] = true
		}
	}

	if explicitRoot != "" {
		abs, err := filepath.Abs(explicitRoot)
		if err != nil {
			return nil, "", err
		}
		return files, abs, nil
	}

	var sorted []string
	for c := range candidates {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)

	if len(sorted) <= 1 {
		if len(sorted) == 0 {
			cwd, _ := os.Getwd()
			return files, cwd, nil
		}
		return files, sorted[0], nil
	}

	if yes || !isInteractive() {
		return files, sorted[0], nil
	}

	var chosen string
	options := make([]huh.Option[string], len(sorted))
	for i, c := range sorted {
		options[i] = huh.NewOption(c, c)
	}
	prompt := huh.NewSelect[string]().
		Title("Multiple plausible project roots were found").
		Options(options...).
		Value(&chosen)
	if err := prompt.Run(); err != nil {
		return files, sorted[0], nil
	}
	return files, chosen, nil
}

func walkUpPastPackage(dir string) string {
	cur := dir
	for {
		if _, err := os.Stat(filepath.Join(cur, "__init__.py")); err != nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur
		}
		cur = parent
	}
}

func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
