// Command hypermedia packs, inspects, verifies and stores hypermedia
// documents.
//
// Usage:
//
//	hypermedia pack -in <path> [-out <file>] [-name <name>]
//	hypermedia inspect -in <file>
//	hypermedia verify -in <file>
//	hypermedia store put -in <file>
//	hypermedia store get -hash <digest> [-out <file>]
//	hypermedia store list
//	hypermedia store delete -hash <digest>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/internal/logger"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/builder"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/config"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/metrics"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/stream"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Cancel on Ctrl+C so long-running store operations stop cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "pack":
		err = runPack(ctx, os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "store":
		err = runStore(ctx, os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: hypermedia <pack|inspect|verify|store> [flags]")
	fmt.Fprintln(os.Stderr, "  pack     build a document from a file or directory")
	fmt.Fprintln(os.Stderr, "  inspect  print the entity tree of a document")
	fmt.Fprintln(os.Stderr, "  verify   validate a document without decoding it")
	fmt.Fprintln(os.Stderr, "  store    put/get/list/delete documents in the configured store")
}

// loadConfig loads the configuration and applies the ambient settings
// (log level, metrics registry).
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Logging.Level)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	return cfg, nil
}

// ============================================================================
// pack
// ============================================================================

func runPack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	in := fs.String("in", "", "File or directory to pack (required)")
	out := fs.String("out", "", "Output document file (default: stdout)")
	name := fs.String("name", "", "Container name (default: base name of the input)")
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("pack: -in is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	b := builder.New()
	b.BlockSize = cfg.Limits.BlockSize

	root, err := packPath(b, *in)
	if err != nil {
		return err
	}

	containerName := *name
	if containerName == "" {
		containerName = filepath.Base(*in)
	}

	c, err := b.Container(containerName, []hypermedia.Entity{root})
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := stream.WriteDocument(w, c); err != nil {
		return err
	}
	logger.Info("Packed %s: hash=%s topic=%s size=%d", *in, c.Hash(), c.Topic(), c.Size())
	return nil
}

// packPath builds an unhashed entity from a filesystem path: a file becomes
// a File, a directory becomes a Directory with its entries packed
// recursively.
func packPath(b *builder.Builder, path string) (hypermedia.Entity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(path)
		ext := strings.TrimPrefix(filepath.Ext(base), ".")
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if name == "" {
			// dotfiles keep their full name and have no extension
			name = base
			ext = ""
		}
		return b.FileFromBytes(name, ext, content)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var children []hypermedia.Entity
	for _, entry := range entries {
		child, err := packPath(b, filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return b.Directory(filepath.Base(path), children)
}

// ============================================================================
// inspect
// ============================================================================

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "", "Document file to inspect (required)")
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("inspect: -in is required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	codecMetrics := metrics.NewCodecMetrics()

	text, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	if cfg.Limits.MaxDocumentBytes > 0 && uint64(len(text)) > cfg.Limits.MaxDocumentBytes {
		return fmt.Errorf("document exceeds size limit of %d bytes", cfg.Limits.MaxDocumentBytes)
	}

	start := time.Now()
	c, err := format.DecodeAny(string(text), nil)
	codecMetrics.ObserveOperation("decode", len(text), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("decode %s: %w", *in, err)
	}

	fmt.Printf("version:  %s\n", c.Version())
	fmt.Printf("name:     %s\n", c.Name())
	fmt.Printf("created:  %s by %s\n", c.Created().Format(time.RFC3339), c.CreatedBy())
	fmt.Printf("size:     %d\n", c.Size())
	fmt.Printf("hash:     %s\n", c.Hash())
	fmt.Printf("topic:    %s\n", c.Topic())
	fmt.Println("entities:")
	printTree(c, 1)
	return nil
}

func printTree(e hypermedia.Entity, depth int) {
	indent := strings.Repeat("  ", depth)

	var children []hypermedia.Entity
	switch node := e.(type) {
	case *hypermedia.Container:
		children = node.Entities()
	case *hypermedia.Directory:
		children = node.Entities()
	case *hypermedia.File:
		for _, block := range node.Blocks() {
			children = append(children, block)
		}
	}

	for _, child := range children {
		name := child.Name()
		if name == "" {
			name = child.Path()
		}
		fmt.Printf("%s%s %s (%d bytes)\n", indent, child.Kind(), name, child.Size())
		printTree(child, depth+1)
	}
}

// ============================================================================
// verify
// ============================================================================

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "", "Document file to verify (required)")
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("verify: -in is required")
	}
	if _, err := loadConfig(*configPath); err != nil {
		return err
	}
	codecMetrics := metrics.NewCodecMetrics()

	text, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	start := time.Now()
	valid := format.ValidAnyContainer(string(text), nil)
	var verr error
	if !valid {
		verr = fmt.Errorf("invalid document")
	}
	codecMetrics.ObserveOperation("validate", len(text), time.Since(start), verr)

	if !valid {
		// decode once more for the diagnostic
		if _, err := format.DecodeAny(string(text), nil); err != nil {
			return fmt.Errorf("invalid document: %w", err)
		}
		return fmt.Errorf("invalid document")
	}

	fmt.Println("ok")
	return nil
}

// ============================================================================
// store
// ============================================================================

func runStore(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("store: expected put, get, list or delete")
	}

	sub := args[0]
	fs := flag.NewFlagSet("store "+sub, flag.ExitOnError)
	in := fs.String("in", "", "Document file (put)")
	hash := fs.String("hash", "", "Document digest (get, delete)")
	topic := fs.String("topic", "", "Document topic (get)")
	out := fs.String("out", "", "Output file (get; default: stdout)")
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args[1:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	st, err := config.NewStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Type, err)
	}
	defer st.Close()

	storeMetrics := metrics.NewStoreMetrics()

	switch sub {
	case "put":
		if *in == "" {
			return fmt.Errorf("store put: -in is required")
		}
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()

		c, err := stream.ReadDocumentLimit(f, cfg.Limits.MaxDocumentBytes)
		if err != nil {
			return fmt.Errorf("decode %s: %w", *in, err)
		}
		doc, err := store.NewDocument(c)
		if err != nil {
			return err
		}

		start := time.Now()
		err = st.Put(ctx, doc)
		storeMetrics.ObserveOperation(cfg.Store.Type, "put", time.Since(start), err)
		if err != nil {
			return err
		}
		fmt.Println(doc.Hash)
		return nil

	case "get":
		var doc *store.Document
		start := time.Now()
		switch {
		case *hash != "":
			doc, err = st.Get(ctx, *hash)
		case *topic != "":
			doc, err = st.GetByTopic(ctx, *topic)
		default:
			return fmt.Errorf("store get: -hash or -topic is required")
		}
		storeMetrics.ObserveOperation(cfg.Store.Type, "get", time.Since(start), err)
		if err != nil {
			return err
		}

		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		_, err = fmt.Fprint(w, doc.Text)
		return err

	case "list":
		start := time.Now()
		hashes, err := st.List(ctx)
		storeMetrics.ObserveOperation(cfg.Store.Type, "list", time.Since(start), err)
		if err != nil {
			return err
		}
		storeMetrics.SetDocumentCount(cfg.Store.Type, len(hashes))
		for _, h := range hashes {
			fmt.Println(h)
		}
		return nil

	case "delete":
		if *hash == "" {
			return fmt.Errorf("store delete: -hash is required")
		}
		start := time.Now()
		err = st.Delete(ctx, *hash)
		storeMetrics.ObserveOperation(cfg.Store.Type, "delete", time.Since(start), err)
		return err

	default:
		return fmt.Errorf("store: unknown subcommand %q", sub)
	}
}
