// Copyright 2017, Kerby Shedden and the Muscato contributors.
//
// align is the entry point for the bit-parallel approximate read
// matcher. It loads a reference FASTA file and one or more read
// files, groups reads by length (the matcher kernel requires a single
// length per batch), and runs each group's batch concurrently,
// following muscato_confirm's one-goroutine-per-window shape.
//
// A typical invocation using flags is:
//
// align --MaxErrors=2 --IndelCost=1 --ReferenceFileName=ref.fna reads.fna
//
// To use a JSON config file instead:
//
// align --ConfigFileName=config.json
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/ralic/gnu-myrialign/batchpool"
	"github.com/ralic/gnu-myrialign/config"
	"github.com/ralic/gnu-myrialign/matcher"
	"github.com/ralic/gnu-myrialign/nucleotide"
	"github.com/ralic/gnu-myrialign/rescache"
	"github.com/ralic/gnu-myrialign/seqio"
	"github.com/scipipe/scipipe"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

func setupLog(logDir string) *os.File {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		panic(err)
	}
	fid, err := os.Create(path.Join(logDir, "align.log"))
	if err != nil {
		panic(err)
	}
	logger = log.New(fid, "", log.Ltime)
	return fid
}

func handleArgs() *config.Config {
	ConfigFileName := flag.String("ConfigFileName", "", "JSON file containing configuration parameters")
	MaxErrors := flag.Int("MaxErrors", -1, "Maximum number of errors (K)")
	IndelCost := flag.Int("IndelCost", 0, "Indel cost, in matched-position units (C)")
	ReferenceFileName := flag.String("ReferenceFileName", "", "Reference FASTA file")
	ResultsFileName := flag.String("ResultsFileName", "", "File name for results")
	LogDir := flag.String("LogDir", "", "Directory for log files")
	CacheDir := flag.String("CacheDir", "", "Directory for the result cache")
	Concurrency := flag.Int("Concurrency", 0, "Number of length-groups to align concurrently")
	CPUProfile := flag.Bool("CPUProfile", false, "Capture a CPU profile alongside the logs")
	Pipeline := flag.Bool("Pipeline", false, "Decompress .sz read inputs through an external sztool pipeline before loading")

	flag.Parse()

	var c *config.Config
	if *ConfigFileName != "" {
		var err error
		c, err = config.ReadConfig(*ConfigFileName)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		c = config.Default()
	}

	if *MaxErrors >= 0 {
		c.MaxErrors = *MaxErrors
	}
	if *IndelCost != 0 {
		c.IndelCost = *IndelCost
	}
	if *ReferenceFileName != "" {
		c.ReferenceFileName = *ReferenceFileName
	}
	if *ResultsFileName != "" {
		c.ResultsFileName = *ResultsFileName
	}
	if *LogDir != "" {
		c.LogDir = *LogDir
	}
	if *CacheDir != "" {
		c.CacheDir = *CacheDir
	}
	if *Concurrency != 0 {
		c.Concurrency = *Concurrency
	}
	if *CPUProfile {
		c.CPUProfile = true
	}
	if *Pipeline {
		c.Pipeline = true
	}

	if args := flag.Args(); len(args) > 0 {
		c.ReadFileNames = args
	}

	if c.ReferenceFileName == "" {
		os.Stderr.WriteString("\nReferenceFileName not provided, run 'align --help' for more information.\n\n")
		os.Exit(1)
	}
	if len(c.ReadFileNames) == 0 {
		os.Stderr.WriteString("\nat least one read file must be given as a positional argument.\n\n")
		os.Exit(1)
	}
	if c.ResultsFileName == "" {
		c.ResultsFileName = "results.txt"
		os.Stderr.WriteString("ResultsFileName not provided, defaulting to 'results.txt'\n")
	}

	return c
}

func loadReference(name string) (seqio.Reference, error) {
	fid, err := os.Open(name)
	if err != nil {
		return seqio.Reference{}, err
	}
	defer fid.Close()

	refs, err := seqio.ReadReferences(name, fid)
	if err != nil {
		return seqio.Reference{}, err
	}
	if len(refs) == 0 {
		return seqio.Reference{}, fmt.Errorf("align: %s contains no reference sequences", name)
	}
	return refs[0], nil
}

// decompressPipeline runs every ".sz" name in names through an
// external sztool process, orchestrated as a scipipe.Workflow, the
// same shell-out-via-scipipe idiom muscato/muscato.go's prepReads
// and sortWindows functions use. Names without the ".sz" suffix pass
// through untouched; seqio can already read ".sz" files directly, so
// this path exists only to exercise the teacher's heavier external-
// process pipeline when a caller explicitly asks for it.
func decompressPipeline(dir string, names []string) ([]string, error) {
	out := make([]string, len(names))
	wf := scipipe.NewWorkflow("align_decompress", 4)
	snk := scipipe.NewSink("snk")

	var procs []*scipipe.Process
	var haveAny bool
	for i, name := range names {
		if !strings.HasSuffix(name, ".sz") {
			out[i] = name
			continue
		}
		haveAny = true
		dest := filepath.Join(dir, fmt.Sprintf("decompressed_%d.fna", i))
		out[i] = dest
		proc := wf.NewProc(fmt.Sprintf("dz%d", i), fmt.Sprintf("sztool -d %s > {os:out}", name))
		proc.SetPathStatic("out", dest)
		snk.Connect(proc.Out("out"))
		procs = append(procs, proc)
	}
	if !haveAny {
		return out, nil
	}

	wf.AddProcs(procs...)
	wf.SetDriver(snk)
	wf.Run()

	return out, nil
}

func loadReads(names []string) ([]seqio.Read, error) {
	var all []seqio.Read
	for _, name := range names {
		fid, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		reads, err := seqio.ReadReads(name, fid)
		fid.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, reads...)
	}
	return all, nil
}

func main() {
	cfg = handleArgs()

	uid := uuid.New().String()
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = "."
	}
	logDir = filepath.Join(logDir, uid)
	logFile := setupLog(logDir)
	defer logFile.Close()

	if cfg.CPUProfile {
		p := profile.Start(profile.ProfilePath(logDir))
		defer p.Stop()
	}

	logger.Printf("Starting align, MaxErrors=%d IndelCost=%d", cfg.MaxErrors, cfg.IndelCost)

	ref, err := loadReference(cfg.ReferenceFileName)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Printf("Reference: %s (%d bases)", ref.Name, len(ref.Seq))

	readFileNames := cfg.ReadFileNames
	if cfg.Pipeline {
		logger.Print("Pipeline mode: decompressing .sz read inputs via scipipe")
		readFileNames, err = decompressPipeline(logDir, cfg.ReadFileNames)
		if err != nil {
			logger.Fatal(err)
		}
	}

	reads, err := loadReads(readFileNames)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Printf("Loaded %d reads", len(reads))

	groups := seqio.GroupByLength(reads)

	cache, err := rescache.New(cfg.CacheDir)
	if err != nil {
		logger.Fatal(err)
	}

	sigs := make([]rescache.Signature, 0, len(cfg.ReadFileNames)+1)
	refSig, err := rescache.FileSignature(cfg.ReferenceFileName)
	if err != nil {
		logger.Fatal(err)
	}
	sigs = append(sigs, refSig)
	for _, rf := range cfg.ReadFileNames {
		s, err := rescache.FileSignature(rf)
		if err != nil {
			logger.Fatal(err)
		}
		sigs = append(sigs, s)
	}

	outFile, err := os.Create(cfg.ResultsFileName)
	if err != nil {
		logger.Fatal(err)
	}
	defer outFile.Close()

	fmt.Fprintf(outFile, "#Max errors: %d\n", cfg.MaxErrors)
	fmt.Fprintf(outFile, "#Indel cost: %d\n", cfg.IndelCost)
	fmt.Fprintf(outFile, "#Reference: %s\n", ref.Name)

	var mu sync.Mutex
	out := bufio.NewWriter(outFile)
	defer out.Flush()

	lengths := make([]int, 0, len(groups))
	for l := range groups {
		lengths = append(lengths, l)
	}

	// Each length group is cached independently, keyed on the input
	// file signatures plus the group's own read length and edit-model
	// parameters, following rescache's file-signature-keyed pattern.
	errs := batchpool.Run(lengths, cfg.Concurrency, func(l int) error {
		grp := groups[l]
		tag := fmt.Sprintf("align-L%d-K%d-C%d", l, cfg.MaxErrors, cfg.IndelCost)

		dir, err := cache.Get(tag, sigs, func(dir string) error {
			names := make([]string, len(grp))
			groupReads := make([][]nucleotide.Code, len(grp))
			for i, r := range grp {
				names[i] = r.Name
				groupReads[i] = r.Seq
			}
			b := matcher.Batch{
				Reference: ref.Seq,
				Reads:     groupReads,
				ReadNames: names,
				MaxErrors: cfg.MaxErrors,
				IndelCost: cfg.IndelCost,
			}

			hitsFile, err := os.Create(path.Join(dir, "hits.txt"))
			if err != nil {
				return err
			}
			defer hitsFile.Close()
			w := bufio.NewWriter(hitsFile)

			logger.Printf("Aligning length-%d group (%d reads)", l, len(grp))
			sink := matcher.HitSinkFunc(func(line string) error {
				_, err := fmt.Fprintln(w, line)
				return err
			})
			if err := matcher.Run(b, sink, nil); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil {
			return err
		}

		hits, err := os.Open(path.Join(dir, "hits.txt"))
		if err != nil {
			return err
		}
		defer hits.Close()

		mu.Lock()
		defer mu.Unlock()
		_, err = io.Copy(out, hits)
		return err
	})

	for i, err := range errs {
		if err != nil {
			logger.Printf("length group %d: %v", lengths[i], err)
		}
	}

	logger.Print("done")
}
