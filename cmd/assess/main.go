// Copyright 2017, Kerby Shedden and the Muscato contributors.
//
// assess is a quick-turnaround quality check: it draws a random
// sample of reads from one or more read files, aligns just the
// sample against the reference, and reports how often the best hit
// for a read is ambiguous (no clear single best alignment) or
// missing entirely, along with per-position error and indel
// histograms. It is the Go counterpart of myrialign/assess.py.
//
// assess <sample size> <max errors> <reference file> <reads> [<reads> ...]
package main

import (
	"bufio"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ralic/gnu-myrialign/assess"
	"github.com/ralic/gnu-myrialign/matcher"
	"github.com/ralic/gnu-myrialign/nucleotide"
	"github.com/ralic/gnu-myrialign/rescache"
	"github.com/ralic/gnu-myrialign/seqio"
)

func usage() {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "assess <sample size> <max errors> <reference file> <reads> [<reads> ...]")
	fmt.Fprintln(os.Stderr)
}

func main() {
	if len(os.Args) < 5 {
		usage()
		os.Exit(1)
	}

	sampleSize, err := strconv.Atoi(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	maxErrors, err := strconv.Atoi(os.Args[2])
	if err != nil {
		log.Fatal(err)
	}
	referenceFile := os.Args[3]
	readFiles := os.Args[4:]

	cache, err := rescache.New(".assess-cache")
	if err != nil {
		log.Fatal(err)
	}

	sample, err := runSample(cache, readFiles, sampleSize)
	if err != nil {
		log.Fatal(err)
	}

	hits, err := runAlign(cache, referenceFile, sample, maxErrors)
	if err != nil {
		log.Fatal(err)
	}

	maxLength := 0
	for _, r := range sample {
		if len(r.Seq) > maxLength {
			maxLength = len(r.Seq)
		}
	}

	summary := assess.Summarize(sample, hits, maxErrors, maxLength)
	printReport(summary, len(sample), maxErrors, maxLength)
}

// runSample reservoir-samples reads across readFiles, caching the
// result by the files' signatures the way assess.py's sample callback
// is wrapped in cache.get.
func runSample(cache *rescache.Cache, readFiles []string, n int) ([]seqio.Read, error) {
	sigs := make([]rescache.Signature, len(readFiles))
	for i, f := range readFiles {
		s, err := rescache.FileSignature(f)
		if err != nil {
			return nil, err
		}
		sigs[i] = s
	}

	tag := fmt.Sprintf("sample-%d", n)
	dir, err := cache.Get(tag, sigs, func(dir string) error {
		var all []seqio.Read
		for _, f := range readFiles {
			fid, err := os.Open(f)
			if err != nil {
				return err
			}
			reads, err := seqio.ReadReads(f, fid)
			fid.Close()
			if err != nil {
				return err
			}
			all = append(all, reads...)
		}

		rng := rand.New(rand.NewSource(1))
		sampled := assess.Sample(rng, all, n)

		out, err := os.Create(path.Join(dir, "sample.fna"))
		if err != nil {
			return err
		}
		defer out.Close()
		w := bufio.NewWriter(out)
		for _, r := range sampled {
			fmt.Fprintf(w, ">%s\n%s\n", r.Name, readString(r))
		}
		return w.Flush()
	})
	if err != nil {
		return nil, err
	}

	fid, err := os.Open(path.Join(dir, "sample.fna"))
	if err != nil {
		return nil, err
	}
	defer fid.Close()
	return seqio.ReadReads(path.Join(dir, "sample.fna"), fid)
}

func readString(r seqio.Read) string {
	var sb strings.Builder
	for _, c := range r.Seq {
		sb.WriteByte(c.Byte())
	}
	return sb.String()
}

// runAlign aligns the sample against the reference in-process, one
// length-homogeneous group at a time, caching each group's formatted
// hit lines by reference and group signature, mirroring assess.py's
// invoke_align.
func runAlign(cache *rescache.Cache, referenceFile string, sample []seqio.Read, maxErrors int) (map[string][]assess.HitRecord, error) {
	refFid, err := os.Open(referenceFile)
	if err != nil {
		return nil, err
	}
	refs, err := seqio.ReadReferences(referenceFile, refFid)
	refFid.Close()
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("assess: %s contains no reference sequences", referenceFile)
	}
	reference := refs[0]

	refSig, err := rescache.FileSignature(referenceFile)
	if err != nil {
		return nil, err
	}

	groups := seqio.GroupByLength(sample)
	hits := make(map[string][]assess.HitRecord)

	for length, group := range groups {
		names := make([]string, len(group))
		reads := make([][]nucleotide.Code, len(group))
		for i, r := range group {
			names[i] = r.Name
			reads[i] = r.Seq
		}

		// groupSig stands in for a file signature: it ties the cache
		// entry to this group's length, size and membership (an FNV-1a
		// digest of its read names and sequences) without a real file
		// on disk, since the sample itself was already cached.
		digest := uint64(14695981039346656037)
		for _, r := range group {
			for _, b := range append([]byte(r.Name+"\n"), append(nucleotide.DecodeSeq(r.Seq), '\n')...) {
				digest = (digest ^ uint64(b)) * 1099511628211
			}
		}
		groupSig := rescache.Signature{Size: int64(length), ModTime: int64(len(group)), Digest: digest}
		tag := fmt.Sprintf("invoke_align-L%d-K%d", length, maxErrors)

		dir, err := cache.Get(tag, []rescache.Signature{refSig, groupSig}, func(dir string) error {
			b := matcher.Batch{
				Reference: reference.Seq,
				Reads:     reads,
				ReadNames: names,
				MaxErrors: maxErrors,
				IndelCost: 1,
			}

			hitsFile, err := os.Create(path.Join(dir, "hits.myr"))
			if err != nil {
				return err
			}
			defer hitsFile.Close()
			w := bufio.NewWriter(hitsFile)

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
			return nil, err
		}

		if err := loadHits(path.Join(dir, "hits.myr"), hits); err != nil {
			return nil, err
		}
	}

	return hits, nil
}

// loadHits parses matcher.Run's formatted hit lines ("name n_errors
// start..end read_align ref_align") into the HitRecord map assess
// expects, the same shape assess.py builds from hit_file.
func loadHits(path string, hits map[string][]assess.HitRecord) error {
	fid, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fid.Close()

	scanner := bufio.NewScanner(fid)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			continue
		}
		name := fields[0]
		nErrors, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		readAlign := fields[3]
		refAlign := fields[4]
		hits[name] = append(hits[name], assess.HitRecord{
			ReadName:  name,
			NErrors:   nErrors,
			ReadAlign: readAlign,
			RefAlign:  refAlign,
		})
	}
	return scanner.Err()
}

// printReport prints the same shape of report as assess.py:main.
func printReport(s assess.Summary, nSampled, maxErrors, maxLength int) {
	fmt.Println("Error profile")
	for i := 0; i < maxLength; i++ {
		fmt.Printf("pos=%5d snps=%5d indels=%5d\n", i+1, s.ErrorPosCount[i], s.IndelPosCount[i])
	}
	fmt.Println()

	fmt.Println("Sampled", nSampled, "reads")
	fmt.Println(s.NAmbiguous, "had no clear best hit")
	fmt.Println(s.NUnhit, "hit nothing")
	for i := 0; i <= maxErrors; i++ {
		fmt.Printf("%3d errors: %d\n", i, s.ErrorCount[i])
	}
}
