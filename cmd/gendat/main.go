// Copyright 2017, Kerby Shedden and the Muscato contributors.
//
// gendat generates synthetic test data sets: a random reference
// FASTA and a read FASTA in which the first half of the reads are
// planted copies of reference windows, each perturbed by a controlled
// number of substitutions and indels, and the second half are pure
// random reads expected to match nothing. This is the same
// planted-match idea as the original tool's gendat stage, adapted
// from generating raw genes/reads to generating the inputs align
// actually consumes.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path"
)

var bases = []byte{'A', 'C', 'G', 'T'}

func genRand(rng *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = bases[rng.Intn(4)]
	}
	return seq
}

// plant copies src into a fresh slice and introduces nSub random
// substitutions and nIndel random single-base indels, leaving the
// read within one edit_model-accounted distance of the source window.
func plant(rng *rand.Rand, src []byte, nSub, nIndel int) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	for i := 0; i < nSub; i++ {
		p := rng.Intn(len(out))
		var b byte
		for {
			b = bases[rng.Intn(4)]
			if b != out[p] {
				break
			}
		}
		out[p] = b
	}

	for i := 0; i < nIndel; i++ {
		if len(out) == 0 {
			break
		}
		p := rng.Intn(len(out))
		if rng.Intn(2) == 0 {
			// Deletion: drop one base.
			out = append(out[:p], out[p+1:]...)
		} else {
			// Insertion: add one random base.
			b := bases[rng.Intn(4)]
			out = append(out[:p], append([]byte{b}, out[p:]...)...)
		}
	}

	return out
}

func writeFasta(path, prefix string, seqs [][]byte) error {
	fid, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fid.Close()
	w := bufio.NewWriter(fid)
	defer w.Flush()

	for i, s := range seqs {
		fmt.Fprintf(w, ">%s_%d\n%s\n", prefix, i, string(s))
	}
	return nil
}

func main() {
	var (
		refLen     int
		readLen    int
		numReads   int
		maxSub     int
		maxIndel   int
		seed       int64
		outDir     string
	)

	flag.IntVar(&refLen, "RefLen", 10000, "Reference sequence length")
	flag.IntVar(&readLen, "ReadLen", 100, "Read length")
	flag.IntVar(&numReads, "NumReads", 1000, "Number of reads to generate")
	flag.IntVar(&maxSub, "MaxSub", 2, "Maximum planted substitutions per matching read")
	flag.IntVar(&maxIndel, "MaxIndel", 1, "Maximum planted indels per matching read")
	flag.Int64Var(&seed, "Seed", 1, "Random seed")
	flag.StringVar(&outDir, "Dir", ".", "Output directory")

	flag.Parse()

	if numReads < 2 {
		fmt.Fprintln(os.Stderr, "NumReads must be at least 2")
		os.Exit(1)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		panic(err)
	}

	rng := rand.New(rand.NewSource(seed))

	reference := genRand(rng, refLen)
	if err := writeFasta(path.Join(outDir, "reference.fna"), "ref", [][]byte{reference}); err != nil {
		panic(err)
	}

	half := numReads / 2
	reads := make([][]byte, 0, numReads)
	for i := 0; i < half; i++ {
		start := rng.Intn(refLen - readLen)
		window := reference[start : start+readLen]
		read := plant(rng, window, rng.Intn(maxSub+1), rng.Intn(maxIndel+1))
		reads = append(reads, read)
	}
	for i := half; i < numReads; i++ {
		reads = append(reads, genRand(rng, readLen))
	}

	if err := writeFasta(path.Join(outDir, "reads.fna"), "read", reads); err != nil {
		panic(err)
	}

	fmt.Printf("Wrote %d reference bases and %d reads (%d planted, %d random) to %s\n",
		refLen, numReads, half, numReads-half, outDir)
}
