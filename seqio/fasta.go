// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package seqio is the only file-format-aware code in this module.
// It reads FASTA-formatted reference and read files, following the
// bufio.Scanner-over-fixed-record-shape style of utils/fastq.go's
// ReadInSeq, generalized from FASTQ's 4-line records to FASTA's
// 2-line ">name"/sequence records. Everything downstream of this
// package operates on nucleotide.Code slices.
package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/ralic/gnu-myrialign/nucleotide"
)

// Read is one FASTA record: an opaque name and its encoded sequence.
type Read struct {
	Name string
	Seq  []nucleotide.Code
}

// Reference is a single named reference sequence.
type Reference struct {
	Name string
	Seq  []nucleotide.Code
}

// scanBufSize mirrors muscato_screen's 1MB scanner buffer, sized for
// the occasional very long reference line.
const scanBufSize = 1024 * 1024

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), scanBufSize)
	return scanner
}

// maybeDecompress wraps r in a snappy reader when name ends in ".sz",
// the suffix every muscato_* stage uses for its compressed
// intermediate files.
func maybeDecompress(name string, r io.Reader) io.Reader {
	if strings.HasSuffix(name, ".sz") {
		return snappy.NewReader(r)
	}
	return r
}

// ReadReferences parses every ">name"/sequence record in r as a
// reference sequence. name is used only to decide whether to wrap r
// in a snappy reader.
func ReadReferences(name string, r io.Reader) ([]Reference, error) {
	scanner := newScanner(maybeDecompress(name, r))

	var refs []Reference
	var cur *Reference
	var seq []byte

	flush := func() {
		if cur != nil {
			cur.Seq = nucleotide.EncodeSeq(seq)
			refs = append(refs, *cur)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			n := strings.TrimPrefix(line, ">")
			cur = &Reference{Name: n}
			seq = seq[:0]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("seqio: sequence data before any '>' header in %s", name)
		}
		seq = append(seq, []byte(strings.TrimSpace(line))...)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("seqio: reading %s: %w", name, err)
	}
	return refs, nil
}

// ReadReads parses a FASTA-formatted read file the same way, into
// Read records with an unencoded name field.
func ReadReads(name string, r io.Reader) ([]Read, error) {
	refs, err := ReadReferences(name, r)
	if err != nil {
		return nil, err
	}
	reads := make([]Read, len(refs))
	for i, ref := range refs {
		reads[i] = Read{Name: ref.Name, Seq: ref.Seq}
	}
	return reads, nil
}

// GroupByLength partitions reads into length-homogeneous groups, the
// shape matcher.Batch requires: all reads in one batch share one L.
func GroupByLength(reads []Read) map[int][]Read {
	groups := make(map[int][]Read)
	for _, r := range reads {
		l := len(r.Seq)
		groups[l] = append(groups[l], r)
	}
	return groups
}
