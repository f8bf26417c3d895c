// Copyright 2017, Kerby Shedden and the Muscato contributors.

package seqio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/ralic/gnu-myrialign/nucleotide"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReferencesParsesMultipleRecords(t *testing.T) {
	data := ">chr1\nACGT\nACGT\n>chr2\nTTTT\n"
	refs, err := ReadReferences("refs.fna", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "chr1", refs[0].Name)
	assert.Equal(t, "ACGTACGT", string(nucleotide.DecodeSeq(refs[0].Seq)))
	assert.Equal(t, "chr2", refs[1].Name)
	assert.Equal(t, "TTTT", string(nucleotide.DecodeSeq(refs[1].Seq)))
}

func TestReadReferencesRejectsDataBeforeHeader(t *testing.T) {
	_, err := ReadReferences("refs.fna", strings.NewReader("ACGT\n>chr1\nACGT\n"))
	assert.Error(t, err)
}

func TestReadReadsSharesReferenceParsing(t *testing.T) {
	data := ">r1\nACGT\n>r2\nTTTT\n"
	reads, err := ReadReads("reads.fna", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, reads, 2)
	assert.Equal(t, "r1", reads[0].Name)
}

func TestReadReadsDecompressesSnappy(t *testing.T) {
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	_, err := w.Write([]byte(">r1\nACGT\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reads, err := ReadReads("reads.fna.sz", &buf)
	require.NoError(t, err)
	require.Len(t, reads, 1)
	assert.Equal(t, "r1", reads[0].Name)
}

func TestGroupByLength(t *testing.T) {
	data := ">r1\nACGT\n>r2\nACG\n>r3\nTTTT\n"
	reads, err := ReadReads("reads.fna", strings.NewReader(data))
	require.NoError(t, err)

	groups := GroupByLength(reads)
	assert.Len(t, groups[4], 2)
	assert.Len(t, groups[3], 1)
}
