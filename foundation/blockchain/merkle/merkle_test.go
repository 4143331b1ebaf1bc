// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"testing"

	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
	"github.com/ardanlabs/powrace/foundation/blockchain/merkle"
)

// Data uses the blockchain digest for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the value using the blockchain digest.
func (d Data) Hash() ([]byte, error) {
	sum := digest.Sum([]byte(d.x))
	return sum[:], nil
}

// Equals tests for equality of two piece of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

func combine(newHash func() hash.Hash, left, right []byte) []byte {
	h := newHash()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func leaf(x string) []byte {
	b, _ := Data{x: x}.Hash()
	return b
}

func values(n int) []Data {
	out := make([]Data, n)
	for i := range n {
		out[i] = Data{x: fmt.Sprintf("tx-%d", i)}
	}
	return out
}

// =============================================================================

func Test_EmptyRoot(t *testing.T) {
	root, err := merkle.Root[Data](nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if root != digest.String("empty") {
		t.Errorf("error: expected the empty marker digest, got %s", root)
	}

	if _, err := merkle.NewTree[Data](nil); err == nil {
		t.Errorf("error: expected an error constructing a tree with no content")
	}
}

func Test_MerkleRoot(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")

	ab := combine(digest.New, a, b)
	cc := combine(digest.New, c, c)

	table := []struct {
		testCaseId   int
		data         []Data
		expectedHash []byte
	}{
		{0, []Data{{x: "a"}}, a},
		{1, []Data{{x: "a"}, {x: "b"}}, ab},
		{2, []Data{{x: "a"}, {x: "b"}, {x: "c"}}, combine(digest.New, ab, cc)},
	}

	for _, tst := range table {
		tree, err := merkle.NewTree(tst.data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", tst.testCaseId, err)
		}
		if !bytes.Equal(tree.MerkleRoot, tst.expectedHash) {
			t.Errorf("[case:%d] error: expected hash equal to %x got %x", tst.testCaseId, tst.expectedHash, tree.MerkleRoot)
		}

		root, err := merkle.Root(tst.data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", tst.testCaseId, err)
		}
		if root != hex.EncodeToString(tst.expectedHash) {
			t.Errorf("[case:%d] error: expected root %x got %s", tst.testCaseId, tst.expectedHash, root)
		}
	}
}

func Test_NewTreeWithHashingStrategy(t *testing.T) {
	data := []Data{{x: "a"}, {x: "b"}}

	tree, err := merkle.NewTree(data, merkle.WithHashStrategy[Data](sha256.New))
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	exp := combine(sha256.New, leaf("a"), leaf("b"))
	if !bytes.Equal(tree.MerkleRoot, exp) {
		t.Errorf("error: expected hash equal to %x got %x", exp, tree.MerkleRoot)
	}
}

func Test_OrderSensitive(t *testing.T) {
	for n := 2; n <= 9; n++ {
		data := values(n)

		forward, err := merkle.Root(data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", n, err)
		}

		again, _ := merkle.Root(data)
		if forward != again {
			t.Errorf("[case:%d] error: expected a deterministic root", n)
		}

		swapped := make([]Data, n)
		copy(swapped, data)
		swapped[0], swapped[n-1] = swapped[n-1], swapped[0]

		reordered, _ := merkle.Root(swapped)
		if forward == reordered {
			t.Errorf("[case:%d] error: expected reordering to change the root", n)
		}
	}
}

func Test_RebuildTree(t *testing.T) {
	tree, err := merkle.NewTree(values(5))
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	exp := tree.RootHex()

	if err := tree.Rebuild(); err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if tree.RootHex() != exp {
		t.Errorf("error: expected the same root after rebuild, got %s exp %s", tree.RootHex(), exp)
	}

	if len(tree.Values()) != 5 {
		t.Errorf("error: expected 5 values, got %d", len(tree.Values()))
	}
}

func Test_VerifyTree(t *testing.T) {
	for n := 1; n <= 7; n++ {
		tree, err := merkle.NewTree(values(n))
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", n, err)
		}
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to be valid: %v", n, err)
		}

		tree.MerkleRoot = []byte{1}
		if err := tree.Verify(); err == nil {
			t.Errorf("[case:%d] error: expected tree to be invalid", n)
		}
	}
}

func Test_Proof(t *testing.T) {
	for n := 1; n <= 9; n++ {
		data := values(n)

		tree, err := merkle.NewTree(data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", n, err)
		}

		for i, d := range data {
			if err := tree.VerifyData(d); err != nil {
				t.Errorf("[case:%d] error: expected valid content for value %d: %v", n, i, err)
			}

			proof, order, err := tree.Proof(d)
			if err != nil {
				t.Fatalf("[case:%d] error: unexpected error: %v", n, err)
			}
			if err := tree.VerifyProof(d, proof, order); err != nil {
				t.Errorf("[case:%d] error: expected proof for value %d to verify: %v", n, i, err)
			}
		}

		if _, _, err := tree.Proof(Data{x: "missing"}); err == nil {
			t.Errorf("[case:%d] error: expected no proof for missing content", n)
		}
		if err := tree.VerifyData(Data{x: "missing"}); err == nil {
			t.Errorf("[case:%d] error: expected invalid content", n)
		}
	}
}

func Test_String(t *testing.T) {
	tree, err := merkle.NewTree(values(3))
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if tree.String() == "" {
		t.Errorf("error: expected not empty string")
	}
}
