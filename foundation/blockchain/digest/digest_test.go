package digest_test

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/ardanlabs/powrace/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Deterministic(t *testing.T) {
	t.Log("Given the need to produce the same digest for the same input.")
	{
		inputs := []string{"", "empty", "alice->bob:20", `{"index":1,"nonce":42}`}

		for testID, in := range inputs {
			t.Logf("\tTest %d:\tWhen hashing %q.", testID, in)
			{
				h1 := digest.String(in)
				h2 := digest.String(in)

				if h1 != h2 {
					t.Fatalf("\t%s\tTest %d:\tShould get the same digest twice: %s != %s", failed, testID, h1, h2)
				}
				t.Logf("\t%s\tTest %d:\tShould get the same digest twice.", success, testID)

				if len(h1) != digest.Size*2 {
					t.Fatalf("\t%s\tTest %d:\tShould get a %d character digest, got %d.", failed, testID, digest.Size*2, len(h1))
				}
				t.Logf("\t%s\tTest %d:\tShould get a %d character digest.", success, testID, digest.Size*2)
			}
		}
	}
}

func Test_ByteSensitivity(t *testing.T) {
	t.Log("Given the need to change the digest when any input byte changes.")
	{
		base := []byte(`{"sender":"Alice","receiver":"Bob","amount":"20","timestamp":1700000000000}`)
		orig := digest.Hex(base)

		for i := range base {
			mod := make([]byte, len(base))
			copy(mod, base)
			mod[i] ^= 0x01

			if got := digest.Hex(mod); got == orig {
				t.Fatalf("\t%s\tShould change the digest when byte %d changes.", failed, i)
			}
		}
		t.Logf("\t%s\tShould change the digest when any single byte changes.", success)
	}
}

func Test_HashInterface(t *testing.T) {
	t.Log("Given the need to use the digest as a streaming hash.")
	{
		data := []byte("the quick brown fox jumps over the lazy dog")

		h := digest.New()
		h.Write(data[:10])
		h.Write(data[10:])
		streamed := h.Sum(nil)

		sum := digest.Sum(data)
		if hex.EncodeToString(streamed) != hex.EncodeToString(sum[:]) {
			t.Fatalf("\t%s\tShould get the same digest when writing in pieces.", failed)
		}
		t.Logf("\t%s\tShould get the same digest when writing in pieces.", success)

		h.Reset()
		h.Write(data)
		if hex.EncodeToString(h.Sum(nil)) != hex.EncodeToString(sum[:]) {
			t.Fatalf("\t%s\tShould get the same digest after a reset.", failed)
		}
		t.Logf("\t%s\tShould get the same digest after a reset.", success)

		if h.Size() != digest.Size {
			t.Fatalf("\t%s\tShould report a size of %d.", failed, digest.Size)
		}
		t.Logf("\t%s\tShould report a size of %d.", success, digest.Size)
	}
}

func Test_LeadingZeros(t *testing.T) {
	t.Log("Given the need to check leading zeros on raw sums and hex strings.")
	{
		for i := range 20_000 {
			sum := digest.Sum(fmt.Appendf(nil, "nonce:%d", i))
			hexHash := hex.EncodeToString(sum[:])

			for difficulty := 0; difficulty <= 4; difficulty++ {
				raw := digest.HasLeadingZeros(sum, difficulty)
				str := digest.MeetsDifficulty(hexHash, difficulty)
				if raw != str {
					t.Fatalf("\t%s\tShould agree for %s at difficulty %d: raw[%t] hex[%t]", failed, hexHash, difficulty, raw, str)
				}
			}
		}
		t.Logf("\t%s\tShould agree between the raw and hex checks.", success)

		if !digest.MeetsDifficulty("000abc", 3) || digest.MeetsDifficulty("000abc", 4) {
			t.Fatalf("\t%s\tShould count exactly the leading zeros.", failed)
		}
		t.Logf("\t%s\tShould count exactly the leading zeros.", success)

		if !digest.MeetsDifficulty(digest.ZeroHash, 6) {
			t.Fatalf("\t%s\tShould accept the zero hash at any difficulty.", failed)
		}
		t.Logf("\t%s\tShould accept the zero hash at any difficulty.", success)
	}
}
