package guid

import "testing"

func TestEntityKind(t *testing.T) {
	id := EntityIDSPDPAnnouncer
	if got := id.EntityKind(); got != KindBuiltinWriterWithKey {
		t.Fatalf("EntityKind() = %x, want %x", got, KindBuiltinWriterWithKey)
	}
}

func TestGUIDBytesRoundTrip(t *testing.T) {
	var prefix Prefix
	for i := range prefix {
		prefix[i] = byte(i + 1)
	}
	g := New(prefix, EntityIDParticipant)
	b := g.Bytes()
	if len(b) != Len {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), Len)
	}
	for i := 0; i < PrefixLen; i++ {
		if b[i] != prefix[i] {
			t.Fatalf("byte %d = %x, want %x", i, b[i], prefix[i])
		}
	}
}

func TestEntityCounterMonotonic(t *testing.T) {
	var c EntityCounter
	a := c.Next(KindWriterWithKey)
	b := c.Next(KindWriterWithKey)
	if a == b {
		t.Fatalf("expected distinct entity ids, got %v twice", a)
	}
	if a.EntityKind() != KindWriterWithKey || b.EntityKind() != KindWriterWithKey {
		t.Fatalf("wrong kind encoded")
	}
}

func TestUnknownGUID(t *testing.T) {
	var g GUID
	if !g.IsUnknown() {
		t.Fatalf("zero-value GUID should be unknown")
	}
	g.Entity = EntityIDParticipant
	if g.IsUnknown() {
		t.Fatalf("non-zero GUID reported unknown")
	}
}
