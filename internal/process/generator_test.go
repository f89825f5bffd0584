package process

import (
	"testing"

	"github.com/google/uuid"
)

func TestIDGeneratorRepeatsPerProcess(t *testing.T) {
	a, b := NewIDGenerator("proc-1"), NewIDGenerator("proc-1")
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("step %d: %s != %s", i, x, y)
		}
		if _, err := uuid.Parse(x); err != nil {
			t.Fatalf("not a uuid: %s", x)
		}
		if seen[x] {
			t.Fatalf("duplicate id %s", x)
		}
		seen[x] = true
	}
}

func TestIDGeneratorDiffersAcrossProcesses(t *testing.T) {
	if NewIDGenerator("proc-1").Next() == NewIDGenerator("proc-2").Next() {
		t.Fatal("different processes produced the same first id")
	}
	id := uuid.NewString()
	if NewIDGenerator(id).Next() == NewIDGenerator(id+"x").Next() {
		t.Fatal("uuid and non-uuid seeds collided")
	}
}
