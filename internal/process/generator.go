package process

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator mints task ids for one process run.  Ids are name-based
// UUIDs derived from the process id and a counter, so a replayed workflow
// produces the same ids without recording side effects.
type IDGenerator struct {
	namespace uuid.UUID
	next      int
}

// NewIDGenerator seeds a generator with the process id.  Ids that are not
// UUIDs are hashed into one first.
func NewIDGenerator(processID string) *IDGenerator {
	ns, err := uuid.Parse(processID)
	if err != nil {
		ns = uuid.NewSHA1(uuid.NameSpaceURL, []byte("process:"+processID))
	}
	return &IDGenerator{namespace: ns}
}

// Next returns the next task id.
func (g *IDGenerator) Next() string {
	id := uuid.NewSHA1(g.namespace, []byte(strconv.Itoa(g.next)))
	g.next++
	return id.String()
}
