package wire

import (
	"sync"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
)

type groupState struct {
	packets    map[uint32]*Packet
	finalIndex *uint32
}

// Decoder buffers packet groups keyed by group id and reassembles them
// once complete. One Decoder belongs to exactly one association's inbound
// path -- no cross-task locking beyond its own mutex is required.
type Decoder struct {
	ttl time.Duration

	mu     sync.Mutex
	groups map[uint32]*cos.TTLValue[*groupState]
}

func NewDecoder(ttl time.Duration) *Decoder {
	return &Decoder{
		ttl:    ttl,
		groups: make(map[uint32]*cos.TTLValue[*groupState]),
	}
}

// AddPacket adds p to its group, creating the group on first sight of its
// id. Touches the group's TTL on success.
func (d *Decoder) AddPacket(p *Packet) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, index := p.ID(), p.Index()
	g, ok := d.groups[id]
	if !ok {
		g = cos.NewTTLValue(&groupState{packets: make(map[uint32]*Packet)})
		d.groups[id] = g
	}
	gs := g.Value

	if _, exists := gs.packets[index]; exists {
		return &PacketExists{ID: id, Index: index}
	}
	if p.IsFinal() && gs.finalIndex != nil {
		return &FinalPacketAlreadyExists{ID: id, Index: index}
	}
	if gs.finalIndex != nil && index > *gs.finalIndex {
		return &PacketBeyondLastIndex{ID: id, Index: index}
	}
	if p.IsFinal() {
		fi := index
		gs.finalIndex = &fi
	}

	gs.packets[index] = p
	g.Touch()
	return nil
}

// Verify reports whether groupID's final index is known and every packet
// from 0..final_index has arrived.
func (d *Decoder) Verify(groupID uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.verifyLocked(groupID)
}

func (d *Decoder) verifyLocked(groupID uint32) bool {
	g, ok := d.groups[groupID]
	if !ok || g.Value.finalIndex == nil {
		return false
	}
	return len(g.Value.packets) == int(*g.Value.finalIndex)+1
}

// Assemble concatenates a complete group's Data sections in ascending
// index order. Callers should check Verify first; Assemble returns
// NotReady otherwise -- partial reassembly is "not yet", not an error.
func (d *Decoder) Assemble(groupID uint32) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.verifyLocked(groupID) {
		return nil, &NotReady{ID: groupID}
	}
	gs := d.groups[groupID].Value
	n := int(*gs.finalIndex)
	out := make([]byte, 0)
	for i := 0; i <= n; i++ {
		out = append(out, gs.packets[uint32(i)].Data...)
	}
	return out, nil
}

// FinalNonce returns the nonce carried by the group's final packet, or nil
// if there is none yet or the group used no encryption.
func (d *Decoder) FinalNonce(groupID uint32) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[groupID]
	if !ok || g.Value.finalIndex == nil {
		return nil
	}
	final, ok := g.Value.packets[*g.Value.finalIndex]
	if !ok {
		return nil
	}
	return final.Nonce()
}

// RemoveGroup explicitly disposes of a group's reassembly state, called
// after a successful Assemble.
func (d *Decoder) RemoveGroup(groupID uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.groups, groupID)
}

// RemoveExpired drops every group whose TTL has elapsed since its last
// touched packet, returning the ids it evicted for logging.
func (d *Decoder) RemoveExpired() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	var evicted []uint32
	for id, g := range d.groups {
		if g.Expired(d.ttl) {
			evicted = append(evicted, id)
			delete(d.groups, id)
		}
	}
	return evicted
}
