// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package record

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/danielhkuo/poll-ledger/models"
)

var (
	ErrCorrupt       = errors.New("corrupt poll record")
	ErrWrongRecord   = errors.New("record is not a poll")
	ErrExceedsLimits = errors.New("poll exceeds record limits")
)

// Seeds prefix every poll id before hashing
const (
	addressSeed = "poll"
	closedSeed  = "closed"
)

// discriminator tags encoded poll records
var discriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("record:Poll"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// Address derives the storage key for a poll id.
// Deterministic, so every party computes the same key without a lookup.
func Address(pollID string) string {
	return derive(addressSeed, pollID)
}

// ClosedAddress derives the key of the marker left behind when a poll's
// record is released. Its presence keeps the id from being created again.
func ClosedAddress(pollID string) string {
	return derive(closedSeed, pollID)
}

func derive(seed, pollID string) string {
	h := sha256.New()
	h.Write([]byte(seed))
	h.Write([]byte(pollID))
	return hex.EncodeToString(h.Sum(nil))
}

// Limits bounds every variable-length field of a poll record. Lengths are
// in bytes.
type Limits struct {
	MaxIDLen        int
	MaxIdentityLen  int
	MaxQuestionLen  int
	MaxCandidates   int
	MaxCandidateLen int
	MaxVoters       int
}

// DefaultLimits matches the fixed account layout the ledger was built
// around: 200 byte question, 10 candidates of 50 bytes, 100 voters.
func DefaultLimits() Limits {
	return Limits{
		MaxIDLen:        64,
		MaxIdentityLen:  64,
		MaxQuestionLen:  200,
		MaxCandidates:   10,
		MaxCandidateLen: 50,
		MaxVoters:       100,
	}
}

// Validate rejects limits that cannot describe a usable poll
func (l Limits) Validate() error {
	if l.MaxIDLen <= 0 || l.MaxIdentityLen <= 0 || l.MaxQuestionLen <= 0 ||
		l.MaxCandidates <= 0 || l.MaxCandidateLen <= 0 || l.MaxVoters <= 0 {
		return fmt.Errorf("all record limits must be positive: %+v", l)
	}
	return nil
}

// Space returns the largest encoded size a poll within these limits can
// reach. Stores allocate this many bytes per record.
func (l Limits) Space() int {
	return len(discriminator) +
		4 + l.MaxIDLen + // id
		4 + l.MaxIdentityLen + // creator
		4 + l.MaxQuestionLen + // question
		4 + l.MaxCandidates*(4+l.MaxCandidateLen) + // candidates
		4 + l.MaxCandidates*8 + // tally
		1 + // active
		4 + l.MaxVoters*(4+l.MaxIdentityLen) // voters
}

// Fits reports whether p stays within the limits
func (l Limits) Fits(p models.Poll) error {
	switch {
	case len(p.ID) > l.MaxIDLen:
		return fmt.Errorf("%w: id is %d bytes, max %d", ErrExceedsLimits, len(p.ID), l.MaxIDLen)
	case len(p.Creator) > l.MaxIdentityLen:
		return fmt.Errorf("%w: creator is %d bytes, max %d", ErrExceedsLimits, len(p.Creator), l.MaxIdentityLen)
	case len(p.Question) > l.MaxQuestionLen:
		return fmt.Errorf("%w: question is %d bytes, max %d", ErrExceedsLimits, len(p.Question), l.MaxQuestionLen)
	case len(p.Candidates) > l.MaxCandidates:
		return fmt.Errorf("%w: %d candidates, max %d", ErrExceedsLimits, len(p.Candidates), l.MaxCandidates)
	case len(p.Voters) > l.MaxVoters:
		return fmt.Errorf("%w: %d voters, max %d", ErrExceedsLimits, len(p.Voters), l.MaxVoters)
	}
	for _, c := range p.Candidates {
		if len(c) > l.MaxCandidateLen {
			return fmt.Errorf("%w: candidate %q is %d bytes, max %d", ErrExceedsLimits, c, len(c), l.MaxCandidateLen)
		}
	}
	for _, v := range p.Voters {
		if len(v) > l.MaxIdentityLen {
			return fmt.Errorf("%w: voter is %d bytes, max %d", ErrExceedsLimits, len(v), l.MaxIdentityLen)
		}
	}
	return nil
}

// Encode serializes a poll. Layout, all integers little endian:
//
//	[8]discriminator
//	string id, string creator, string question
//	u32 n, n × string candidates
//	u32 n, n × u64 tally
//	u8 active
//	u32 m, m × string voters
//
// Strings are a u32 byte length followed by the bytes.
func Encode(p models.Poll) ([]byte, error) {
	if len(p.Tally) != len(p.Candidates) {
		return nil, fmt.Errorf("%w: %d candidates but %d tally slots", ErrCorrupt, len(p.Candidates), len(p.Tally))
	}

	buf := make([]byte, 0, encodedSize(p))
	buf = append(buf, discriminator[:]...)
	buf = appendString(buf, p.ID)
	buf = appendString(buf, p.Creator)
	buf = appendString(buf, p.Question)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Candidates)))
	for _, c := range p.Candidates {
		buf = appendString(buf, c)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Tally)))
	for _, n := range p.Tally {
		buf = binary.LittleEndian.AppendUint64(buf, n)
	}

	if p.Active {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Voters)))
	for _, v := range p.Voters {
		buf = appendString(buf, v)
	}

	return buf, nil
}

// Decode parses bytes produced by Encode
func Decode(data []byte) (models.Poll, error) {
	if len(data) < len(discriminator) {
		return models.Poll{}, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	if [8]byte(data[:8]) != discriminator {
		return models.Poll{}, ErrWrongRecord
	}

	r := reader{buf: data[8:]}
	var p models.Poll
	p.ID = r.string()
	p.Creator = r.string()
	p.Question = r.string()

	n := r.count(4)
	p.Candidates = make([]string, 0, n)
	for i := 0; i < n; i++ {
		p.Candidates = append(p.Candidates, r.string())
	}

	n = r.count(8)
	p.Tally = make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		p.Tally = append(p.Tally, r.uint64())
	}

	switch r.byte() {
	case 0:
		p.Active = false
	case 1:
		p.Active = true
	default:
		r.fail("invalid active flag")
	}

	n = r.count(4)
	p.Voters = make([]string, 0, n)
	for i := 0; i < n; i++ {
		p.Voters = append(p.Voters, r.string())
	}

	if r.err != nil {
		return models.Poll{}, r.err
	}
	if len(r.buf) != 0 {
		return models.Poll{}, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.buf))
	}
	if len(p.Tally) != len(p.Candidates) {
		return models.Poll{}, fmt.Errorf("%w: %d candidates but %d tally slots", ErrCorrupt, len(p.Candidates), len(p.Tally))
	}
	// Voter lookups binary search the set
	for i := 1; i < len(p.Voters); i++ {
		if p.Voters[i-1] >= p.Voters[i] {
			return models.Poll{}, fmt.Errorf("%w: voter set is not sorted and unique at %d", ErrCorrupt, i)
		}
	}
	return p, nil
}

func encodedSize(p models.Poll) int {
	size := len(discriminator) + 4 + len(p.ID) + 4 + len(p.Creator) + 4 + len(p.Question)
	size += 4
	for _, c := range p.Candidates {
		size += 4 + len(c)
	}
	size += 4 + 8*len(p.Tally) + 1 + 4
	for _, v := range p.Voters {
		size += 4 + len(v)
	}
	return size
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// reader consumes a record; the first failure sticks and later reads
// return zero values
type reader struct {
	buf []byte
	err error
}

func (r *reader) fail(msg string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrCorrupt, msg)
	}
	r.buf = nil
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf) {
		r.fail("truncated")
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *reader) uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) string() string {
	n := r.uint32()
	return string(r.take(int(n)))
}

// count reads a vector length and checks it against the bytes left, each
// element taking at least minElem bytes
func (r *reader) count(minElem int) int {
	n := int(r.uint32())
	if r.err != nil {
		return 0
	}
	if n*minElem > len(r.buf) {
		r.fail("vector length exceeds record")
		return 0
	}
	return n
}
