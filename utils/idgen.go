package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sqids/sqids-go"
)

// IDGenerator produces short, URL-safe post id tokens.
type IDGenerator struct {
	encoder *sqids.Sqids
	seq     atomic.Uint64
}

func NewIDGenerator() (*IDGenerator, error) {
	encoder, err := sqids.New(sqids.Options{MinLength: 8})
	if err != nil {
		return nil, fmt.Errorf("init sqids encoder: %w", err)
	}
	return &IDGenerator{encoder: encoder}, nil
}

// Next encodes the current time, a per-generator sequence number and 32 random
// bits, so two calls never return the same token.
func (g *IDGenerator) Next() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	numbers := []uint64{
		uint64(time.Now().UnixMilli()),
		g.seq.Add(1),
		uint64(binary.BigEndian.Uint32(buf[:])),
	}
	id, err := g.encoder.Encode(numbers)
	if err != nil {
		return "", fmt.Errorf("encode post id: %w", err)
	}
	return id, nil
}
