// The MIT License (MIT)
//
// # Copyright (c) 2024 unrand
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package std

import (
	"fmt"
	"io"
	"math/big"

	"github.com/xtaci/qpp"
)

// qppPower is the permutation dimension used on both ends of the tunnel.
const qppPower = 8

// ValidateQPPParams checks the pad settings and returns a fatal error for
// unusable combinations; weaker but workable settings come back as
// warnings the caller can surface without stopping.
func ValidateQPPParams(count int, key string) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("QPPCount must be greater than 0 when QPP is enabled")
	}

	var warnings []string

	if minSeed := qpp.QPPMinimumSeedLength(qppPower); len(key) < minSeed {
		warnings = append(warnings, fmt.Sprintf("QPP Warning: 'key' has size of %d bytes, required %d bytes at least", len(key), minSeed))
	}

	if minPads := qpp.QPPMinimumPads(qppPower); count < minPads {
		warnings = append(warnings, fmt.Sprintf("QPP Warning: QPPCount %d, required %d at least", count, minPads))
	}

	if new(big.Int).GCD(nil, nil, big.NewInt(int64(count)), big.NewInt(qppPower)).Int64() != 1 {
		warnings = append(warnings, fmt.Sprintf("QPP Warning: QPPCount %d, choose a prime number for security", count))
	}

	return warnings, nil
}

// QPPPort layers Quantum Permutation Pad obfuscation over a stream. Both
// ends must build the pad from the same key and pad count, and each
// direction keeps its own PRNG so reads and writes stay in sync.
type QPPPort struct {
	stream io.ReadWriteCloser

	pad   *qpp.QuantumPermutationPad
	wprng *qpp.Rand
	rprng *qpp.Rand
}

// NewQPPPort wraps stream with the shared pad, seeding both direction
// PRNGs from seed.
func NewQPPPort(stream io.ReadWriteCloser, pad *qpp.QuantumPermutationPad, seed []byte) *QPPPort {
	return &QPPPort{
		stream: stream,
		pad:    pad,
		wprng:  qpp.CreatePRNG(seed),
		rprng:  qpp.CreatePRNG(seed),
	}
}

func (p *QPPPort) Read(b []byte) (int, error) {
	n, err := p.stream.Read(b)
	p.pad.DecryptWithPRNG(b[:n], p.rprng)
	return n, err
}

func (p *QPPPort) Write(b []byte) (int, error) {
	p.pad.EncryptWithPRNG(b, p.wprng)
	return p.stream.Write(b)
}

func (p *QPPPort) Close() error { return p.stream.Close() }
