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
	"crypto/sha1"
	"log"

	kcp "github.com/xtaci/kcp-go/v5"
	"golang.org/x/crypto/pbkdf2"
)

// transportSalt fixes the PBKDF2 salt used to stretch the shared
// passphrase into a transport key.
const transportSalt = "unrand-transport"

// TransportKey derives the 32-byte key the block ciphers consume from the
// pre-shared passphrase.
func TransportKey(pass string) []byte {
	return pbkdf2.Key([]byte(pass), []byte(transportSalt), 4096, 32, sha1.New)
}

// cipherSpec maps a cipher name to its constructor and the number of key
// bytes it consumes (0 means the whole derived key).
type cipherSpec struct {
	keyLen int
	build  func(key []byte) (kcp.BlockCrypt, error)
}

var cipherSpecs = map[string]cipherSpec{
	"none":        {0, kcp.NewNoneBlockCrypt},
	"xor":         {0, kcp.NewSimpleXORBlockCrypt},
	"aes":         {0, kcp.NewAESBlockCrypt},
	"aes-128":     {16, kcp.NewAESBlockCrypt},
	"aes-192":     {24, kcp.NewAESBlockCrypt},
	"aes-128-gcm": {16, kcp.NewAESGCMCrypt},
	"salsa20":     {0, kcp.NewSalsa20BlockCrypt},
	"blowfish":    {0, kcp.NewBlowfishBlockCrypt},
	"twofish":     {0, kcp.NewTwofishBlockCrypt},
	"cast5":       {16, kcp.NewCast5BlockCrypt},
	"3des":        {24, kcp.NewTripleDESBlockCrypt},
	"tea":         {16, kcp.NewTEABlockCrypt},
	"xtea":        {16, kcp.NewXTEABlockCrypt},
	"sm4":         {16, kcp.NewSM4BlockCrypt},
}

// SelectBlockCrypt resolves a cipher name into a kcp.BlockCrypt, falling
// back to AES when the name is unknown or construction fails. The
// effective cipher name is returned so callers can log the final choice.
func SelectBlockCrypt(method string, key []byte) (kcp.BlockCrypt, string) {
	spec, ok := cipherSpecs[method]
	if !ok {
		log.Printf("crypt: unknown cipher %q, using aes", method)
		spec, method = cipherSpecs["aes"], "aes"
	}

	k := key
	if spec.keyLen > 0 && len(key) >= spec.keyLen {
		k = key[:spec.keyLen]
	}

	block, err := spec.build(k)
	if err != nil {
		log.Printf("crypt: %s unavailable: %v, using aes", method, err)
		block, _ = kcp.NewAESBlockCrypt(key)
		return block, "aes"
	}
	return block, method
}
