package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// CipherKeySize is the required length in bytes of the pre-shared decrypt key (AES-128).
const CipherKeySize = 16

const payloadSeparator = ":"

// FormatError is returned when an encrypted payload does not have the "<ivHex>:<base64Ciphertext>" shape.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "cipher: " + e.Reason }

// CryptoError is returned for any decoding or decryption failure after the payload shape was accepted.
// It carries no detail about which step failed.
type CryptoError struct{}

func (e *CryptoError) Error() string { return "cipher: decryption failed" }

// ConfigError is a fatal startup-time configuration failure.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Setting, e.Reason)
}

// Cipher decrypts values encrypted by clients or stored encrypted in configuration,
// using AES-128-CBC with PKCS#7 padding and a pre-shared key.
type Cipher struct {
	block cipher.Block
}

// NewCipher returns a Cipher for key. The key must be exactly CipherKeySize bytes;
// any other length is a ConfigError.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != CipherKeySize {
		return nil, &ConfigError{Setting: "DECRYPT_KEY", Reason: fmt.Sprintf("must be exactly %d bytes, got %d", CipherKeySize, len(key))}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &ConfigError{Setting: "DECRYPT_KEY", Reason: err.Error()}
	}
	return &Cipher{block: block}, nil
}

// Decrypt parses payload as "<ivHex>:<base64Ciphertext>" and returns the plaintext.
// A malformed payload yields *FormatError; every later failure yields *CryptoError.
func (c *Cipher) Decrypt(payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", &FormatError{Reason: "malformed payload"}
	}
	parts := strings.Split(payload, payloadSeparator)
	if len(parts) != 2 {
		return "", &FormatError{Reason: "malformed payload"}
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", &CryptoError{}
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", &CryptoError{}
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, ct)
	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", &CryptoError{}
	}
	return string(plain), nil
}

// Encrypt encrypts plaintext under a fresh random IV and returns it in the wire format accepted by Decrypt.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ct, padded)
	return hex.EncodeToString(iv) + payloadSeparator + base64.StdEncoding.EncodeToString(ct), nil
}

// LooksEncrypted reports whether value has the separator used by the wire format.
// Configuration values are only decrypted when this is true.
func LooksEncrypted(value string) bool {
	return value != "" && strings.Contains(value, payloadSeparator)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, &CryptoError{}
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, &CryptoError{}
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, &CryptoError{}
		}
	}
	return data[:len(data)-n], nil
}
