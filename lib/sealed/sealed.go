// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts converted documents to age recipients and
// decrypts them with age identities. It wraps filippo.io/age for the
// operations the converter needs: generate an x25519 keypair, encrypt
// to one or more public keys, recognize an encrypted payload, and
// decrypt with identities read from a key file.
//
// Ciphertext is the binary age format by default. [EncryptArmored]
// produces the PEM-style ASCII armor instead, for text outputs, and
// [Decrypt] accepts either.
package sealed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/bureau-foundation/bxml/lib/secret"
)

// binaryHeader opens every binary age file.
const binaryHeader = "age-encryption.org/v1"

// MaxPlaintextSize bounds what Decrypt will read back.
const MaxPlaintextSize = 1 << 30

// ErrNoRecipients is returned by Encrypt when called without recipients.
var ErrNoRecipients = errors.New("at least one recipient is required")

// Keypair holds an age x25519 keypair in its string encodings.
type Keypair struct {
	// PrivateKey is the identity in AGE-SECRET-KEY-1... form. It belongs
	// in an identity file with 0600 permissions, never on a command line.
	PrivateKey string

	// PublicKey is the age1... recipient string. Safe to publish.
	PublicKey string
}

// GenerateKeypair generates a new age x25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	return &Keypair{
		PrivateKey: identity.String(),
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// IdentityFile renders the keypair the way age-keygen writes it: a
// comment line naming the public key, then the private key.
func (k *Keypair) IdentityFile() string {
	return "# public key: " + k.PublicKey + "\n" + k.PrivateKey + "\n"
}

// ParseRecipients parses age1... public key strings.
func ParseRecipients(recipientKeys []string) ([]age.Recipient, error) {
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// Encrypt encrypts plaintext to every recipient key and returns binary
// age ciphertext.
func Encrypt(plaintext []byte, recipientKeys []string) ([]byte, error) {
	return encrypt(plaintext, recipientKeys, false)
}

// EncryptArmored is Encrypt with ASCII armor around the ciphertext.
func EncryptArmored(plaintext []byte, recipientKeys []string) ([]byte, error) {
	return encrypt(plaintext, recipientKeys, true)
}

func encrypt(plaintext []byte, recipientKeys []string, armored bool) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, ErrNoRecipients
	}
	recipients, err := ParseRecipients(recipientKeys)
	if err != nil {
		return nil, err
	}

	var ciphertext bytes.Buffer
	var destination io.Writer = &ciphertext
	var armorWriter io.WriteCloser
	if armored {
		armorWriter = armor.NewWriter(&ciphertext)
		destination = armorWriter
	}

	writer, err := age.Encrypt(destination, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	if armorWriter != nil {
		if err := armorWriter.Close(); err != nil {
			return nil, fmt.Errorf("finalizing age armor: %w", err)
		}
	}
	return ciphertext.Bytes(), nil
}

// IsEncrypted reports whether data is an age file, binary or armored.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(binaryHeader)) || isArmored(data)
}

func isArmored(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(armor.Header))
}

// ParseIdentities reads age identities, one AGE-SECRET-KEY-1... per line
// with # comments allowed.
func ParseIdentities(source io.Reader) ([]age.Identity, error) {
	identities, err := age.ParseIdentities(bufio.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parsing identities: %w", err)
	}
	return identities, nil
}

// ReadIdentityFile reads identities from path. The file's contents are
// held in a [secret.Buffer] while parsing and zeroed afterwards.
func ReadIdentityFile(path string) ([]age.Identity, error) {
	buffer, err := secret.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	defer buffer.Close()
	identities, err := ParseIdentities(buffer.Reader())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return identities, nil
}

// Decrypt decrypts binary or armored age ciphertext with any of the
// given identities.
func Decrypt(ciphertext []byte, identities ...age.Identity) ([]byte, error) {
	if len(identities) == 0 {
		return nil, errors.New("at least one identity is required")
	}

	var source io.Reader = bytes.NewReader(ciphertext)
	if isArmored(ciphertext) {
		source = armor.NewReader(bytes.NewReader(bytes.TrimLeft(ciphertext, " \t\r\n")))
	}

	reader, err := age.Decrypt(source, identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(io.LimitReader(reader, MaxPlaintextSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	if len(plaintext) > MaxPlaintextSize {
		return nil, fmt.Errorf("decrypted plaintext exceeds %d bytes", MaxPlaintextSize)
	}
	return plaintext, nil
}

// DecryptWithKey decrypts using a single AGE-SECRET-KEY-1... string.
func DecryptWithKey(ciphertext []byte, privateKey string) ([]byte, error) {
	identity, err := age.ParseX25519Identity(strings.TrimSpace(privateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return Decrypt(ciphertext, identity)
}
