// Package manifest encodes the optional fragment manifest written beside a
// split.
//
// A manifest file holds exactly one frame: a 4-byte big-endian payload
// length followed by a msgpack-encoded Manifest. Merges use it to detect a
// missing or truncated fragment set, which sequential existence probing
// alone cannot.
package manifest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/splimer/iox"
	"github.com/pithecene-io/splimer/types"
)

// Frame size constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
	// MaxPayloadSize bounds the msgpack payload (64 KiB).
	MaxPayloadSize = 64 * 1024
)

// ManifestType is the type discriminant stored in every manifest.
const ManifestType = "splimer_manifest"

// Manifest records how a file was split.
type Manifest struct {
	// Type is always ManifestType.
	Type string `msgpack:"type" json:"type"`
	// ContractVersion is the splimer version that wrote the manifest.
	ContractVersion string `msgpack:"contract_version" json:"contract_version"`
	// Source is the base name of the original file.
	Source string `msgpack:"source" json:"source"`
	// FileSize is the size of the original file in bytes.
	FileSize int64 `msgpack:"file_size" json:"file_size"`
	// FragmentSize is the planned size of every fragment but the last.
	FragmentSize int64 `msgpack:"fragment_size" json:"fragment_size"`
	// FragmentCount is the number of fragments of a full split.
	FragmentCount int `msgpack:"fragment_count" json:"fragment_count"`
}

// New builds a manifest for a plan.
func New(source string, plan *types.Plan) *Manifest {
	return &Manifest{
		Type:            ManifestType,
		ContractVersion: types.ContractVersion,
		Source:          source,
		FileSize:        plan.FileSize,
		FragmentSize:    plan.FragmentSize,
		FragmentCount:   plan.TotalParts,
	}
}

// FrameErrorKind classifies frame decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a payload exceeding MaxPayloadSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error or a wrong type.
	FrameErrorDecode
)

// FrameError represents a manifest decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest: %s: %v", e.Msg, e.Err)
	}
	return "manifest: " + e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFrameError reports whether err is a *FrameError of the given kind.
func IsFrameError(err error, kind FrameErrorKind) bool {
	var fe *FrameError
	return errors.As(err, &fe) && fe.Kind == kind
}

// Encode writes m as a single length-prefixed frame.
func Encode(w io.Writer, m *Manifest) error {
	payload, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Decode reads a single frame from r.
//
// Errors:
//   - *FrameError with Kind=FrameErrorPartial: empty or truncated frame
//   - *FrameError with Kind=FrameErrorTooLarge: length prefix over the limit
//   - *FrameError with Kind=FrameErrorDecode: bad msgpack or wrong type
func Decode(r io.Reader) (*Manifest, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	var m Manifest
	if err := msgpack.Unmarshal(payload, &m); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode payload",
			Err:  err,
		}
	}
	if m.Type != ManifestType {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unexpected type %q", m.Type),
		}
	}
	return &m, nil
}

// Marshal returns the framed encoding of m.
func Marshal(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes m to path, truncating any existing file.
func WriteFile(path string, m *Manifest) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer iox.CloseInto(f, &err)
	return Encode(f, m)
}

// ReadFile reads the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(f)
	return Decode(f)
}
