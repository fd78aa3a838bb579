package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// RecordKind names a record layout.
type RecordKind string

const (
	KindGlobalConfig RecordKind = "GlobalConfig"
	KindUserRecord   RecordKind = "UserRecord"
)

// Fixed record sizes in bytes.
const (
	DiscriminatorSize = 8
	GlobalConfigSize  = DiscriminatorSize + IdentitySize
	UserRecordSize    = DiscriminatorSize + IdentitySize + 8
)

// Discriminator returns the 8-byte prefix that tags a blob with its kind.
func Discriminator(kind RecordKind) [DiscriminatorSize]byte {
	sum := hashWithDomain(DomainRecord, []byte(kind))
	var d [DiscriminatorSize]byte
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// GlobalConfig is the singleton governing privileged operations.
type GlobalConfig struct {
	Admin Identity `json:"admin"`
}

// UserRecord is the one record each owner holds.
type UserRecord struct {
	Owner Identity `json:"owner"`
	Value uint64   `json:"value"`
}

// MarshalBinary encodes the fixed GlobalConfig layout.
func (c GlobalConfig) MarshalBinary() ([]byte, error) {
	buf := make([]byte, GlobalConfigSize)
	d := Discriminator(KindGlobalConfig)
	copy(buf, d[:])
	copy(buf[DiscriminatorSize:], c.Admin[:])
	return buf, nil
}

// UnmarshalBinary decodes the fixed GlobalConfig layout.
func (c *GlobalConfig) UnmarshalBinary(data []byte) error {
	if err := checkLayout(KindGlobalConfig, data, GlobalConfigSize); err != nil {
		return err
	}
	copy(c.Admin[:], data[DiscriminatorSize:])
	return nil
}

// MarshalBinary encodes the fixed UserRecord layout.
func (r UserRecord) MarshalBinary() ([]byte, error) {
	buf := make([]byte, UserRecordSize)
	d := Discriminator(KindUserRecord)
	copy(buf, d[:])
	copy(buf[DiscriminatorSize:], r.Owner[:])
	binary.LittleEndian.PutUint64(buf[DiscriminatorSize+IdentitySize:], r.Value)
	return buf, nil
}

// UnmarshalBinary decodes the fixed UserRecord layout.
func (r *UserRecord) UnmarshalBinary(data []byte) error {
	if err := checkLayout(KindUserRecord, data, UserRecordSize); err != nil {
		return err
	}
	copy(r.Owner[:], data[DiscriminatorSize:DiscriminatorSize+IdentitySize])
	r.Value = binary.LittleEndian.Uint64(data[DiscriminatorSize+IdentitySize:])
	return nil
}

func checkLayout(kind RecordKind, data []byte, size int) error {
	if len(data) != size {
		return NewRecordError(CodeSizeMismatch, "decode "+string(kind), Address{},
			fmt.Sprintf("got %d bytes, want %d", len(data), size))
	}
	d := Discriminator(kind)
	if !bytes.Equal(data[:DiscriminatorSize], d[:]) {
		return NewRecordError(CodeSizeMismatch, "decode "+string(kind), Address{},
			"discriminator mismatch")
	}
	return nil
}
