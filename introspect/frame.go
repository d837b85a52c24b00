package introspect

import (
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/mod/semver"

	"github.com/ffikit/ffikit/meta"
)

// ContractVersion is the newest metadata contract this tool understands.
// Records with the same major version and an equal or lower precedence
// decode; anything newer is a format error.
const ContractVersion = "1.1.0"

// frameMagic opens every embedded metadata record. The record layout is:
// magic (4 bytes), body length (u32 little-endian), msgpack body.
const frameMagic = "fkm1"

const frameHeaderLen = 8

// envelope is the msgpack body: the contract version, the item kind tag and
// the kind-specific payload.
type envelope struct {
	Contract string             `msgpack:"contract"`
	Kind     string             `msgpack:"kind"`
	Body     msgpack.RawMessage `msgpack:"body"`
}

const (
	kindNamespace   = "namespace"
	kindFunc        = "func"
	kindRecord      = "record"
	kindEnum        = "enum"
	kindObject      = "object"
	kindConstructor = "constructor"
	kindMethod      = "method"
)

// EncodeItem produces the framed wire form of one metadata item, the exact
// bytes a component build embeds behind a FFIKIT_META_* symbol.
func EncodeItem(item meta.Item) ([]byte, error) {
	var kind string
	switch item.(type) {
	case meta.Namespace:
		kind = kindNamespace
	case meta.Func:
		kind = kindFunc
	case meta.Record:
		kind = kindRecord
	case meta.Enum:
		kind = kindEnum
	case meta.Object:
		kind = kindObject
	case meta.Constructor:
		kind = kindConstructor
	case meta.Method:
		kind = kindMethod
	default:
		return nil, fmt.Errorf("unknown metadata item %T", item)
	}

	payload, err := msgpack.Marshal(item)
	if err != nil {
		return nil, err
	}
	body, err := msgpack.Marshal(envelope{
		Contract: ContractVersion,
		Kind:     kind,
		Body:     payload,
	})
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, frameHeaderLen+len(body))
	out = append(out, frameMagic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...), nil
}

// decodeItem decodes one framed record. data starts at the record and may
// extend past it (symbol sizes are not always known).
func decodeItem(path, symbol string, data []byte) (meta.Item, error) {
	fail := func(err error) (meta.Item, error) {
		return nil, &FormatError{Path: path, Symbol: symbol, Err: err}
	}

	if len(data) < frameHeaderLen {
		return fail(fmt.Errorf("truncated record: %v bytes", len(data)))
	}
	if string(data[:4]) != frameMagic {
		return fail(fmt.Errorf("bad record magic % x", data[:4]))
	}
	n := binary.LittleEndian.Uint32(data[4:frameHeaderLen])
	if uint64(n) > uint64(len(data)-frameHeaderLen) {
		return fail(fmt.Errorf("record body of %v bytes exceeds available data", n))
	}
	body := data[frameHeaderLen : frameHeaderLen+n]

	var env envelope
	if err := msgpack.Unmarshal(body, &env); err != nil {
		return fail(fmt.Errorf("decode envelope: %w", err))
	}
	if err := checkContract(env.Contract); err != nil {
		return fail(err)
	}

	var item meta.Item
	var err error
	switch env.Kind {
	case kindNamespace:
		item, err = decodeBody[meta.Namespace](env.Body)
	case kindFunc:
		item, err = decodeBody[meta.Func](env.Body)
	case kindRecord:
		item, err = decodeBody[meta.Record](env.Body)
	case kindEnum:
		item, err = decodeBody[meta.Enum](env.Body)
	case kindObject:
		item, err = decodeBody[meta.Object](env.Body)
	case kindConstructor:
		item, err = decodeBody[meta.Constructor](env.Body)
	case kindMethod:
		item, err = decodeBody[meta.Method](env.Body)
	default:
		return fail(fmt.Errorf("unknown item kind %q", env.Kind))
	}
	if err != nil {
		return fail(fmt.Errorf("decode %v: %w", env.Kind, err))
	}
	return item, nil
}

func decodeBody[T meta.Item](body msgpack.RawMessage) (meta.Item, error) {
	var v T
	if err := msgpack.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func checkContract(v string) error {
	have := "v" + v
	want := "v" + ContractVersion
	if !semver.IsValid(have) {
		return fmt.Errorf("invalid contract version %q", v)
	}
	if semver.Major(have) != semver.Major(want) || semver.Compare(have, want) > 0 {
		return fmt.Errorf("unsupported contract version %v (this build supports up to %v)", v, ContractVersion)
	}
	return nil
}
