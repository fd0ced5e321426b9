package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the stored record types. The types
// here are few and stable, so the serializers are maintained by hand
// with the mus-go primitives instead of generated code. Timestamps are
// encoded as Unix microseconds.

// IDMUS serializes an ID as a varint.
var IDMUS = idSer{}

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// DocumentMUS serializes a Document.
var DocumentMUS = documentSer{}

type documentSer struct{}

func (documentSer) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Filename, bs[n:])
	n += ord.String.Marshal(d.ContentType, bs[n:])
	n += varint.Int64.Marshal(d.Size, bs[n:])
	n += ord.String.Marshal(d.StorageRef, bs[n:])
	n += varint.Uint64.Marshal(d.Checksum, bs[n:])
	n += ord.String.Marshal(string(d.Status), bs[n:])
	n += ord.String.Marshal(string(d.Sensitivity), bs[n:])
	n += marshalTime(d.UploadedAt, bs[n:])
	return n
}

func (documentSer) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return d, n, err
	}
	if d.Filename, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ContentType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Size, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.StorageRef, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Checksum, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var s string
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Status = DocumentStatus(s)
	n += n1
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Sensitivity = Sensitivity(s)
	n += n1
	if d.UploadedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (documentSer) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.Filename)
	size += ord.String.Size(d.ContentType)
	size += varint.Int64.Size(d.Size)
	size += ord.String.Size(d.StorageRef)
	size += varint.Uint64.Size(d.Checksum)
	size += ord.String.Size(string(d.Status))
	size += ord.String.Size(string(d.Sensitivity))
	size += sizeTime(d.UploadedAt)
	return size
}

// DocumentChunkMUS serializes a DocumentChunk.
var DocumentChunkMUS = documentChunkSer{}

type documentChunkSer struct{}

func (documentChunkSer) Marshal(c DocumentChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.DocumentId, bs)
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += marshalVector(c.Vector, bs[n:])
	return n
}

func (documentChunkSer) Unmarshal(bs []byte) (c DocumentChunk, n int, err error) {
	var n1 int
	if c.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n, err
	}
	if c.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (documentChunkSer) Size(c DocumentChunk) (size int) {
	size = IDMUS.Size(c.DocumentId)
	size += varint.Int.Size(c.Index)
	size += ord.String.Size(c.Content)
	size += sizeVector(c.Vector)
	return size
}

// ChatMUS serializes a Chat.
var ChatMUS = chatSer{}

type chatSer struct{}

func (chatSer) Marshal(c Chat, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.UserId, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += marshalTime(c.CreatedAt, bs[n:])
	return n
}

func (chatSer) Unmarshal(bs []byte) (c Chat, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n, err
	}
	if c.UserId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chatSer) Size(c Chat) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.UserId)
	size += ord.String.Size(c.Title)
	size += sizeTime(c.CreatedAt)
	return size
}

// MessageMUS serializes a Message.
var MessageMUS = messageSer{}

type messageSer struct{}

func (messageSer) Marshal(m Message, bs []byte) (n int) {
	n = IDMUS.Marshal(m.Id, bs)
	n += IDMUS.Marshal(m.ChatId, bs[n:])
	n += ord.String.Marshal(string(m.Role), bs[n:])
	n += ord.String.Marshal(m.Content, bs[n:])
	n += marshalTime(m.CreatedAt, bs[n:])
	return n
}

func (messageSer) Unmarshal(bs []byte) (m Message, n int, err error) {
	var n1 int
	if m.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return m, n, err
	}
	if m.ChatId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	var s string
	if s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	m.Role = MessageRole(s)
	n += n1
	if m.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	return m, n, nil
}

func (messageSer) Size(m Message) (size int) {
	size = IDMUS.Size(m.Id)
	size += IDMUS.Size(m.ChatId)
	size += ord.String.Size(string(m.Role))
	size += ord.String.Size(m.Content)
	size += sizeTime(m.CreatedAt)
	return size
}
