package avro

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/linkedin/goavro/v2"
)

// Encoder wraps a goavro codec and reads/writes single-record Avro object
// container files.
type Encoder struct {
	codec *goavro.Codec
	mu    sync.Mutex
}

// NewEncoder creates a new encoder from an Avro schema string
func NewEncoder(schema string) (*Encoder, error) {
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}
	return &Encoder{codec: codec}, nil
}

// WriteContainer writes native as the only record of an OCF stream.
func (e *Encoder) WriteContainer(w io.Writer, native map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           e.codec,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return fmt.Errorf("failed to create avro container writer: %w", err)
	}
	if err := ocf.Append([]interface{}{native}); err != nil {
		return fmt.Errorf("failed to encode avro record: %w", err)
	}
	return nil
}

// ReadContainer reads the single record of an OCF stream. The stream's schema
// must match this encoder's schema.
func (e *Encoder) ReadContainer(r io.Reader) (map[string]interface{}, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open avro container: %w", err)
	}
	if ocf.Codec().CanonicalSchema() != e.codec.CanonicalSchema() {
		return nil, fmt.Errorf("avro container schema does not match")
	}

	var record map[string]interface{}
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to decode avro record: %w", err)
		}
		if record != nil {
			return nil, fmt.Errorf("avro container holds more than one record")
		}
		m, ok := datum.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("avro record has unexpected type %T", datum)
		}
		record = m
	}
	if err := ocf.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan avro container: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("avro container is empty")
	}
	return record, nil
}

// Marshal is WriteContainer into a byte slice.
func (e *Encoder) Marshal(native map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.WriteContainer(&buf, native); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is ReadContainer over a byte slice.
func (e *Encoder) Unmarshal(data []byte) (map[string]interface{}, error) {
	return e.ReadContainer(bytes.NewReader(data))
}
