package execlog

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func encodeNDJSON(w io.Writer, rec Record) error {
	return json.NewEncoder(w).Encode(rec)
}

// encodeYAML writes each record as its own document so appended runs stay
// readable as a stream.
func encodeYAML(w io.Writer, rec Record) error {
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}

func encodeMsgpack(w io.Writer, rec Record) error {
	return msgpack.NewEncoder(w).Encode(rec)
}

// ReadMsgpack decodes every record of a msgpack execution log.
func ReadMsgpack(r io.Reader) ([]Record, error) {
	dec := msgpack.NewDecoder(r)
	var out []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// ReadYAML decodes every document of a yaml execution log.
func ReadYAML(r io.Reader) ([]Record, error) {
	dec := yaml.NewDecoder(r)
	var out []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
