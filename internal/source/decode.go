package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ErrNotObject is returned when a decoded record is not a JSON object.
var ErrNotObject = errors.New("record is not a JSON object")

// Decode reads records from a JSON array of objects or from JSON lines.
// Numbers are kept as json.Number so integer and decimal literals keep their precision.
func Decode(r io.Reader) ([]any, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var records []any

	if first == '[' {
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode record array: %w", err)
		}
	} else {
		for {
			var record any

			err := dec.Decode(&record)
			if err == io.EOF {
				break
			}

			if err != nil {
				return nil, fmt.Errorf("failed to decode record %d: %w", len(records), err)
			}

			records = append(records, record)
		}
	}

	for i, record := range records {
		if _, ok := record.(map[string]any); !ok {
			return nil, fmt.Errorf("record %d: %w", i, ErrNotObject)
		}
	}

	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}

		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b, br.UnreadByte()
		}
	}
}
