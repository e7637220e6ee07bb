package pagination

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/priyxstudio/pathway/internal/errdefs"
)

// Kind is the type of the value a field sorts on.
type Kind string

const (
	KindTime   Kind = "time"
	KindString Kind = "string"
	KindInt    Kind = "int"
)

// Cursor points just past the last row of a page: the sort value of that row
// and its numeric id, which breaks ties between equal sort values.
type Cursor struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	ID    uint   `json:"id"`
}

// NewCursor builds a cursor from a sort value read off a row.
func NewCursor(kind Kind, value interface{}, id uint) (Cursor, error) {
	c := Cursor{Kind: kind, ID: id}
	switch v := value.(type) {
	case time.Time:
		if kind != KindTime {
			break
		}
		c.Value = v.UTC().Format(time.RFC3339Nano)
		return c, nil
	case string:
		if kind != KindString {
			break
		}
		c.Value = v
		return c, nil
	case int:
		if kind != KindInt {
			break
		}
		c.Value = strconv.Itoa(v)
		return c, nil
	}
	return Cursor{}, errdefs.New(errdefs.CodeOperationFailed, "cannot build a %s cursor from %T", kind, value)
}

// Encode renders the cursor as an opaque, URL safe token.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a token produced by Encode. Any token that does not decode to
// a well formed cursor is rejected with an InvalidCursor error.
func Decode(token string) (Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, errdefs.Wrap(err, errdefs.CodeInvalidCursor, "the cursor is malformed")
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, errdefs.Wrap(err, errdefs.CodeInvalidCursor, "the cursor is malformed")
	}
	if _, err := c.value(); err != nil {
		return Cursor{}, err
	}
	return c, nil
}

// value returns the sort value in the type used when binding it to a query.
func (c Cursor) value() (interface{}, error) {
	switch c.Kind {
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, c.Value)
		if err != nil {
			return nil, errdefs.Wrap(err, errdefs.CodeInvalidCursor, "the cursor is malformed")
		}
		return t.UTC(), nil
	case KindString:
		return c.Value, nil
	case KindInt:
		n, err := strconv.Atoi(c.Value)
		if err != nil {
			return nil, errdefs.Wrap(err, errdefs.CodeInvalidCursor, "the cursor is malformed")
		}
		return n, nil
	default:
		return nil, errdefs.InvalidCursor("the cursor is malformed")
	}
}
