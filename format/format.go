package format

import (
	"encoding"

	"github.com/dhamidi/luaref/luaref"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(lib *luaref.Library) error
}
