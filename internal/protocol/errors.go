package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Settings layer.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrBadColor   = "E_BAD_COLOR"
	ErrForbidden  = "E_FORBIDDEN"
	ErrBusy       = "E_BUSY"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadRequest:      {},
	ErrBadColor:        {},
	ErrForbidden:       {},
	ErrBusy:            {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
