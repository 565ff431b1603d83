package okolab

import (
	"strconv"
	"strings"
)

// The H401-T wire protocol is line-oriented ASCII. A request is a three
// digit command code, optionally followed by a parameter, terminated by a
// carriage return. The response echoes the command code, carries the result
// payload and ends with the same terminator. A fault is reported as "E"
// followed by a numeric code.
const frameTerminator = '\r'

// frame is the decoded form of one controller response.
type frame struct {
	// Payload holds the result text of a value frame.
	Payload string
	// ErrorCode holds the fault code of an error frame.
	ErrorCode int
	// IsError distinguishes the two frame kinds.
	IsError bool
}

// encodeFrame builds the wire bytes for a command. It is pure and performs
// no I/O; unrepresentable input is rejected here, before anything touches
// the transport.
func encodeFrame(code string, arg string) ([]byte, error) {
	if len(code) != 3 {
		return nil, &EncodingError{Command: code, Reason: "command code must be three digits"}
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return nil, &EncodingError{Command: code, Reason: "command code must be three digits"}
		}
	}
	if strings.ContainsRune(arg, frameTerminator) {
		return nil, &EncodingError{Command: code, Reason: "argument contains frame terminator"}
	}
	for i := 0; i < len(arg); i++ {
		if arg[i] > 0x7f {
			return nil, &EncodingError{Command: code, Reason: "argument is not ASCII"}
		}
	}

	buf := make([]byte, 0, len(code)+len(arg)+1)
	buf = append(buf, code...)
	buf = append(buf, arg...)
	buf = append(buf, frameTerminator)
	return buf, nil
}

// decodeFrame parses one raw response line for the command identified by
// code. The raw slice must include the trailing terminator.
func decodeFrame(code string, raw []byte) (frame, error) {
	if len(raw) == 0 {
		return frame{}, &FramingError{Raw: string(raw), Reason: "empty response"}
	}
	if raw[len(raw)-1] != frameTerminator {
		return frame{}, &FramingError{Raw: string(raw), Reason: "missing terminator"}
	}

	body := string(raw[:len(raw)-1])

	if len(body) > 0 && body[0] == 'E' {
		errCode, err := strconv.Atoi(body[1:])
		if err != nil {
			return frame{}, &FramingError{Raw: string(raw), Reason: "malformed error code"}
		}
		return frame{ErrorCode: errCode, IsError: true}, nil
	}

	if len(body) < len(code) {
		return frame{}, &FramingError{Raw: string(raw), Reason: "response shorter than command echo"}
	}
	if body[:len(code)] != code {
		return frame{}, &FramingError{Raw: string(raw), Reason: "command echo mismatch"}
	}

	return frame{Payload: body[len(code):]}, nil
}
